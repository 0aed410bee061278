package account

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/peony/pkg/booking"
	"github.com/Ramsey-B/peony/pkg/geocode"
	"github.com/Ramsey-B/peony/pkg/models"
	"github.com/Ramsey-B/peony/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// API is the subset of Client the dashboard drives.
type API interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	PatchUser(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error)
	Logout(ctx context.Context) error
	GetAestheticFolder(ctx context.Context) (*models.AestheticFolder, error)
	PatchAestheticFolder(ctx context.Context, folder models.AestheticFolder) (*models.AestheticFolder, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListServiceSessions(ctx context.Context) ([]models.ServiceSession, error)
	RequestDate(ctx context.Context, sessionID string, action booking.Action) (*models.ServiceSession, error)
	LookupAddress(ctx context.Context, q string) ([]geocode.Suggestion, error)
}

var (
	ErrLoggedOut      = errors.New("logged out")
	ErrUnknownSession = errors.New("unknown service session")
)

// Seed is the server data a dashboard starts from.
type Seed struct {
	User     models.User
	Folder   models.AestheticFolder
	Orders   []models.Order
	Sessions []models.ServiceSession
}

// FetchSeed loads everything the dashboard shows, concurrently.
func FetchSeed(ctx context.Context, api API, userID string) (Seed, error) {
	var seed Seed
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		user, err := api.GetUser(gctx, userID)
		if err == nil {
			seed.User = *user
		}
		return err
	})
	g.Go(func() error {
		folder, err := api.GetAestheticFolder(gctx)
		if err == nil {
			seed.Folder = *folder
		}
		return err
	})
	g.Go(func() (err error) { seed.Orders, err = api.ListOrders(gctx); return })
	g.Go(func() (err error) { seed.Sessions, err = api.ListServiceSessions(gctx); return })
	return seed, g.Wait()
}

// Dashboard is the account page's state. Every mutation is applied optimistically, sent to the
// server and then committed with the server's copy or rolled back with a message.
type Dashboard struct {
	api    API
	locale string
	logger ectologger.Logger

	Profile *Resource[models.User]
	Folder  *Resource[models.AestheticFolder]

	mu        sync.RWMutex
	orders    []models.Order
	sessions  map[string]*Resource[models.ServiceSession]
	order     []string
	loggedOut bool

	lookup *geocode.Debouncer[[]geocode.Suggestion]
}

func NewDashboard(api API, seed Seed, locale string, logger ectologger.Logger) *Dashboard {
	d := &Dashboard{
		api:      api,
		locale:   locale,
		logger:   logger,
		Profile:  NewResource(seed.User),
		Folder:   NewResource(seed.Folder),
		orders:   seed.Orders,
		sessions: make(map[string]*Resource[models.ServiceSession], len(seed.Sessions)),
		lookup:   geocode.NewDebouncer[[]geocode.Suggestion](geocode.DefaultDebounce),
	}
	for _, s := range seed.Sessions {
		d.sessions[s.ID] = NewResource(s)
		d.order = append(d.order, s.ID)
	}
	return d
}

func (d *Dashboard) Orders() []models.Order {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.Order{}, d.orders...)
}

// Booking is a service session as the dashboard lists it.
type Booking struct {
	State[models.ServiceSession]
	Editable bool `json:"editable"`
	Used     bool `json:"used"`
}

// Bookings lists service sessions, unused first, each group in seed order.
func (d *Dashboard) Bookings(now time.Time, loc *time.Location) []Booking {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Booking, 0, len(d.order))
	for _, id := range d.order {
		state := d.sessions[id].State()
		sch := state.Current.Schedule()
		out = append(out, Booking{
			State:    state,
			Editable: booking.CanEdit(sch),
			Used:     booking.IsUsed(sch, now, loc),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return !out[i].Used && out[j].Used })
	return out
}

func (d *Dashboard) Session(id string) (*Resource[models.ServiceSession], bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.sessions[id]
	return r, ok
}

func (d *Dashboard) LoggedOut() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loggedOut
}

func (d *Dashboard) checkSession() error {
	if d.LoggedOut() {
		return ErrLoggedOut
	}
	return nil
}

// SaveProfile updates profile fields. Addresses in the patch replace the address book.
func (d *Dashboard) SaveProfile(ctx context.Context, patch models.ProfilePatch) error {
	if err := d.checkSession(); err != nil {
		return err
	}
	if _, err := utils.Validate(patch); err != nil {
		err = &ValidationError{Err: err}
		d.Profile.Fail(UserMessage(err, d.locale))
		return err
	}
	return mutate(ctx, d, d.Profile, patch.ApplyTo(d.Profile.Current()), func(ctx context.Context) (*models.User, error) {
		return d.api.PatchUser(ctx, d.Profile.Committed().ID, patch)
	})
}

func (d *Dashboard) SaveAddresses(ctx context.Context, addresses []models.Address) error {
	if addresses == nil {
		addresses = []models.Address{}
	}
	return d.SaveProfile(ctx, models.ProfilePatch{Addresses: &addresses})
}

func (d *Dashboard) SaveAestheticFolder(ctx context.Context, folder models.AestheticFolder) error {
	if err := d.checkSession(); err != nil {
		return err
	}
	folder.UserID = d.Folder.Committed().UserID
	return mutate(ctx, d, d.Folder, folder, func(ctx context.Context) (*models.AestheticFolder, error) {
		return d.api.PatchAestheticFolder(ctx, folder)
	})
}

func (d *Dashboard) SetRequestedDate(ctx context.Context, sessionID, date, clock string) error {
	return d.requestDate(ctx, sessionID, booking.Action{
		Action:        booking.ActionSet,
		RequestedDate: date,
		RequestedTime: clock,
	})
}

func (d *Dashboard) ClearRequestedDate(ctx context.Context, sessionID string) error {
	return d.requestDate(ctx, sessionID, booking.Action{Action: booking.ActionClear})
}

// requestDate refuses locally when the salon has already acted, without calling the server.
func (d *Dashboard) requestDate(ctx context.Context, sessionID string, action booking.Action) error {
	if err := d.checkSession(); err != nil {
		return err
	}
	res, ok := d.Session(sessionID)
	if !ok {
		return ErrUnknownSession
	}

	current := res.Current()
	next, err := booking.Apply(current.Schedule(), action)
	if err != nil {
		if !errors.Is(err, booking.ErrLocked) {
			err = &ValidationError{Err: err}
		}
		res.Fail(UserMessage(err, d.locale))
		return err
	}

	return mutate(ctx, d, res, current.WithSchedule(next), func(ctx context.Context) (*models.ServiceSession, error) {
		return d.api.RequestDate(ctx, sessionID, action)
	})
}

// Logout ends the session server side. Local state is kept until the server confirms.
func (d *Dashboard) Logout(ctx context.Context) error {
	if err := d.api.Logout(ctx); err != nil {
		d.logger.WithContext(ctx).WithError(err).Warn("Logout failed")
		return err
	}
	d.mu.Lock()
	d.loggedOut = true
	d.mu.Unlock()
	return nil
}

// LookupAddress debounces address suggestions. A call replaced by a newer one returns
// geocode.ErrSuperseded, which callers should ignore.
func (d *Dashboard) LookupAddress(ctx context.Context, q string) ([]geocode.Suggestion, error) {
	if err := d.checkSession(); err != nil {
		return nil, err
	}
	suggestions, err := d.lookup.Do(ctx, func(ctx context.Context) ([]geocode.Suggestion, error) {
		return d.api.LookupAddress(ctx, q)
	})
	if err != nil && !errors.Is(err, geocode.ErrSuperseded) && ctx.Err() == nil {
		d.logger.WithContext(ctx).WithError(err).Warn("Address lookup failed")
	}
	return suggestions, err
}

func mutate[T any](ctx context.Context, d *Dashboard, res *Resource[T], optimistic T, send func(context.Context) (*T, error)) error {
	if err := res.Apply(optimistic); err != nil {
		return err
	}

	saved, err := send(ctx)
	if err != nil {
		res.Fail(UserMessage(err, d.locale))
		d.logger.WithContext(ctx).WithError(err).Info("Account change rolled back")
		return err
	}

	res.Commit(*saved)
	return nil
}
