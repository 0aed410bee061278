package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/peony/pkg/booking"
	"github.com/Ramsey-B/peony/pkg/geocode"
	"github.com/Ramsey-B/peony/pkg/models"
	"github.com/Ramsey-B/peony/pkg/utils"
)

type FolderStore interface {
	GetByUser(ctx context.Context, userID string) (*models.AestheticFolder, error)
	Upsert(ctx context.Context, folder *models.AestheticFolder) error
}

type OrderStore interface {
	ListForUser(ctx context.Context, userID string) ([]models.Order, error)
}

type SessionLister interface {
	ListForUser(ctx context.Context, userID string) ([]models.ServiceSession, error)
}

type DateRequester interface {
	RequestDate(ctx context.Context, userID, sessionID string, action booking.Action) (*models.ServiceSession, error)
}

type AddressLookup interface {
	Search(ctx context.Context, q string) ([]geocode.Suggestion, error)
}

type AccountDeps struct {
	Folders  FolderStore
	Orders   OrderStore
	Sessions SessionLister
	Booking  DateRequester
	Lookup   AddressLookup
	Logger   ectologger.Logger
}

// AccountHandler serves the account dashboard
type AccountHandler struct {
	deps AccountDeps
}

func NewAccountHandler(deps AccountDeps) *AccountHandler {
	return &AccountHandler{deps: deps}
}

func (h *AccountHandler) RegisterRoutes(g *echo.Group) {
	a := g.Group("/account")
	a.GET("/aesthetic-folder", h.GetFolder)
	a.PATCH("/aesthetic-folder", h.PatchFolder)
	a.GET("/orders", h.Orders)
	a.GET("/service-sessions", h.ServiceSessions)
	a.PATCH("/service-sessions/:id/request-date", h.RequestDate)
	a.GET("/address-lookup", h.LookupAddress)
}

func (h *AccountHandler) GetFolder(c echo.Context) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	folder, err := h.deps.Folders.GetByUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return SuccessResponse(c, folder)
}

// PatchFolder replaces the folder contents. The owner always comes from the session.
func (h *AccountHandler) PatchFolder(c echo.Context) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	folder, err := utils.BindRequest[models.AestheticFolder](c)
	if err != nil {
		return err
	}
	folder.UserID = userID

	if err := h.deps.Folders.Upsert(c.Request().Context(), &folder); err != nil {
		return err
	}
	return SuccessResponse(c, folder)
}

func (h *AccountHandler) Orders(c echo.Context) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	orders, err := h.deps.Orders.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return SuccessResponse(c, orders)
}

func (h *AccountHandler) ServiceSessions(c echo.Context) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	sessions, err := h.deps.Sessions.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if sessions == nil {
		sessions = []models.ServiceSession{}
	}
	return SuccessResponse(c, sessions)
}

// RequestDate handles PATCH /account/service-sessions/:id/request-date
func (h *AccountHandler) RequestDate(c echo.Context) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	sessionID := c.Param("id")
	if sessionID == "" {
		return BadRequest("missing session id")
	}

	action, err := utils.BindRequest[booking.Action](c)
	if err != nil {
		return err
	}

	session, err := h.deps.Booking.RequestDate(c.Request().Context(), userID, sessionID, action)
	if err != nil {
		return err
	}
	return SuccessResponse(c, session)
}

// LookupAddress handles GET /account/address-lookup?q=
// A provider that answers with an error status yields no suggestions; an unreachable one is a 502.
func (h *AccountHandler) LookupAddress(c echo.Context) error {
	if _, err := GetUserID(c); err != nil {
		return err
	}

	ctx := c.Request().Context()
	suggestions, err := h.deps.Lookup.Search(ctx, c.QueryParam("q"))
	var statusErr *geocode.StatusError
	switch {
	case errors.As(err, &statusErr):
		if h.deps.Logger != nil {
			h.deps.Logger.WithContext(ctx).WithField("status", statusErr.StatusCode).Warn("Address lookup rejected upstream, returning no suggestions")
		}
		suggestions = nil
	case err != nil:
		if httperror.IsHTTPError(err) {
			return err
		}
		return httperror.NewHTTPError(http.StatusBadGateway, "address lookup unavailable")
	}
	if suggestions == nil {
		suggestions = []geocode.Suggestion{}
	}
	return SuccessResponse(c, suggestions)
}
