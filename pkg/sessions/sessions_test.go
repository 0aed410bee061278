package sessions

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/Ramsey-B/peony/pkg/booking"
	"github.com/Ramsey-B/peony/pkg/kafka"
	"github.com/Ramsey-B/peony/pkg/models"
	"github.com/Ramsey-B/peony/pkg/redis"
	"github.com/Ramsey-B/peony/pkg/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func strPtr(s string) *string { return &s }

type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]models.ServiceSession
	updates  int
	listErr  error
}

func newMemoryStore(sessions ...models.ServiceSession) *memoryStore {
	m := &memoryStore{sessions: map[string]models.ServiceSession{}}
	for _, s := range sessions {
		m.sessions[s.ID] = s
	}
	return m
}

func (m *memoryStore) GetForUser(_ context.Context, id, userID string) (*models.ServiceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return nil, repositories.NotFound("service session %s does not exist", id)
	}
	return &s, nil
}

func (m *memoryStore) UpdateSchedule(_ context.Context, session *models.ServiceSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	session.UpdatedAt = time.Now()
	m.sessions[session.ID] = *session
	return nil
}

func (m *memoryStore) ListSweepCandidates(_ context.Context, through string, limit int) ([]models.ServiceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.ServiceSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		if s.ConsumedAt != nil || !sweepable(s) {
			continue
		}
		if day := slotDay(s); day != "" && day <= through {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if di, dj := slotDay(out[i]), slotDay(out[j]); di != dj {
			return di < dj
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sweepable(s models.ServiceSession) bool {
	switch s.PaymentStatus {
	case booking.PaymentPaid, booking.PaymentAuthorized, booking.PaymentProcessing:
	default:
		return false
	}
	return s.AppointmentStatus == booking.StatusConfirmed || s.AppointmentStatus == booking.StatusConfirmedByCustomer
}

func slotDay(s models.ServiceSession) string {
	if s.ProposedDate != nil && strings.TrimSpace(*s.ProposedDate) != "" {
		return strings.TrimSpace(*s.ProposedDate)
	}
	if s.RequestedDate != nil {
		return strings.TrimSpace(*s.RequestedDate)
	}
	return ""
}

func (m *memoryStore) MarkConsumed(_ context.Context, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.ConsumedAt != nil {
		return false, nil
	}
	s.ConsumedAt = &at
	m.sessions[id] = s
	return true, nil
}

type fakeLocker struct {
	busy bool
	keys []string
}

func (f *fakeLocker) WithLock(_ context.Context, key string, _ time.Duration, fn func() error) error {
	if f.busy {
		return redis.ErrLockNotAcquired
	}
	f.keys = append(f.keys, key)
	return fn()
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.SessionEventMessage
	err    error
}

func (r *recordingPublisher) PublishSessionEvent(_ context.Context, evt *kafka.SessionEventMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *evt)
	return r.err
}

func pendingSession() models.ServiceSession {
	return models.ServiceSession{
		ID:                "s1",
		OrderID:           "o1",
		UserID:            "u1",
		PaymentStatus:     booking.PaymentPaid,
		AppointmentMode:   booking.ModeNone,
		AppointmentStatus: booking.StatusNone,
	}
}

func TestService_RequestDate_Set(t *testing.T) {
	store := newMemoryStore(pendingSession())
	locker := &fakeLocker{}
	pub := &recordingPublisher{}
	svc := NewService(store, locker, pub, 0, getTestLogger())

	updated, err := svc.RequestDate(context.Background(), "u1", "s1", booking.Action{
		Action:        booking.ActionSet,
		RequestedDate: "2025-06-10",
		RequestedTime: "15:30",
	})
	require.NoError(t, err)

	assert.Equal(t, booking.ModeRequestedSlot, updated.AppointmentMode)
	assert.Equal(t, booking.StatusPending, updated.AppointmentStatus)
	assert.Equal(t, "2025-06-10", *updated.RequestedDate)
	assert.Equal(t, []string{"service-session:s1"}, locker.keys)
	assert.Equal(t, 1, store.updates)

	require.Len(t, pub.events, 1)
	assert.Equal(t, kafka.EventDateRequested, pub.events[0].Type)
	assert.Equal(t, "o1", pub.events[0].OrderID)
}

func TestService_RequestDate_Clear(t *testing.T) {
	s := pendingSession()
	s.AppointmentMode = booking.ModeRequestedSlot
	s.AppointmentStatus = booking.StatusPending
	s.RequestedDate = strPtr("2025-06-10")
	store := newMemoryStore(s)
	pub := &recordingPublisher{}
	svc := NewService(store, &fakeLocker{}, pub, time.Second, getTestLogger())

	updated, err := svc.RequestDate(context.Background(), "u1", "s1", booking.Action{Action: booking.ActionClear})
	require.NoError(t, err)
	assert.Equal(t, booking.ModeContactLater, updated.AppointmentMode)
	assert.Nil(t, updated.RequestedDate)
	require.Len(t, pub.events, 1)
	assert.Equal(t, kafka.EventDateCleared, pub.events[0].Type)
}

func TestService_RequestDate_Errors(t *testing.T) {
	confirmed := pendingSession()
	confirmed.AppointmentStatus = booking.StatusConfirmed

	tests := []struct {
		name    string
		session models.ServiceSession
		userID  string
		action  booking.Action
		busy    bool
		status  int
	}{
		{name: "salon already acted", session: confirmed, userID: "u1", action: booking.Action{Action: booking.ActionClear}, status: http.StatusConflict},
		{name: "bad date", session: pendingSession(), userID: "u1", action: booking.Action{Action: booking.ActionSet, RequestedDate: "10/06/2025"}, status: http.StatusBadRequest},
		{name: "unknown action", session: pendingSession(), userID: "u1", action: booking.Action{Action: "cancel"}, status: http.StatusBadRequest},
		{name: "another user's session", session: pendingSession(), userID: "u2", action: booking.Action{Action: booking.ActionClear}, status: http.StatusNotFound},
		{name: "lock busy", session: pendingSession(), userID: "u1", action: booking.Action{Action: booking.ActionClear}, busy: true, status: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore(tt.session)
			pub := &recordingPublisher{}
			svc := NewService(store, &fakeLocker{busy: tt.busy}, pub, 0, getTestLogger())

			_, err := svc.RequestDate(context.Background(), tt.userID, "s1", tt.action)
			require.Error(t, err)
			assert.Equal(t, tt.status, httperror.GetStatusCode(err))
			assert.Zero(t, store.updates)
			assert.Empty(t, pub.events)
		})
	}
}

func TestService_RequestDate_PublishFailureIsNotFatal(t *testing.T) {
	store := newMemoryStore(pendingSession())
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewService(store, &fakeLocker{}, pub, 0, getTestLogger())

	_, err := svc.RequestDate(context.Background(), "u1", "s1", booking.Action{Action: booking.ActionClear})
	require.NoError(t, err)
	assert.Equal(t, 1, store.updates)
}

func TestSweeper_RunOnce(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, rome)

	past := pendingSession()
	past.ID = "past"
	past.AppointmentStatus = booking.StatusConfirmed
	past.RequestedDate = strPtr("2025-06-09")
	past.RequestedTime = strPtr("18:00")

	future := pendingSession()
	future.ID = "future"
	future.AppointmentStatus = booking.StatusConfirmedByCustomer
	future.RequestedDate = strPtr("2025-06-11")

	proposedPast := pendingSession()
	proposedPast.ID = "proposed"
	proposedPast.AppointmentStatus = booking.StatusConfirmed
	proposedPast.RequestedDate = strPtr("2025-06-20")
	proposedPast.ProposedDate = strPtr("2025-06-10")
	proposedPast.ProposedTime = strPtr("09:00")

	unpaid := past
	unpaid.ID = "unpaid"
	unpaid.PaymentStatus = booking.PaymentPending

	store := newMemoryStore(past, future, proposedPast, unpaid)
	pub := &recordingPublisher{}
	sweeper := NewSweeper(store, pub, SweeperConfig{Location: rome}, getTestLogger())

	consumed, err := sweeper.RunOnce(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, consumed)

	assert.NotNil(t, store.sessions["past"].ConsumedAt)
	assert.NotNil(t, store.sessions["proposed"].ConsumedAt)
	assert.Nil(t, store.sessions["future"].ConsumedAt)
	assert.Nil(t, store.sessions["unpaid"].ConsumedAt)

	require.Len(t, pub.events, 2)
	for _, evt := range pub.events {
		assert.Equal(t, kafka.EventConsumed, evt.Type)
	}

	// second sweep finds nothing new
	consumed, err = sweeper.RunOnce(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, consumed)
	assert.Len(t, pub.events, 2)
}

func TestSweeper_FutureSlotsDoNotStarvePastOnes(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	var sessions []models.ServiceSession
	for _, id := range []string{"june-a", "june-b"} {
		s := pendingSession()
		s.ID = id
		s.AppointmentStatus = booking.StatusConfirmed
		s.RequestedDate = strPtr("2026-06-15")
		s.UpdatedAt = now.AddDate(0, -1, 0)
		sessions = append(sessions, s)
	}
	past := pendingSession()
	past.ID = "may"
	past.AppointmentStatus = booking.StatusConfirmed
	past.RequestedDate = strPtr("2026-05-01")
	past.UpdatedAt = now
	sessions = append(sessions, past)

	store := newMemoryStore(sessions...)
	sweeper := NewSweeper(store, nil, SweeperConfig{BatchSize: 2}, getTestLogger())

	consumed, err := sweeper.RunOnce(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, consumed)
	assert.NotNil(t, store.sessions["may"].ConsumedAt)
	assert.Nil(t, store.sessions["june-a"].ConsumedAt)
	assert.Nil(t, store.sessions["june-b"].ConsumedAt)
}

func TestSweeper_RunOnceListError(t *testing.T) {
	store := newMemoryStore()
	store.listErr = errors.New("db down")
	sweeper := NewSweeper(store, nil, SweeperConfig{}, getTestLogger())

	_, err := sweeper.RunOnce(context.Background(), time.Now())
	require.Error(t, err)
}

func TestSweeper_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	sweeper := NewSweeper(newMemoryStore(), nil, SweeperConfig{Schedule: "@every 1h"}, getTestLogger())
	require.NoError(t, sweeper.Start(context.Background()))
	require.Error(t, sweeper.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, sweeper.Stop(ctx))
	require.NoError(t, sweeper.Stop(ctx))
}

func TestSweeper_InvalidSchedule(t *testing.T) {
	sweeper := NewSweeper(newMemoryStore(), nil, SweeperConfig{Schedule: "every tuesday"}, getTestLogger())
	require.Error(t, sweeper.Start(context.Background()))
}
