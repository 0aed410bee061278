// Package sessions applies customer booking actions to service sessions and sweeps used sessions.
package sessions

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/peony/pkg/booking"
	"github.com/Ramsey-B/peony/pkg/kafka"
	"github.com/Ramsey-B/peony/pkg/metrics"
	"github.com/Ramsey-B/peony/pkg/models"
	"github.com/Ramsey-B/peony/pkg/redis"
	"github.com/Ramsey-B/peony/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

type SessionStore interface {
	GetForUser(ctx context.Context, id, userID string) (*models.ServiceSession, error)
	UpdateSchedule(ctx context.Context, session *models.ServiceSession) error
	ListSweepCandidates(ctx context.Context, through string, limit int) ([]models.ServiceSession, error)
	MarkConsumed(ctx context.Context, id string, at time.Time) (bool, error)
}

type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func() error) error
}

type EventPublisher interface {
	PublishSessionEvent(ctx context.Context, evt *kafka.SessionEventMessage) error
}

const DefaultLockTTL = 10 * time.Second

type Service struct {
	store     SessionStore
	locker    Locker
	publisher EventPublisher
	lockTTL   time.Duration
	logger    ectologger.Logger
}

func NewService(store SessionStore, locker Locker, publisher EventPublisher, lockTTL time.Duration, logger ectologger.Logger) *Service {
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	return &Service{
		store:     store,
		locker:    locker,
		publisher: publisher,
		lockTTL:   lockTTL,
		logger:    logger,
	}
}

func lockKey(sessionID string) string {
	return "service-session:" + sessionID
}

// RequestDate applies a customer's set/clear action to one of their sessions.
// Sessions the salon has already acted on are rejected with 409.
func (s *Service) RequestDate(ctx context.Context, userID, sessionID string, action booking.Action) (*models.ServiceSession, error) {
	ctx, span := tracing.StartSpan(ctx, "SessionService.RequestDate")
	defer span.End()
	span.SetAttributes(
		attribute.String("session_id", sessionID),
		attribute.String("booking.action", string(action.Action)),
	)

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"session_id": sessionID,
		"action":     action.Action,
	})

	var updated *models.ServiceSession
	err := s.locker.WithLock(ctx, lockKey(sessionID), s.lockTTL, func() error {
		session, err := s.store.GetForUser(ctx, sessionID, userID)
		if err != nil {
			return err
		}

		next, err := booking.Apply(session.Schedule(), action)
		if err != nil {
			return transitionError(err)
		}

		changed := session.WithSchedule(next)
		if err := s.store.UpdateSchedule(ctx, &changed); err != nil {
			return err
		}
		updated = &changed
		return nil
	})
	if err != nil {
		if errors.Is(err, redis.ErrLockNotAcquired) {
			err = httperror.NewHTTPError(http.StatusConflict, "this booking is being updated, please retry")
		}
		metrics.RecordBookingTransition(string(action.Action), outcome(err))
		log.WithError(err).Info("Booking action rejected")
		return nil, err
	}

	metrics.RecordBookingTransition(string(action.Action), "success")
	log.Info("Booking action applied")

	eventType := kafka.EventDateRequested
	if action.Action == booking.ActionClear {
		eventType = kafka.EventDateCleared
	}
	s.publish(ctx, eventType, updated)

	return updated, nil
}

// publish is best effort: the schedule is already committed.
func (s *Service) publish(ctx context.Context, eventType string, session *models.ServiceSession) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishSessionEvent(ctx, &kafka.SessionEventMessage{
		Type:              eventType,
		SessionID:         session.ID,
		OrderID:           session.OrderID,
		UserID:            session.UserID,
		AppointmentMode:   string(session.AppointmentMode),
		AppointmentStatus: string(session.AppointmentStatus),
		RequestedDate:     session.RequestedDate,
		RequestedTime:     session.RequestedTime,
	})
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("session_id", session.ID).Warnf("Failed to publish %s event", eventType)
	}
}

func transitionError(err error) error {
	switch {
	case errors.Is(err, booking.ErrLocked):
		return httperror.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, booking.ErrInvalidDate), errors.Is(err, booking.ErrInvalidTime), errors.Is(err, booking.ErrUnknownAction):
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return err
	}
}

func outcome(err error) string {
	switch httperror.GetStatusCode(err) {
	case http.StatusConflict:
		return "conflict"
	case http.StatusBadRequest:
		return "invalid"
	case http.StatusNotFound:
		return "not_found"
	default:
		return "error"
	}
}
