package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/peony/pkg/booking"
	"github.com/Ramsey-B/peony/pkg/kafka"
	"github.com/Ramsey-B/peony/pkg/metrics"
	"github.com/Ramsey-B/peony/pkg/tracing"
	"github.com/robfig/cron/v3"
)

type SweeperConfig struct {
	// Schedule is a cron spec or descriptor such as "@every 15m".
	Schedule  string
	Location  *time.Location
	BatchSize int
}

// Sweeper periodically marks paid, confirmed sessions whose slot has passed as consumed.
type Sweeper struct {
	store     SessionStore
	publisher EventPublisher
	cfg       SweeperConfig
	logger    ectologger.Logger
	now       func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

func NewSweeper(store SessionStore, publisher EventPublisher, cfg SweeperConfig, logger ectologger.Logger) *Sweeper {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 15m"
	}
	return &Sweeper{
		store:     store,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Start schedules RunOnce. Overlapping runs are skipped.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return fmt.Errorf("sweeper already started")
	}

	c := cron.New(
		cron.WithLocation(s.cfg.Location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	runCtx := context.WithoutCancel(ctx)
	if _, err := c.AddFunc(s.cfg.Schedule, func() {
		if _, err := s.RunOnce(runCtx, s.now()); err != nil {
			s.logger.WithError(err).Error("Service session sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.cfg.Schedule, err)
	}

	c.Start()
	s.cron = c
	s.logger.Infof("Service session sweeper scheduled: %s", s.cfg.Schedule)
	return nil
}

// Stop waits for a running sweep to finish or ctx to expire.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}
	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce consumes every candidate session classified as used at now and returns how many were marked.
func (s *Sweeper) RunOnce(ctx context.Context, now time.Time) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "Sweeper.RunOnce")
	defer span.End()

	through := now.In(s.cfg.Location).Format(booking.DateLayout)
	candidates, err := s.store.ListSweepCandidates(ctx, through, s.cfg.BatchSize)
	if err != nil {
		metrics.RecordSweeperRun("error", 0)
		return 0, err
	}

	consumed := 0
	for _, session := range candidates {
		if !booking.IsUsed(session.Schedule(), now, s.cfg.Location) {
			continue
		}

		marked, err := s.store.MarkConsumed(ctx, session.ID, now)
		if err != nil {
			metrics.RecordSweeperRun("error", consumed)
			return consumed, err
		}
		if !marked {
			continue
		}
		consumed++

		if s.publisher == nil {
			continue
		}
		err = s.publisher.PublishSessionEvent(ctx, &kafka.SessionEventMessage{
			Type:              kafka.EventConsumed,
			SessionID:         session.ID,
			OrderID:           session.OrderID,
			UserID:            session.UserID,
			AppointmentMode:   string(session.AppointmentMode),
			AppointmentStatus: string(session.AppointmentStatus),
			RequestedDate:     session.RequestedDate,
			RequestedTime:     session.RequestedTime,
			Timestamp:         now.UTC(),
		})
		if err != nil {
			s.logger.WithContext(ctx).WithError(err).WithField("session_id", session.ID).Warn("Failed to publish consumed event")
		}
	}

	metrics.RecordSweeperRun("success", consumed)
	s.logger.WithContext(ctx).WithFields(map[string]any{
		"candidates": len(candidates),
		"consumed":   consumed,
	}).Info("Service session sweep finished")
	return consumed, nil
}
