package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/peony/pkg/booking"
	"github.com/Ramsey-B/peony/pkg/database"
	"github.com/Ramsey-B/peony/pkg/models"
	"github.com/Ramsey-B/peony/pkg/tracing"
)

var serviceSessionStruct = database.NewStruct(new(models.ServiceSession))

type ServiceSessionRepository struct {
	*Repository
}

func NewServiceSessionRepository(db database.DB, logger ectologger.Logger) *ServiceSessionRepository {
	return &ServiceSessionRepository{
		Repository: NewRepository(db, logger),
	}
}

// GetForUser loads a session owned by userID; other users' sessions are reported as missing
func (r *ServiceSessionRepository) GetForUser(ctx context.Context, id, userID string) (*models.ServiceSession, error) {
	ctx, span := tracing.StartSpan(ctx, "ServiceSessionRepository.GetForUser")
	defer span.End()

	sb := serviceSessionStruct.SelectFrom(models.ServiceSession{}.TableName())
	sb.Where(sb.Equal("id", id), sb.Equal("user_id", userID))

	query, args := sb.Build()
	var session models.ServiceSession
	err := r.q(ctx).GetContext(ctx, &session, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("service session %s does not exist", id)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("session_id", id).Error("failed to get service session")
		return nil, internalError("failed to get service session")
	}
	return &session, nil
}

func (r *ServiceSessionRepository) ListForUser(ctx context.Context, userID string) ([]models.ServiceSession, error) {
	ctx, span := tracing.StartSpan(ctx, "ServiceSessionRepository.ListForUser")
	defer span.End()

	sb := serviceSessionStruct.SelectFrom(models.ServiceSession{}.TableName())
	sb.Where(sb.Equal("user_id", userID))
	sb.OrderBy("created_at DESC", "id")

	query, args := sb.Build()
	sessions := make([]models.ServiceSession, 0)
	if err := r.q(ctx).SelectContext(ctx, &sessions, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("user_id", userID).Error("failed to list service sessions")
		return nil, internalError("failed to list service sessions")
	}
	return sessions, nil
}

// UpdateSchedule persists the customer-editable schedule columns
func (r *ServiceSessionRepository) UpdateSchedule(ctx context.Context, session *models.ServiceSession) error {
	ctx, span := tracing.StartSpan(ctx, "ServiceSessionRepository.UpdateSchedule")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(models.ServiceSession{}.TableName()).
		Set(
			ub.Assign("appointment_mode", session.AppointmentMode),
			ub.Assign("appointment_status", session.AppointmentStatus),
			ub.Assign("requested_date", session.RequestedDate),
			ub.Assign("requested_time", session.RequestedTime),
			ub.Assign("proposed_date", session.ProposedDate),
			ub.Assign("proposed_time", session.ProposedTime),
			ub.Assign("updated_at", sqlbuilder.Raw("NOW()")),
		).
		Where(ub.Equal("id", session.ID), ub.Equal("user_id", session.UserID))
	ub.SQL("RETURNING updated_at")

	query, args := ub.Build()
	err := r.q(ctx).QueryRowxContext(ctx, query, args...).Scan(&session.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return NotFound("service session %s does not exist", session.ID)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("session_id", session.ID).Error("failed to update service session schedule")
		return internalError("failed to update service session")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"session_id": session.ID,
		"status":     session.AppointmentStatus,
	}).Debug("Updated service session schedule")
	return nil
}

// sweepDateExpr mirrors booking.ConfirmedAt: the proposed date wins when set.
const (
	sweepDateExpr    = "COALESCE(NULLIF(TRIM(proposed_date), ''), TRIM(requested_date))"
	sweepDatePattern = `^[0-9]{4}-[0-9]{2}-[0-9]{2}$`
)

// ListSweepCandidates returns paid, confirmed, unconsumed sessions whose slot falls on or before through
// (a YYYY-MM-DD day), oldest slot first
func (r *ServiceSessionRepository) ListSweepCandidates(ctx context.Context, through string, limit int) ([]models.ServiceSession, error) {
	ctx, span := tracing.StartSpan(ctx, "ServiceSessionRepository.ListSweepCandidates")
	defer span.End()

	sb := serviceSessionStruct.SelectFrom(models.ServiceSession{}.TableName())
	sb.Where(
		sb.In("payment_status", booking.PaymentPaid, booking.PaymentAuthorized, booking.PaymentProcessing),
		sb.In("appointment_status", booking.StatusConfirmed, booking.StatusConfirmedByCustomer),
		sb.IsNull("consumed_at"),
		sb.LessEqualThan(sweepDateExpr, through),
		fmt.Sprintf("%s ~ %s", sweepDateExpr, sb.Var(sweepDatePattern)),
	)
	sb.OrderBy(sweepDateExpr, "id")
	if limit > 0 {
		sb.Limit(limit)
	}

	query, args := sb.Build()
	sessions := make([]models.ServiceSession, 0)
	if err := r.q(ctx).SelectContext(ctx, &sessions, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list sweep candidates")
		return nil, internalError("failed to list sweep candidates")
	}
	return sessions, nil
}

// MarkConsumed stamps consumed_at once; a second call is a no-op that reports false
func (r *ServiceSessionRepository) MarkConsumed(ctx context.Context, id string, at time.Time) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "ServiceSessionRepository.MarkConsumed")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(models.ServiceSession{}.TableName()).
		Set(
			ub.Assign("consumed_at", at),
			ub.Assign("updated_at", sqlbuilder.Raw("NOW()")),
		).
		Where(ub.Equal("id", id), ub.IsNull("consumed_at"))

	query, args := ub.Build()
	result, err := r.q(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("session_id", id).Error("failed to mark service session consumed")
		return false, internalError("failed to mark service session consumed")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, internalError("failed to mark service session consumed")
	}
	return n > 0, nil
}
