package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/peony/pkg/database"
	"github.com/Ramsey-B/peony/pkg/models"
	"github.com/Ramsey-B/peony/pkg/tracing"
)

var (
	userStruct    = database.NewStruct(new(models.User))
	addressStruct = database.NewStruct(new(models.Address))
)

// ProfileUpdate carries the editable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	FirstName      *string
	LastName       *string
	Phone          *string
	Locale         *string
	MarketingOptIn *bool
}

func (p ProfileUpdate) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil && p.Locale == nil && p.MarketingOptIn == nil
}

type UserRepository struct {
	*Repository
}

func NewUserRepository(db database.DB, logger ectologger.Logger) *UserRepository {
	return &UserRepository{
		Repository: NewRepository(db, logger),
	}
}

// GetByID loads a user together with their address book
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.GetByID")
	defer span.End()

	sb := userStruct.SelectFrom(models.User{}.TableName())
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var user models.User
	err := r.q(ctx).GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("user %s does not exist", id)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("user_id", id).Error("failed to get user by ID")
		return nil, internalError("failed to get user")
	}

	addresses, err := r.ListAddresses(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Addresses = addresses

	return &user, nil
}

func (r *UserRepository) ListAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.ListAddresses")
	defer span.End()

	sb := addressStruct.SelectFrom(models.Address{}.TableName())
	sb.Where(sb.Equal("user_id", userID))
	sb.OrderBy("position", "id")

	query, args := sb.Build()
	addresses := make([]models.Address, 0)
	if err := r.q(ctx).SelectContext(ctx, &addresses, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("user_id", userID).Error("failed to list addresses")
		return nil, internalError("failed to list addresses")
	}
	return addresses, nil
}

// UpdateProfile applies the non-nil fields of update
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) error {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.UpdateProfile")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(models.User{}.TableName())

	assignments := []string{ub.Assign("updated_at", sqlbuilder.Raw("NOW()"))}
	if update.FirstName != nil {
		assignments = append(assignments, ub.Assign("first_name", *update.FirstName))
	}
	if update.LastName != nil {
		assignments = append(assignments, ub.Assign("last_name", *update.LastName))
	}
	if update.Phone != nil {
		assignments = append(assignments, ub.Assign("phone", *update.Phone))
	}
	if update.Locale != nil {
		assignments = append(assignments, ub.Assign("locale", *update.Locale))
	}
	if update.MarketingOptIn != nil {
		assignments = append(assignments, ub.Assign("marketing_opt_in", *update.MarketingOptIn))
	}
	ub.Set(assignments...)
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()
	result, err := r.q(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("user_id", id).Error("failed to update profile")
		return internalError("failed to update profile")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return NotFound("user %s does not exist", id)
	}

	r.logger.WithContext(ctx).WithField("user_id", id).Debug("Updated profile")
	return nil
}

// ReplaceAddresses swaps the whole address book in one transaction. Exactly one address ends
// up default when the book is not empty.
func (r *UserRepository) ReplaceAddresses(ctx context.Context, userID string, addresses []models.Address) (_ []models.Address, err error) {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.ReplaceAddresses")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, internalError("failed to save addresses")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	table := models.Address{}.TableName()
	del := database.NewDeleteBuilder()
	del.DeleteFrom(table)
	del.Where(del.Equal("user_id", userID))

	query, args := del.Build()
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("user_id", userID).Error("failed to clear addresses")
		return nil, internalError("failed to save addresses")
	}

	saved := normalizeAddresses(userID, addresses)
	if len(saved) > 0 {
		ib := addressStruct.InsertInto(table, toAny(saved)...)
		query, args = ib.Build()
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithField("user_id", userID).Error("failed to insert addresses")
			return nil, internalError("failed to save addresses")
		}
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("user_id", userID).Error("failed to commit addresses")
		return nil, internalError("failed to save addresses")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"user_id": userID,
		"count":   len(saved),
	}).Debug("Replaced addresses")
	return saved, nil
}

func normalizeAddresses(userID string, addresses []models.Address) []models.Address {
	out := make([]models.Address, 0, len(addresses))
	defaultSeen := false
	for i, a := range addresses {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		a.UserID = userID
		a.Position = i
		if a.IsDefault && defaultSeen {
			a.IsDefault = false
		}
		defaultSeen = defaultSeen || a.IsDefault
		out = append(out, a)
	}
	if !defaultSeen && len(out) > 0 {
		out[0].IsDefault = true
	}
	return out
}

func toAny[T any](items []T) []any {
	out := make([]any, 0, len(items))
	for i := range items {
		out = append(out, &items[i])
	}
	return out
}

func ProfileUpdateFromPatch(p models.ProfilePatch) ProfileUpdate {
	return ProfileUpdate{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Phone:          p.Phone,
		Locale:         p.Locale,
		MarketingOptIn: p.MarketingOptIn,
	}
}

// ApplyPatch updates profile fields and, when present, the address book in one transaction,
// then returns the stored user.
func (r *UserRepository) ApplyPatch(ctx context.Context, id string, patch models.ProfilePatch) (_ *models.User, err error) {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.ApplyPatch")
	defer span.End()

	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, internalError("failed to update profile")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(txCtx)
		}
	}()

	update := ProfileUpdateFromPatch(patch)
	if !update.IsEmpty() {
		if err = r.UpdateProfile(txCtx, id, update); err != nil {
			return nil, err
		}
	}
	if patch.Addresses != nil {
		if _, err = r.ReplaceAddresses(txCtx, id, *patch.Addresses); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(txCtx); err != nil {
		return nil, internalError("failed to update profile")
	}

	return r.GetByID(ctx, id)
}
