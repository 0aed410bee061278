package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/peony/pkg/database"
	"github.com/Ramsey-B/peony/pkg/models"
	"github.com/Ramsey-B/peony/pkg/tracing"
)

var aestheticFolderStruct = database.NewStruct(new(models.AestheticFolder))

type AestheticFolderRepository struct {
	*Repository
}

func NewAestheticFolderRepository(db database.DB, logger ectologger.Logger) *AestheticFolderRepository {
	return &AestheticFolderRepository{
		Repository: NewRepository(db, logger),
	}
}

// GetByUser returns the user's folder, or an empty one if they never filled it in
func (r *AestheticFolderRepository) GetByUser(ctx context.Context, userID string) (*models.AestheticFolder, error) {
	ctx, span := tracing.StartSpan(ctx, "AestheticFolderRepository.GetByUser")
	defer span.End()

	sb := aestheticFolderStruct.SelectFrom(models.AestheticFolder{}.TableName())
	sb.Where(sb.Equal("user_id", userID))

	query, args := sb.Build()
	var folder models.AestheticFolder
	err := r.q(ctx).GetContext(ctx, &folder, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.AestheticFolder{UserID: userID}, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("user_id", userID).Error("failed to get aesthetic folder")
		return nil, internalError("failed to get aesthetic folder")
	}
	return &folder, nil
}

func (r *AestheticFolderRepository) Upsert(ctx context.Context, folder *models.AestheticFolder) error {
	ctx, span := tracing.StartSpan(ctx, "AestheticFolderRepository.Upsert")
	defer span.End()

	ib := database.NewInsertBuilder()
	ib.InsertInto(models.AestheticFolder{}.TableName()).
		Cols("user_id", "skin_type_id", "needs", "allergies", "notes", "preferences", "updated_at").
		Values(folder.UserID, folder.SkinType, folder.Needs, folder.Allergies, folder.Notes, folder.Preferences, sqlbuilder.Raw("NOW()"))
	ib.OnConflictUpdate([]string{"user_id"}, "skin_type_id", "needs", "allergies", "notes", "preferences", "updated_at")
	ib.Returning("updated_at")

	query, args := ib.Build()
	if err := r.q(ctx).QueryRowxContext(ctx, query, args...).Scan(&folder.UpdatedAt); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("user_id", folder.UserID).Error("failed to upsert aesthetic folder")
		return internalError("failed to save aesthetic folder")
	}

	r.logger.WithContext(ctx).WithField("user_id", folder.UserID).Debug("Saved aesthetic folder")
	return nil
}
