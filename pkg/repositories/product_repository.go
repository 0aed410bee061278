package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/peony/pkg/database"
	"github.com/Ramsey-B/peony/pkg/models"
	"github.com/Ramsey-B/peony/pkg/tracing"
)

var productStruct = database.NewStruct(new(models.Product))

type ProductRepository struct {
	*Repository
}

func NewProductRepository(db database.DB, logger ectologger.Logger) *ProductRepository {
	return &ProductRepository{
		Repository: NewRepository(db, logger),
	}
}

// ListPublished returns published products, newest first
func (r *ProductRepository) ListPublished(ctx context.Context) ([]models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "ProductRepository.ListPublished")
	defer span.End()

	table := models.Product{}.TableName()
	sb := productStruct.SelectFrom(table)
	sb.Where(sb.Equal("published", true))
	sb.OrderBy("created_at DESC", "id")

	query, args := sb.Build()
	products := make([]models.Product, 0)
	if err := r.q(ctx).SelectContext(ctx, &products, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list published products")
		return nil, internalError("failed to list products")
	}

	r.logger.WithContext(ctx).WithField("count", len(products)).Debugf("Listed published %s", table)
	return products, nil
}

func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "ProductRepository.GetBySlug")
	defer span.End()

	sb := productStruct.SelectFrom(models.Product{}.TableName())
	sb.Where(sb.Equal("slug", slug), sb.Equal("published", true))

	query, args := sb.Build()
	var product models.Product
	err := r.q(ctx).GetContext(ctx, &product, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("product '%s' does not exist", slug)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("slug", slug).Error("failed to get product by slug")
		return nil, internalError("failed to get product")
	}

	return &product, nil
}
