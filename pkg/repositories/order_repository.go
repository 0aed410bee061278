package repositories

import (
	"context"

	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/peony/pkg/database"
	"github.com/Ramsey-B/peony/pkg/models"
	"github.com/Ramsey-B/peony/pkg/tracing"
)

var (
	orderStruct     = database.NewStruct(new(models.Order))
	orderItemStruct = database.NewStruct(new(models.OrderItem))
)

type OrderRepository struct {
	*Repository
}

func NewOrderRepository(db database.DB, logger ectologger.Logger) *OrderRepository {
	return &OrderRepository{
		Repository: NewRepository(db, logger),
	}
}

// ListForUser returns the user's orders, newest first, with their product lines attached.
// Service lines are listed through the service sessions instead.
func (r *OrderRepository) ListForUser(ctx context.Context, userID string) ([]models.Order, error) {
	ctx, span := tracing.StartSpan(ctx, "OrderRepository.ListForUser")
	defer span.End()

	sb := orderStruct.SelectFrom(models.Order{}.TableName())
	sb.Where(sb.Equal("user_id", userID))
	sb.OrderBy("created_at DESC", "id")

	query, args := sb.Build()
	orders := make([]models.Order, 0)
	if err := r.q(ctx).SelectContext(ctx, &orders, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("user_id", userID).Error("failed to list orders")
		return nil, internalError("failed to list orders")
	}
	if len(orders) == 0 {
		return orders, nil
	}

	orderIDs := ectolinq.Map(orders, func(o models.Order) any { return o.ID })
	itemsQuery := orderItemStruct.SelectFrom(models.OrderItem{}.TableName())
	itemsQuery.Where(itemsQuery.In("order_id", orderIDs...), itemsQuery.Equal("kind", models.OrderItemProduct))
	itemsQuery.OrderBy("order_id", "id")

	query, args = itemsQuery.Build()
	items := make([]models.OrderItem, 0)
	if err := r.q(ctx).SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("user_id", userID).Error("failed to list order items")
		return nil, internalError("failed to list orders")
	}

	byOrder := make(map[string][]models.OrderItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []models.OrderItem{}
		}
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"user_id": userID,
		"count":   len(orders),
	}).Debug("Listed orders")
	return orders, nil
}
