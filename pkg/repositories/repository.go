package repositories

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/peony/pkg/database"
	"github.com/Ramsey-B/peony/pkg/tracing"
)

// NotFound returns a 404 HTTP error with a descriptive message
func NotFound(format string, args ...any) error {
	return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf(format, args...))
}

func internalError(message string) error {
	return httperror.NewHTTPError(http.StatusInternalServerError, message)
}

// Repository holds what every repository needs
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

func (r *Repository) DB() database.DB {
	return r.db
}

// q runs against the transaction carried by ctx when there is one
func (r *Repository) q(ctx context.Context) database.Querier {
	return database.QuerierFrom(ctx, r.db)
}

// listAll selects every row of table into []T, ordered by orderBy
func listAll[T any](ctx context.Context, r *Repository, span string, table string, s *database.Struct, orderBy ...string) ([]T, error) {
	ctx, sp := tracing.StartSpan(ctx, span)
	defer sp.End()

	sb := s.SelectFrom(table)
	if len(orderBy) > 0 {
		sb.OrderBy(orderBy...)
	}

	query, args := sb.Build()
	rows := make([]T, 0)
	if err := r.q(ctx).SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("table", table).Error("failed to list rows")
		return nil, internalError(fmt.Sprintf("failed to list %s", table))
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"table": table,
		"count": len(rows),
	}).Debugf("Listed %s", table)
	return rows, nil
}
