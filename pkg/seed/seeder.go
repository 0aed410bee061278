package seed

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/peony/pkg/database"
	"github.com/Ramsey-B/peony/pkg/tracing"
)

const batchSize = 500

// Summary counts upserted rows per table.
type Summary map[string]int

type Seeder struct {
	db     database.DB
	logger ectologger.Logger
	now    func() time.Time
}

func NewSeeder(db database.DB, logger ectologger.Logger) *Seeder {
	return &Seeder{db: db, logger: logger, now: time.Now}
}

// Apply upserts every fixture by id in one transaction, parents before children.
// Rows already present are overwritten; rows absent from the fixtures are left alone.
func (s *Seeder) Apply(ctx context.Context, f *Fixtures) (_ Summary, err error) {
	ctx, span := tracing.StartSpan(ctx, "Seeder.Apply")
	defer span.End()

	f.stamp(s.now().UTC())

	ctx, tx, err := s.db.GetTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	summary := Summary{}
	steps := []func() error{
		func() error { return upsert(ctx, tx, summary, f.Needs) },
		func() error { return upsert(ctx, tx, summary, f.Textures) },
		func() error { return upsert(ctx, tx, summary, f.ProductAreas) },
		func() error { return upsert(ctx, tx, summary, f.Timings) },
		func() error { return upsert(ctx, tx, summary, f.SkinTypes) },
		func() error { return upsert(ctx, tx, summary, f.Brands) },
		func() error { return upsert(ctx, tx, summary, f.BrandLines) },
		func() error { return upsert(ctx, tx, summary, f.RoutineSteps) },
		func() error { return upsert(ctx, tx, summary, f.Products) },
		func() error { return upsert(ctx, tx, summary, f.RoutineTemplates) },
		func() error { return upsert(ctx, tx, summary, f.RoutineTemplateSteps) },
		func() error { return upsert(ctx, tx, summary, f.RoutineTemplateStepProducts) },
		func() error { return upsert(ctx, tx, summary, f.RoutineStepRules) },
	}
	for _, step := range steps {
		if err = step(); err != nil {
			s.logger.WithContext(ctx).WithError(err).Error("Seeding failed, rolling back")
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit seed transaction: %w", err)
	}

	s.logger.WithContext(ctx).WithField("tables", summary).Info("Seeded catalog fixtures")
	return summary, nil
}

type tabler interface {
	TableName() string
}

func upsert[T tabler](ctx context.Context, q database.Querier, summary Summary, rows []T) error {
	if len(rows) == 0 {
		return nil
	}

	var zero T
	table := zero.TableName()
	st := database.NewStruct(new(T))
	update := updatableColumns(zero)

	for start := 0; start < len(rows); start += batchSize {
		batch := rows[start:min(start+batchSize, len(rows))]
		values := make([]any, 0, len(batch))
		for _, row := range batch {
			values = append(values, row)
		}

		ib := st.InsertInto(table, values...)
		ib.OnConflictUpdate([]string{"id"}, update...)

		query, args := ib.Build()
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to upsert %s: %w", table, err)
		}
	}

	summary[table] += len(rows)
	return nil
}

// updatableColumns lists the db columns of v that an upsert may overwrite.
func updatableColumns(v any) []string {
	t := reflect.TypeOf(v)
	cols := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name := strings.SplitN(t.Field(i).Tag.Get("db"), ",", 2)[0]
		switch name {
		case "", "-", "id", "created_at":
			continue
		}
		cols = append(cols, name)
	}
	return cols
}
