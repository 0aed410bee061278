package seed_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/Ramsey-B/peony/pkg/database"
	"github.com/Ramsey-B/peony/pkg/repositories"
	"github.com/Ramsey-B/peony/pkg/seed"
	"github.com/Ramsey-B/peony/pkg/shop"
)

func startPostgres(t *testing.T, ctx context.Context) string {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "peony",
				"POSTGRES_PASSWORD": "peony",
				"POSTGRES_DB":       "peony",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("host=%s port=%s user=peony password=peony dbname=peony sslmode=disable", host, port.Port())
}

func TestMigrateSeedAndLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a postgres container")
	}

	ctx := context.Background()
	z, _ := zap.NewDevelopment()
	logger := zapadapter.NewZapEctoLogger(z, nil)

	db, err := database.Connect(ctx, database.ConnectionConfig{Driver: "postgres", DSN: startPostgres(t, ctx)}, logger)
	require.NoError(t, err)
	defer db.Close()

	folder, err := filepath.Abs("../../db/pg")
	require.NoError(t, err)
	migrations := database.NewMigrationService(logger, &database.MigrationConfig{MigrationFolderPath: folder})
	require.NoError(t, migrations.Migrate("peony", db.SQL()))

	fixtures, err := seed.LoadFile("../../db/seed/catalog.yaml")
	require.NoError(t, err)

	seeder := seed.NewSeeder(db, logger)
	summary, err := seeder.Apply(ctx, fixtures)
	require.NoError(t, err)
	assert.Equal(t, 4, summary["products"])

	// upserts are idempotent
	_, err = seeder.Apply(ctx, fixtures)
	require.NoError(t, err)

	catalog := repositories.NewCatalogRepository(db, logger)
	svc := shop.NewService(catalog, catalog, repositories.NewProductRepository(db, logger), logger)

	data, err := svc.Load(ctx, "en")
	require.NoError(t, err)
	assert.Len(t, data.Products, 4)
	assert.Len(t, data.Taxonomies.Needs, 3)
	assert.Len(t, data.RoutineTemplates, 2)

	card, err := svc.Product(ctx, "siero-acido-ialuronico", "it")
	require.NoError(t, err)
	assert.Equal(t, "siero-acido-ialuronico", card.Slug)

	latest, err := database.LatestMigrationVersion(folder)
	require.NoError(t, err)
	assert.Equal(t, 20260302090400, latest)

	require.NoError(t, migrations.Rollback("peony", db.SQL(), 5))
}
