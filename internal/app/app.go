// Package app wires configuration into the running service.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/peony/config"
	"github.com/Ramsey-B/peony/internal/handlers"
	"github.com/Ramsey-B/peony/internal/server"
	"github.com/Ramsey-B/peony/pkg/database"
	"github.com/Ramsey-B/peony/pkg/geocode"
	"github.com/Ramsey-B/peony/pkg/health"
	"github.com/Ramsey-B/peony/pkg/httpclient"
	"github.com/Ramsey-B/peony/pkg/kafka"
	"github.com/Ramsey-B/peony/pkg/middleware"
	"github.com/Ramsey-B/peony/pkg/redis"
	"github.com/Ramsey-B/peony/pkg/repositories"
	"github.com/Ramsey-B/peony/pkg/sessions"
	"github.com/Ramsey-B/peony/pkg/shop"
	"github.com/Ramsey-B/peony/pkg/startup"
	"github.com/Ramsey-B/peony/pkg/tracing"
	"github.com/Ramsey-B/peony/pkg/tracing/exporters"
)

const (
	depTracing  = "tracing"
	depDatabase = "database"
	depRedis    = "redis"
	depKafka    = "kafka"
	depSweeper  = "sweeper"
	depHTTP     = "http"

	shutdownTimeout = 15 * time.Second
	cachePrefix     = "peony:cache:"
	lockPrefix      = "peony:lock:"
)

type App struct {
	cfg     *config.Config
	logger  ectologger.Logger
	startup *startup.Startup
	checker *health.Checker

	db       database.DB
	redis    *redis.Client
	producer *kafka.Producer
	sweeper  *sessions.Sweeper
	server   *server.Server
}

func New(cfg *config.Config, logger ectologger.Logger, version string) *App {
	a := &App{
		cfg:     cfg,
		logger:  logger,
		startup: startup.NewStartup(logger, cfg.StartupMaxAttempts),
		checker: health.NewChecker(version),
	}

	var shutdownTracing func(context.Context) error
	a.startup.AddDependency(&startup.Dependency{
		Name: depTracing,
		StartFn: func(ctx context.Context) error {
			if !cfg.OTLPEnabled {
				shutdownTracing = tracing.Init(cfg.AppName, &exporters.ConsoleExporter{})
				return nil
			}
			otlp := exporters.DefaultOTLPConfig()
			otlp.Endpoint = cfg.OTLPEndpoint
			otlp.Protocol = cfg.OTLPProtocol
			otlp.Insecure = cfg.OTLPInsecure
			exporter, err := exporters.NewOTLPExporter(ctx, otlp)
			if err != nil {
				return err
			}
			shutdownTracing = tracing.Init(cfg.AppName, exporter)
			return nil
		},
		StopFn: func(ctx context.Context) error {
			if shutdownTracing == nil {
				return nil
			}
			return shutdownTracing(ctx)
		},
	})

	a.startup.AddDependency(&startup.Dependency{
		Name:  depDatabase,
		Needs: []string{depTracing},
		StartFn: func(ctx context.Context) error {
			db, err := Connect(ctx, cfg, logger)
			if err != nil {
				return err
			}
			if err := NewMigrationService(cfg, logger).Migrate(cfg.DatabaseName, db.SQL()); err != nil {
				_ = db.Close()
				return err
			}
			a.db = db
			a.checker.Register(depDatabase, health.PingFunc(db.PingContext))
			return nil
		},
		StopFn: func(ctx context.Context) error {
			if a.db == nil {
				return nil
			}
			return a.db.Close()
		},
	})

	a.startup.AddDependency(&startup.Dependency{
		Name: depRedis,
		StartFn: func(ctx context.Context) error {
			client, err := redis.NewClient(ctx, redis.Config{
				Host:     cfg.RedisHost,
				Port:     cfg.RedisPort,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			}, logger)
			if err != nil {
				return err
			}
			a.redis = client
			a.checker.Register(depRedis, client)
			return nil
		},
		StopFn: func(ctx context.Context) error {
			if a.redis == nil {
				return nil
			}
			return a.redis.Close()
		},
	})

	a.startup.AddDependency(&startup.Dependency{
		Name: depKafka,
		StartFn: func(ctx context.Context) error {
			a.producer = kafka.NewProducer(kafka.Config{
				Brokers: cfg.KafkaBrokerList(),
				Topic:   cfg.KafkaServiceSessionTopic,
			}, logger)
			return nil
		},
		StopFn: func(ctx context.Context) error {
			if a.producer == nil {
				return nil
			}
			return a.producer.Close()
		},
	})

	a.startup.AddDependency(&startup.Dependency{
		Name:  depSweeper,
		Needs: []string{depDatabase, depKafka},
		StartFn: func(ctx context.Context) error {
			if !cfg.BookingSweepEnabled {
				logger.Info("Service session sweeper disabled")
				return nil
			}
			a.sweeper = sessions.NewSweeper(
				repositories.NewServiceSessionRepository(a.db, logger),
				a.producer,
				sessions.SweeperConfig{Schedule: cfg.BookingSweepSchedule, Location: cfg.Location()},
				logger,
			)
			return a.sweeper.Start(ctx)
		},
		StopFn: func(ctx context.Context) error {
			if a.sweeper == nil {
				return nil
			}
			return a.sweeper.Stop(ctx)
		},
	})

	a.startup.AddDependency(&startup.Dependency{
		Name:  depHTTP,
		Needs: []string{depDatabase, depRedis, depKafka},
		StartFn: func(ctx context.Context) error {
			srv, err := a.buildServer(ctx)
			if err != nil {
				return err
			}
			a.server = srv
			return srv.Start(ctx)
		},
		StopFn: func(ctx context.Context) error {
			if a.server == nil {
				return nil
			}
			return a.server.Stop(ctx)
		},
	})

	return a
}

func (a *App) buildServer(ctx context.Context) (*server.Server, error) {
	cfg, logger := a.cfg, a.logger

	var verifier middleware.TokenVerifier
	if cfg.AuthEnabled {
		v, err := middleware.NewOIDCVerifier(ctx, cfg.AuthIssuerURL, cfg.AuthClientID)
		if err != nil {
			return nil, fmt.Errorf("failed to discover issuer %s: %w", cfg.AuthIssuerURL, err)
		}
		verifier = v
	}

	lookup, err := geocode.NewClient(geocode.Config{
		BaseURL:       cfg.GeocodeBaseURL,
		UserAgent:     cfg.GeocodeUserAgent,
		RatePerSecond: float64(cfg.GeocodeRatePerSecond),
		CacheTTL:      cfg.GeocodeCacheTTL,
		CountryCodes:  cfg.GeocodeCountryCodes,
		Language:      cfg.DefaultLocale,
	}, httpclient.NewClient(httpclient.Config{Timeout: cfg.GeocodeTimeout}, logger), redis.NewCache(a.redis, cachePrefix), logger)
	if err != nil {
		return nil, err
	}

	catalog := repositories.NewCatalogRepository(a.db, logger)
	products := repositories.NewProductRepository(a.db, logger)
	serviceSessions := repositories.NewServiceSessionRepository(a.db, logger)

	booking := sessions.NewService(serviceSessions, redis.NewLocker(a.redis, lockPrefix), a.producer, cfg.BookingLockTTL, logger)

	return server.New(cfg, logger, verifier, a.checker, server.Handlers{
		Shop:  handlers.NewShopHandler(shop.NewService(catalog, catalog, products, logger), server.QueryConfig(cfg), cfg.DefaultLocale),
		Users: handlers.NewUserHandler(repositories.NewUserRepository(a.db, logger), cfg.SessionCookieName),
		Account: handlers.NewAccountHandler(handlers.AccountDeps{
			Folders:  repositories.NewAestheticFolderRepository(a.db, logger),
			Orders:   repositories.NewOrderRepository(a.db, logger),
			Sessions: serviceSessions,
			Booking:  booking,
			Lookup:   lookup,
			Logger:   logger,
		}),
	}), nil
}

// Run starts every dependency, serves until SIGINT or SIGTERM, then stops in reverse order.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.startup.Start(ctx); err != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = a.startup.Stop(stopCtx)
		return err
	}
	a.checker.SetReady(true)
	a.logger.Infof("%s started", a.cfg.AppName)

	<-ctx.Done()
	a.checker.SetReady(false)
	a.logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.startup.Stop(shutdownCtx)
}

// Connect opens the configured database.
func Connect(ctx context.Context, cfg *config.Config, logger ectologger.Logger) (database.DB, error) {
	return database.Connect(ctx, database.ConnectionConfig{
		Driver:          cfg.DatabaseDriver,
		DSN:             cfg.DatabaseDSN(),
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, logger)
}

func NewMigrationService(cfg *config.Config, logger ectologger.Logger) *database.MigrationService {
	return database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
		AutoRollback:        cfg.DatabaseMigrationAutoRollback,
	})
}
