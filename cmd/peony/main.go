package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Ramsey-B/peony/config"
	"github.com/Ramsey-B/peony/internal/app"
	"github.com/Ramsey-B/peony/pkg/seed"
)

var version = "dev"

var (
	envFile       string
	seedFile      string
	rollbackSteps int

	cfg    *config.Config
	zlog   *zap.Logger
	logger ectologger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "peony",
	Short: "Peony storefront and account API",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(envFile)
		if err != nil {
			return err
		}

		zcfg := zap.NewProductionConfig()
		if cfg.PrettyLogs {
			zcfg = zap.NewDevelopmentConfig()
		}
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)

		zlog, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = zapadapter.NewZapEctoLogger(zlog, nil)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if zlog != nil {
			_ = zlog.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the service session sweeper",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.New(cfg, logger, version).Run(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := app.Connect(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		return app.NewMigrationService(cfg, logger).Migrate(cfg.DatabaseName, db.SQL())
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Revert the most recent migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := app.Connect(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		return app.NewMigrationService(cfg, logger).Rollback(cfg.DatabaseName, db.SQL(), rollbackSteps)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert catalog fixtures from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		fixtures, err := seed.LoadFile(seedFile)
		if err != nil {
			return err
		}

		db, err := app.Connect(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		summary, err := seed.NewSeeder(db, logger).Apply(cmd.Context(), fixtures)
		if err != nil {
			return err
		}
		for table, n := range summary {
			fmt.Fprintf(cmd.OutOrStdout(), "%-32s %d\n", table, n)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file read before the environment")

	rollbackCmd.Flags().IntVar(&rollbackSteps, "steps", 1, "number of migrations to revert")
	migrateCmd.AddCommand(rollbackCmd)

	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "db/seed/catalog.yaml", "fixture file")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
