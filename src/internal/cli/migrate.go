package cli

import (
	"context"
	"fmt"

	"github.com/api-sage/cashflow-ledger/src/internal/adapter/repository/postgres"
	"github.com/api-sage/cashflow-ledger/src/internal/adapter/repository/sqlite"
	"github.com/api-sage/cashflow-ledger/src/internal/config"
	"github.com/api-sage/cashflow-ledger/src/internal/logger"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long: `Apply pending schema migrations for the configured store driver.
Postgres reads SQL files from MIGRATIONS_DIR; SQLite applies its embedded
schema when the database is opened. The memory driver has nothing to migrate.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return migrate(cmd.Context(), cfg)
	},
}

func migrate(ctx context.Context, cfg config.Config) error {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseDSN, postgres.DefaultPoolConfig())
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := postgres.RunMigrations(ctx, db, cfg.MigrationsDir)
		if err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations completed successfully", logger.Fields{
			"applied": applied,
			"dir":     cfg.MigrationsDir,
		})
	case config.StoreSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return err
		}
		logger.Info("sqlite schema is up to date", logger.Fields{"path": cfg.SQLitePath})
		return store.Close()
	default:
		logger.Info("store driver has no schema to migrate", logger.Fields{"storeDriver": cfg.StoreDriver})
	}

	return nil
}
