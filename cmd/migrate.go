package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dosada05/tennis-tournament/config"
	"github.com/Dosada05/tennis-tournament/db"
)

var migratePrint bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the PostgreSQL schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if migratePrint {
			_, err := fmt.Fprint(cmd.OutOrStdout(), db.Schema())
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if cfg.StorageDriver != config.StorageDriverPostgres {
			return fmt.Errorf("migrate requires STORAGE_DRIVER=%s, got %s", config.StorageDriverPostgres, cfg.StorageDriver)
		}
		logger := newLogger(cfg.LogLevel)

		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer closeDB(dbConn, logger)

		if err := db.Migrate(cmd.Context(), dbConn); err != nil {
			return err
		}
		logger.Info("database schema applied", slog.String("database", "postgres"))
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migratePrint, "print", false, "Print the schema instead of applying it")
	rootCmd.AddCommand(migrateCmd)
}
