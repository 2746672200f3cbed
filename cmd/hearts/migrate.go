package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hearts/internal/config"
	"hearts/internal/store/sqlstore"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the SQL schema",
	Long: `Apply the Hearts schema to the configured SQL database. Safe to run repeatedly.

Examples:
  hearts migrate --storage sqlite3 --dsn ./hearts.db
  HEARTS_STORAGE_DRIVER=pgx HEARTS_STORAGE_DSN=postgres://localhost/nakama hearts migrate`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.Storage.Driver == config.DriverMemory {
			return fmt.Errorf("migrate needs a sql storage driver, got %q", cfg.Storage.Driver)
		}
		db, err := sqlstore.Open(cfg.Storage.Driver, cfg.Storage.DSN)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := sqlstore.New(db).Migrate(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema is up to date (%s)\n", cfg.Storage.Driver)
		return nil
	},
}
