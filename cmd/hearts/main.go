// Package main implements the hearts CLI for bot simulations and schema management.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hearts/internal/config"
	"hearts/internal/logging"
)

var (
	// configPath is the optional YAML config file
	configPath string
	// envFile is loaded into the environment before the config
	envFile string
	// version information
	version = "dev"

	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hearts",
	Short: "Hearts engine tooling",
	Long: `hearts runs bot-only Hearts games through the engine and manages the
SQL schema used by the Nakama module.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().String("storage", "", "storage driver (memory, sqlite3, pgx)")
	rootCmd.PersistentFlags().String("dsn", "", "storage DSN")
	rootCmd.PersistentFlags().String("log-level", "", "log level")
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(migrateCmd)
}

// setup loads .env, the config file and flag overrides, then builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if v, _ := flags.GetString("storage"); v != "" {
		loaded.Storage.Driver = v
	}
	if v, _ := flags.GetString("dsn"); v != "" {
		loaded.Storage.DSN = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		loaded.Log.Level = v
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	l, err := logging.New(loaded.Log)
	if err != nil {
		return err
	}
	cfg, logger = loaded, l
	return nil
}
