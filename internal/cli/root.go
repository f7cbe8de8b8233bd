// Package cli implements the flashwash command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/juju/loggo"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"flashwash/internal/config"
	"flashwash/internal/database"
)

var logger = loggo.GetLogger("flashwash.cli")

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "flashwash",
		Short:         "Service booking API with per-offer reservation admission",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newProviderCmd())
	root.AddCommand(newOfferCmd())
	root.AddCommand(newTokenCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies the logging configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := loggo.ConfigureLoggers(cfg.LogConfig); err != nil {
		return nil, fmt.Errorf("LOG_CONFIG: %w", err)
	}
	return cfg, nil
}

func openDB(cfg *config.Config, migrate bool) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.IsProd() {
		level = gormlogger.Error
	}

	db, err := database.Connect(cfg.DatabaseURL, level)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if migrate {
		if err := database.Migrate(db, database.MigrateOptions{ExclusionConstraint: cfg.ExclusionConstraint}); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warningf("close database: %v", err)
	}
}
