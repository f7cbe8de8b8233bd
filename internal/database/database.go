package database

import (
	"fmt"
	"strings"

	"github.com/juju/loggo"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"flashwash/internal/repository"
)

var logger = loggo.GetLogger("flashwash.database")

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Connect opens PostgreSQL for postgres:// DSNs and the pure-Go SQLite
// driver for anything else.
func Connect(dsn string, level gormlogger.LogLevel) (*gorm.DB, error) {
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
	}

	if isPostgres(dsn) {
		logger.Infof("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	logger.Infof("using SQLite: %s", dsn)
	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
}

type MigrateOptions struct {
	// ExclusionConstraint installs the PostgreSQL guard-band exclusion
	// constraint on reservation_requests. Ignored on other dialects.
	ExclusionConstraint bool
}

const exclusionConstraintSQL = `
DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint WHERE conname = 'reservation_requests_no_overlap'
	) THEN
		ALTER TABLE reservation_requests
			ADD CONSTRAINT reservation_requests_no_overlap
			EXCLUDE USING gist (
				offer_id WITH =,
				tstzrange(guard_from, guard_to, '()') WITH &&
			)
			WHERE (status IN ('pending', 'accepted'));
	END IF;
END
$$;`

func Migrate(db *gorm.DB, opts MigrateOptions) error {
	if err := db.AutoMigrate(repository.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if !opts.ExclusionConstraint {
		return nil
	}
	if db.Dialector.Name() != "postgres" {
		logger.Warningf("exclusion constraint requested on %s; skipping", db.Dialector.Name())
		return nil
	}
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
		return fmt.Errorf("enable btree_gist: %w", err)
	}
	if err := db.Exec(exclusionConstraintSQL).Error; err != nil {
		return fmt.Errorf("install exclusion constraint: %w", err)
	}
	logger.Infof("guard-band exclusion constraint installed")
	return nil
}
