package database

import (
	"context"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"

	"github.com/healthai-suite/triage-server/internal/domain"
)

// MigrationRunner applies the audit-log schema (analysis_history and
// feedback tables) to the history database.
type MigrationRunner struct {
	migrate  *migrate.Migrate
	database string
	log      *logrus.Logger
}

// migrationURL builds the postgres URL golang-migrate dials. The pgx pool
// uses a keyword DSN instead; both come from the same HistoryConfig.
func migrationURL(config domain.HistoryConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		config.Username, config.Password, config.Host, config.Port,
		config.Database, config.SSLMode)
}

// NewMigrationRunner opens a runner over the configured migrations
// directory against the history database.
func NewMigrationRunner(config domain.HistoryConfig, logger *logrus.Logger) (*MigrationRunner, error) {
	m, err := migrate.New(
		fmt.Sprintf("file://%s", config.MigrationsPath),
		migrationURL(config),
	)
	if err != nil {
		return nil, fmt.Errorf("creating migration instance: %w", err)
	}

	return &MigrationRunner{
		migrate:  m,
		database: config.Database,
		log:      logger,
	}, nil
}

// Up applies all pending audit-log migrations
func (r *MigrationRunner) Up(ctx context.Context) error {
	r.log.WithField("database", r.database).Info("Applying audit-log schema migrations")

	if err := r.migrate.Up(); err != nil {
		if err == migrate.ErrNoChange {
			r.log.Info("Audit-log schema already up to date")
			return nil
		}
		return fmt.Errorf("applying migrations: %w", err)
	}

	version, dirty, err := r.migrate.Version()
	if err != nil {
		r.log.WithError(err).Warn("Could not read schema version after migrating up")
	} else {
		r.log.WithFields(logrus.Fields{
			"database": r.database,
			"version":  version,
			"dirty":    dirty,
		}).Info("Audit-log schema migrated")
	}

	return nil
}

// Down rolls back one audit-log migration
func (r *MigrationRunner) Down(ctx context.Context) error {
	r.log.WithField("database", r.database).Info("Rolling back one audit-log migration")

	if err := r.migrate.Steps(-1); err != nil {
		if err == migrate.ErrNoChange {
			r.log.Info("No audit-log migrations to roll back")
			return nil
		}
		return fmt.Errorf("rolling back migration: %w", err)
	}

	version, dirty, err := r.migrate.Version()
	if err != nil {
		r.log.WithError(err).Warn("Could not read schema version after rolling back")
	} else {
		r.log.WithFields(logrus.Fields{
			"database": r.database,
			"version":  version,
			"dirty":    dirty,
		}).Info("Audit-log migration rolled back")
	}

	return nil
}

// Version returns the current audit-log schema version
func (r *MigrationRunner) Version() (uint, bool, error) {
	return r.migrate.Version()
}

// Close closes the migration runner
func (r *MigrationRunner) Close() error {
	sourceErr, dbErr := r.migrate.Close()
	if sourceErr != nil {
		return fmt.Errorf("closing migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("closing migration database: %w", dbErr)
	}
	return nil
}
