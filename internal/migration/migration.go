package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

type Options struct {
	AppVersion string
	Log        *zap.Logger
	// LockPoll is how often a waiting migrator retries the schema lock.
	LockPoll time.Duration
	Now      func() time.Time
}

// Run applies the embedded postgres migrations under the schema lock and
// records the resulting manifest in schema_state.
func Run(ctx context.Context, db *sql.DB, opts Options) error {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.LockPoll <= 0 {
		opts.LockPoll = 500 * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Log

	manifest, err := LoadManifest()
	if err != nil {
		return err
	}

	release, err := lockSchema(ctx, db, opts.LockPoll, log)
	if err != nil {
		return err
	}
	defer release()

	migrator, err := newMigrator(db, log)
	if err != nil {
		return err
	}

	from, err := cleanVersion(migrator)
	if err != nil {
		return err
	}
	if from > manifest.Version {
		return fmt.Errorf("database schema %d is newer than this build (%d)", from, manifest.Version)
	}
	// schema_state exists from step 1 on.
	if from > 0 && from < manifest.Version {
		if err := markSchema(ctx, db, StatusMigrating, manifest, opts.AppVersion, opts.Now()); err != nil {
			return err
		}
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	to, err := cleanVersion(migrator)
	if err != nil {
		return err
	}
	if to != manifest.Version {
		return fmt.Errorf("schema version mismatch after migrate: got %d want %d", to, manifest.Version)
	}

	if err := markSchema(ctx, db, StatusActive, manifest, opts.AppVersion, opts.Now()); err != nil {
		return err
	}
	log.Info("schema active",
		zap.Uint("from", from),
		zap.Uint("to", to),
		zap.String("checksum", manifest.Checksum),
		zap.String("app_version", opts.AppVersion),
	)
	return nil
}

func newMigrator(db *sql.DB, log *zap.Logger) (*migrate.Migrate, error) {
	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("create migration driver: %w", err)
	}
	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	migrator.Log = migrateLogger{log: log}
	return migrator, nil
}

func cleanVersion(migrator *migrate.Migrate) (uint, error) {
	version, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("database migrations are dirty at version %d, fix the schema and force the version", version)
	}
	return version, nil
}

// migrateLogger sends golang-migrate progress lines to zap.
type migrateLogger struct {
	log *zap.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool { return false }
