// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration applies the SQL files under MIGRATION_PATH to the
// postgres document store with golang-migrate.
package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Registers the "pgx5" database scheme.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// Registers the "file" source scheme.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Status is the schema version recorded in schema_migrations.
type Status struct {
	// Version is 0 before the first migration ran.
	Version uint
	Dirty   bool
}

// Runner owns one golang-migrate instance. Close it when done.
type Runner struct {
	migrator *migrate.Migrate
	logger   *slog.Logger
}

// Open prepares a runner. The source directory is read before the database
// is contacted, so a wrong MIGRATION_PATH fails without a connection.
func Open(dsn, migrationsPath string, logger *slog.Logger) (*Runner, error) {
	migrator, err := migrate.New("file://"+migrationsPath, DatabaseURL(dsn))
	if err != nil {
		return nil, fmt.Errorf("migration: failed to initialize: %w", err)
	}
	migrator.Log = &migrateLogger{logger: logger}

	return &Runner{migrator: migrator, logger: logger}, nil
}

// Status reports the current schema version.
func (runner *Runner) Status() (Status, error) {
	version, dirty, err := runner.migrator.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return Status{}, nil
	case err != nil:
		return Status{}, fmt.Errorf("migration: failed to read version: %w", err)
	}
	return Status{Version: version, Dirty: dirty}, nil
}

// Up applies every pending migration. A dirty schema is refused.
func (runner *Runner) Up() (Status, error) {
	before, err := runner.Status()
	if err != nil {
		return Status{}, err
	}
	if before.Dirty {
		return before, fmt.Errorf("migration: schema is dirty at version %d, fix it by hand and force the version", before.Version)
	}

	if err := runner.migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			runner.logger.Info("migration_already_up_to_date", slog.Uint64("version", uint64(before.Version)))
			return before, nil
		}
		return before, fmt.Errorf("migration: up failed: %w", err)
	}

	after, err := runner.Status()
	if err != nil {
		return before, err
	}
	runner.logger.Info("migration_applied",
		slog.Uint64("from_version", uint64(before.Version)),
		slog.Uint64("to_version", uint64(after.Version)),
	)
	return after, nil
}

// Close releases the source and the database connection.
func (runner *Runner) Close() {
	sourceErr, databaseErr := runner.migrator.Close()
	if err := errors.Join(sourceErr, databaseErr); err != nil {
		runner.logger.Warn("migration_close_failed", slog.Any("error", err))
	}
}

// RunUp opens a runner, applies pending migrations and closes it.
func RunUp(dsn, migrationsPath string, logger *slog.Logger) error {
	runner, err := Open(dsn, migrationsPath, logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	_, err = runner.Up()
	return err
}

// DatabaseURL rewrites postgres:// and postgresql:// to the pgx5:// scheme
// the migrate driver registers. Other inputs pass through.
func DatabaseURL(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, found := strings.CutPrefix(dsn, scheme); found {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// migrateLogger forwards golang-migrate output to slog at debug level.
type migrateLogger struct {
	logger *slog.Logger
}

func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), slog.String("component", "migrate"))
}

func (l *migrateLogger) Verbose() bool {
	return l.logger.Enabled(context.Background(), slog.LevelDebug)
}
