package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/tendant/voicehub/migrations"
)

// Migrator applies the embedded schema migrations on a dedicated connection.
type Migrator struct {
	m      *migrate.Migrate
	source source.Driver
	logger *slog.Logger
}

// NewMigrator prepares a migrator bound to a single connection taken from db.
// Close releases the connection but leaves db open.
func NewMigrator(ctx context.Context, db *sql.DB, logger *slog.Logger) (*Migrator, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire dedicated connection: %w", err)
	}

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{
		MigrationsTable: "schema_migrations",
	})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize postgres driver: %w", err)
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = src.Close()
		_ = driver.Close()
		return nil, fmt.Errorf("create migrator: %w", err)
	}

	return &Migrator{m: m, source: src, logger: logger}, nil
}

// Up applies all pending migrations. A dirty database is forced back to the
// version before the failed one, so Up runs the failed step again. Each
// migration file runs in one transaction, so a failed step leaves nothing behind.
func (m *Migrator) Up() error {
	version, dirty, err := m.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		m.logger.Info("no migrations have been applied yet")
	case err != nil:
		m.logger.Warn("failed to read migration version", "error", err)
	default:
		m.logger.Info("current migration state", "version", version, "dirty", dirty)
	}

	if dirty {
		prev, err := m.previousVersion(version)
		if err != nil {
			return err
		}
		m.logger.Warn("database is dirty, retrying failed migration", "failed_version", version, "forced_version", prev)
		if err := m.m.Force(prev); err != nil {
			return fmt.Errorf("force version %d: %w", prev, err)
		}
	}

	if err := m.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("no new migrations to apply")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	m.logger.Info("migrations applied")
	return nil
}

// previousVersion returns the migration before version, or NilVersion when
// version is the first one.
func (m *Migrator) previousVersion(version uint) (int, error) {
	prev, err := m.source.Prev(version)
	if errors.Is(err, fs.ErrNotExist) {
		return database.NilVersion, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find migration before %d: %w", version, err)
	}
	return int(prev), nil
}

// Down rolls back the given number of steps.
func (m *Migrator) Down(steps int) error {
	if steps < 1 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	if err := m.m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("roll back migrations: %w", err)
	}
	return nil
}

// Version returns the current schema version.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Close releases the migration source and connection.
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}
