package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/webtemplate/internal/auth/store/drivers/sqlite/migrations"
	"github.com/aussiebroadwan/webtemplate/pkg/slogx"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ApplyMigrations brings the schema up to the newest embedded migration.
// A database left dirty by an interrupted run is reported, not repaired.
func (s *Store) ApplyMigrations(ctx context.Context) error {
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite migrate driver: %w", err)
	}

	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return fmt.Errorf("sqlite migrate source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("sqlite migrate: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("sqlite migrate up: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("sqlite migrate version: %w", err)
	}
	if dirty {
		return fmt.Errorf("sqlite schema version %d is dirty", version)
	}

	slogx.FromContext(ctx).Debug("sqlite schema ready", "version", version)
	return nil
}
