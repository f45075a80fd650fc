// Package migration applies the replica table DDL. Migrations only run
// through the explicit migrate command; a sync run never creates schema.
package migration

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	// Blank imports register the PostgreSQL driver and file source.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrator is the subset of migrate.Migrate the package needs.
type Migrator interface {
	Up() error
	Close() (error, error)
}

// Engine creates a Migrator; swapped out in tests.
type Engine func(sourceURL, databaseURL string) (Migrator, error)

type Migration struct {
	databaseURL    string
	migrationsPath string
	engine         Engine
}

func New(databaseURL, migrationsPath string, engine Engine) *Migration {
	return &Migration{
		databaseURL:    databaseURL,
		migrationsPath: migrationsPath,
		engine:         engine,
	}
}

// DefaultEngine is the real migrate.New.
func DefaultEngine(sourceURL, databaseURL string) (Migrator, error) {
	return migrate.New(sourceURL, databaseURL)
}

// Up applies all pending migrations; an up-to-date database is not an
// error.
func (mg *Migration) Up() (err error) {
	m, err := mg.engine("file://"+mg.migrationsPath, mg.databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		serr, dberr := m.Close()
		if serr != nil {
			err = errors.Join(err, fmt.Errorf("migration source error: %w", serr))
		}
		if dberr != nil {
			err = errors.Join(err, fmt.Errorf("migration database error: %w", dberr))
		}
	}()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}
	return nil
}
