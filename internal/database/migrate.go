// migrate.go applies the documents schema using golang-migrate.
//
// Migrations are SQL files in the migrations/ directory at the repo root.
// Each migration has an "up" and a "down" file, and the schema_migrations
// table records which version the database is at.
package database

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" // File source driver
)

// ErrDirtySchema means an earlier migration stopped halfway and needs a
// manual `migrate force` before the server can start.
var ErrDirtySchema = errors.New("database schema is dirty")

// RunMigrations brings the documents schema up to date.
// It is called once at startup, before the server accepts uploads.
func (db *DB) RunMigrations(migrationsPath string) error {
	abs, err := filepath.Abs(migrationsPath)
	if err != nil {
		return fmt.Errorf("invalid migrations path %q: %w", migrationsPath, err)
	}

	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(abs), "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if _, dirty, err := m.Version(); err == nil && dirty {
		return ErrDirtySchema
	}

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		log.Println("📦 Database: schema is up to date")
	case err != nil:
		return fmt.Errorf("migration failed: %w", err)
	default:
		version, _, _ := m.Version()
		log.Printf("📦 Database: documents schema at version %d", version)
	}
	return nil
}
