// Package migrations applies the circ database schema.
//
// Migrations are embedded SQL files run through golang-migrate with a
// custom driver compatible with ncruces/go-sqlite3 (CGO-free). The stock
// golang-migrate sqlite3 driver cannot be used because it imports
// github.com/mattn/go-sqlite3, which registers the same "sqlite3" driver
// name and collides with the ncruces registration.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var embeddedMigrationsFS embed.FS

// MigrationsFS returns the embedded filesystem with the migration SQL
// files, for tests and custom migration scenarios.
func MigrationsFS() fs.FS {
	return embeddedMigrationsFS
}

// RunMigrations applies all pending migrations to the database. A database
// that is already current is not an error (migrate.ErrNoChange is handled
// here).
func RunMigrations(db *sql.DB) error {
	source, err := iofs.New(embeddedMigrationsFS, ".")
	if err != nil {
		return err
	}

	driver, err := WithInstance(db, &Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
