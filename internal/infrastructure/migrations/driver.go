package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/golang-migrate/migrate/v4/database"
)

// DefaultMigrationsTable is the table used to track applied migrations.
const DefaultMigrationsTable = "schema_migrations"

// ErrNilConfig indicates no driver config was provided.
var ErrNilConfig = errors.New("no config")

// Config holds configuration for the SQLite migration driver.
type Config struct {
	MigrationsTable string
	NoTxWrap        bool
}

// Driver is a golang-migrate database.Driver for ncruces/go-sqlite3.
// The stock sqlite3 driver imports mattn/go-sqlite3, which registers the
// same "sqlite3" driver name and collides with the ncruces registration,
// so migrations run through this implementation instead.
type Driver struct {
	db       *sql.DB
	isLocked atomic.Bool
	config   *Config
}

// WithInstance wraps an existing sql.DB (opened via the ncruces driver)
// as a migration driver.
func WithInstance(instance *sql.DB, config *Config) (database.Driver, error) {
	if config == nil {
		return nil, ErrNilConfig
	}
	if err := instance.Ping(); err != nil {
		return nil, err
	}
	if config.MigrationsTable == "" {
		config.MigrationsTable = DefaultMigrationsTable
	}

	d := &Driver{db: instance, config: config}
	if err := d.ensureVersionTable(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Driver) ensureVersionTable() (err error) {
	if err = d.Lock(); err != nil {
		return err
	}
	defer func() {
		if e := d.Unlock(); e != nil {
			err = errors.Join(err, e)
		}
	}()

	query := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (version uint64, dirty bool);
	CREATE UNIQUE INDEX IF NOT EXISTS version_unique ON %s (version);
	`, d.config.MigrationsTable, d.config.MigrationsTable)

	_, err = d.db.Exec(query)
	return err
}

// Open satisfies database.Driver; connections are always supplied through
// WithInstance.
func (d *Driver) Open(_ string) (database.Driver, error) {
	return nil, errors.New("Open not implemented; use WithInstance with an ncruces connection")
}

// Close closes the database connection.
func (d *Driver) Close() error {
	return d.db.Close()
}

// Lock acquires the in-process migration lock.
func (d *Driver) Lock() error {
	if !d.isLocked.CompareAndSwap(false, true) {
		return database.ErrLocked
	}
	return nil
}

// Unlock releases the in-process migration lock.
func (d *Driver) Unlock() error {
	if !d.isLocked.CompareAndSwap(true, false) {
		return database.ErrNotLocked
	}
	return nil
}

// Run executes one migration file.
func (d *Driver) Run(migration io.Reader) error {
	raw, err := io.ReadAll(migration)
	if err != nil {
		return err
	}
	query := string(raw)
	if d.config.NoTxWrap {
		if _, err := d.db.Exec(query); err != nil {
			return &database.Error{OrigErr: err, Query: []byte(query)}
		}
		return nil
	}
	return d.execTx(query)
}

func (d *Driver) execTx(query string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return &database.Error{OrigErr: err, Err: "transaction start failed"}
	}
	if _, err := tx.Exec(query); err != nil {
		if errRollback := tx.Rollback(); errRollback != nil {
			err = errors.Join(err, errRollback)
		}
		return &database.Error{OrigErr: err, Query: []byte(query)}
	}
	if err := tx.Commit(); err != nil {
		return &database.Error{OrigErr: err, Err: "transaction commit failed"}
	}
	return nil
}

// SetVersion records the current migration version.
func (d *Driver) SetVersion(version int, dirty bool) error {
	tx, err := d.db.Begin()
	if err != nil {
		return &database.Error{OrigErr: err, Err: "transaction start failed"}
	}

	query := "DELETE FROM " + d.config.MigrationsTable //nolint:gosec // table name comes from trusted config
	if _, err := tx.Exec(query); err != nil {
		if errRollback := tx.Rollback(); errRollback != nil {
			err = errors.Join(err, errRollback)
		}
		return &database.Error{OrigErr: err, Query: []byte(query)}
	}

	// Re-write the version row even for a dirty nil version so a failed
	// down migration of the first migration leaves a traceable state.
	// See golang-migrate/migrate#330.
	if version >= 0 || (version == database.NilVersion && dirty) {
		query := fmt.Sprintf(`INSERT INTO %s (version, dirty) VALUES (?, ?)`, d.config.MigrationsTable) //nolint:gosec // table name comes from trusted config
		if _, err := tx.Exec(query, version, dirty); err != nil {
			if errRollback := tx.Rollback(); errRollback != nil {
				err = errors.Join(err, errRollback)
			}
			return &database.Error{OrigErr: err, Query: []byte(query)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &database.Error{OrigErr: err, Err: "transaction commit failed"}
	}
	return nil
}

// Version returns the current migration version.
func (d *Driver) Version() (version int, dirty bool, err error) {
	query := "SELECT version, dirty FROM " + d.config.MigrationsTable + " LIMIT 1"
	if err := d.db.QueryRow(query).Scan(&version, &dirty); err != nil {
		return database.NilVersion, false, nil
	}
	return version, dirty, nil
}

// Drop removes every table in the database.
func (d *Driver) Drop() (err error) {
	query := `SELECT name FROM sqlite_master WHERE type = 'table';`
	tables, err := d.db.Query(query)
	if err != nil {
		return &database.Error{OrigErr: err, Query: []byte(query)}
	}
	defer func() {
		if errClose := tables.Close(); errClose != nil {
			err = errors.Join(err, errClose)
		}
	}()

	var tableNames []string
	for tables.Next() {
		var name string
		if err := tables.Scan(&name); err != nil {
			return err
		}
		if name != "" {
			tableNames = append(tableNames, name)
		}
	}
	if err := tables.Err(); err != nil {
		return &database.Error{OrigErr: err, Query: []byte(query)}
	}

	for _, t := range tableNames {
		if err := d.execTx("DROP TABLE " + t); err != nil {
			return err
		}
	}
	if len(tableNames) > 0 {
		if _, err := d.db.Exec("VACUUM"); err != nil {
			return &database.Error{OrigErr: err, Query: []byte("VACUUM")}
		}
	}
	return nil
}
