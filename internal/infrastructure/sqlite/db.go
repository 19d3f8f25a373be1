// Package sqlite provides the SQLite persistence layer for circ: the
// connection lifecycle, migrations, and the repository implementations
// behind the catalog, ledger, penalty and profile ports.
package sqlite

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zjrosen/circ/internal/infrastructure/migrations"
	"github.com/zjrosen/circ/internal/log"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB manages the SQLite connection and hands out repositories bound to it.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens the database, configures pragmas, and runs migrations.
// Creates the parent directory if it doesn't exist. If an existing
// database file is present, a backup is written to {path}.bak before
// migrations run.
func Open(path string) (*DB, error) {
	log.Debug(log.CatDB, "Opening database", "path", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		log.ErrorErr(log.CatDB, "Failed to create database directory", err, "path", dir)
		return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}

	// Pre-migration backup of an existing database file.
	if _, err := os.Stat(path); err == nil {
		backupPath := path + ".bak"
		if err := copyFile(path, backupPath); err != nil {
			log.ErrorErr(log.CatDB, "Failed to create pre-migration backup", err, "path", path, "backup", backupPath)
			return nil, fmt.Errorf("failed to create pre-migration backup: %w", err)
		}
		log.Debug(log.CatDB, "Created pre-migration backup", "backup", backupPath)
	}

	// _txlock=immediate makes write transactions take the write lock at
	// BEGIN, so the check/allocate/insert sequences in the repositories
	// never upgrade a read lock mid-transaction.
	conn, err := sql.Open("sqlite3", "file:"+path+"?_txlock=immediate")
	if err != nil {
		log.ErrorErr(log.CatDB, "Failed to open database", err, "path", path)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db, err := configure(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	db.path = path

	log.Info(log.CatDB, "Database initialized", "path", path)
	return db, nil
}

// OpenInMemory opens a fresh in-memory database with migrations applied.
// Used by tests.
func OpenInMemory() (*DB, error) {
	conn, err := sql.Open("sqlite3", "file::memory:?_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// Each pooled connection would otherwise get its own private
	// in-memory database.
	conn.SetMaxOpenConns(1)
	db, err := configure(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	db.path = ":memory:"
	return db, nil
}

func configure(conn *sql.DB) (*DB, error) {
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Referential integrity: orphan borrowings/penalties are rejected.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := migrations.RunMigrations(conn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close releases database resources.
func (db *DB) Close() error {
	if db.conn != nil {
		log.Debug(log.CatDB, "Closing database", "path", db.path)
		return db.conn.Close()
	}
	return nil
}

// Borrowings returns the borrowing repository bound to this connection.
func (db *DB) Borrowings() *BorrowingRepository {
	return newBorrowingRepository(db.conn)
}

// Penalties returns the penalty repository bound to this connection.
func (db *DB) Penalties() *PenaltyRepository {
	return newPenaltyRepository(db.conn)
}

// Catalog returns the catalog repository bound to this connection.
func (db *DB) Catalog() *CatalogRepository {
	return newCatalogRepository(db.conn)
}

// Members returns the member repository bound to this connection.
func (db *DB) Members() *MemberRepository {
	return newMemberRepository(db.conn)
}

// Reviews returns the review repository bound to this connection.
func (db *DB) Reviews() *ReviewRepository {
	return newReviewRepository(db.conn)
}

// Connection returns the underlying *sql.DB for testing purposes.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// copyFile copies src to dst, overwriting dst if it exists. Close errors
// on the destination are reported so a full disk cannot silently truncate
// the backup.
func copyFile(src, dst string) (retErr error) {
	sourceFile, err := os.Open(src) //nolint:gosec // G304: src is the database path, controlled by application
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sourceFile.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("failed to close source file: %w", closeErr)
		}
	}()

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return err
	}

	destFile, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, sourceInfo.Mode()) //nolint:gosec // G304: dst is backup path derived from database path
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := destFile.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("failed to close backup file: %w", closeErr)
		}
	}()

	_, err = io.Copy(destFile, sourceFile)
	return err
}
