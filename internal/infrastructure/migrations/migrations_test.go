package migrations

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/require"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err, "ncruces driver should open :memory: database")
	// Each pooled connection would otherwise get its own private database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableNames(t *testing.T, db *sql.DB) map[string]bool {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table'`)
	require.NoError(t, err)
	defer rows.Close()

	tables := make(map[string]bool)
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables[name] = true
	}
	require.NoError(t, rows.Err())
	return tables
}

// TestRunMigrations_FreshDB verifies all migrations apply to an empty :memory: database.
func TestRunMigrations_FreshDB(t *testing.T) {
	db := openMemoryDB(t)

	err := RunMigrations(db)
	require.NoError(t, err, "RunMigrations should succeed on fresh database")

	tables := tableNames(t, db)
	for _, table := range []string{"members", "books", "borrowings", "penalties", "payments", "reviews"} {
		require.True(t, tables[table], "table %s should exist", table)
	}
}

// TestRunMigrations_Idempotent verifies calling RunMigrations twice doesn't error.
func TestRunMigrations_Idempotent(t *testing.T) {
	db := openMemoryDB(t)

	err := RunMigrations(db)
	require.NoError(t, err, "first migration run should succeed")

	err = RunMigrations(db)
	require.NoError(t, err, "second migration run should not error")

	require.True(t, tableNames(t, db)["borrowings"], "borrowings table should survive a re-run")
}

// TestMigrations_Schema verifies the borrowings table exists with the
// expected columns and the open-borrowing unique index.
func TestMigrations_Schema(t *testing.T) {
	db := openMemoryDB(t)

	err := RunMigrations(db)
	require.NoError(t, err)

	rows, err := db.Query(`PRAGMA table_info(borrowings)`)
	require.NoError(t, err)
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var cid int
		var name, typ string
		var notnull, pk int
		var dflt interface{}
		err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk)
		require.NoError(t, err)
		columns[name] = true
	}
	require.NoError(t, rows.Err())

	for _, col := range []string{"bid", "member", "book_id", "start_date", "end_date"} {
		require.True(t, columns[col], "column %s should exist", col)
	}

	indexRows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='index' AND tbl_name='borrowings'`)
	require.NoError(t, err)
	defer indexRows.Close()

	indexes := make(map[string]bool)
	for indexRows.Next() {
		var name string
		require.NoError(t, indexRows.Scan(&name))
		indexes[name] = true
	}
	require.NoError(t, indexRows.Err())

	require.True(t, indexes["ux_borrowings_open_book"], "open-borrowing unique index should exist")
	require.True(t, indexes["ix_borrowings_member"], "member index should exist")
}

// TestMigrations_Down verifies down migration rolls back schema correctly.
func TestMigrations_Down(t *testing.T) {
	db := openMemoryDB(t)

	driver, err := WithInstance(db, &Config{})
	require.NoError(t, err)

	source, err := iofs.New(MigrationsFS(), ".")
	require.NoError(t, err)

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	require.NoError(t, err)

	err = m.Up()
	require.NoError(t, err, "migrations should apply")
	require.True(t, tableNames(t, db)["borrowings"], "borrowings table should exist before down migration")

	err = m.Down()
	require.NoError(t, err, "down migrations should succeed")

	tables := tableNames(t, db)
	for _, table := range []string{"members", "books", "borrowings", "penalties", "payments", "reviews"} {
		require.False(t, tables[table], "table %s should be dropped", table)
	}
}

// TestMigrationsFS_Embedded verifies SQL files load from embedded FS at build time.
func TestMigrationsFS_Embedded(t *testing.T) {
	fs := MigrationsFS()
	require.NotNil(t, fs, "MigrationsFS should return non-nil filesystem")

	entries, err := embeddedMigrationsFS.ReadDir(".")
	require.NoError(t, err, "should read embedded directory")

	fileNames := make(map[string]bool)
	for _, entry := range entries {
		fileNames[entry.Name()] = true
	}

	require.True(t, fileNames["000001_create_library_schema.up.sql"], "up migration should be embedded")
	require.True(t, fileNames["000001_create_library_schema.down.sql"], "down migration should be embedded")

	upContent, err := embeddedMigrationsFS.ReadFile("000001_create_library_schema.up.sql")
	require.NoError(t, err)
	require.Contains(t, string(upContent), "CREATE TABLE borrowings")

	downContent, err := embeddedMigrationsFS.ReadFile("000001_create_library_schema.down.sql")
	require.NoError(t, err)
	require.Contains(t, string(downContent), "DROP TABLE")
}

// TestMigrateIdempotent verifies that a second migrator run returns ErrNoChange.
func TestMigrateIdempotent(t *testing.T) {
	db := openMemoryDB(t)

	driver1, err := WithInstance(db, &Config{})
	require.NoError(t, err)

	source1, err := iofs.New(MigrationsFS(), ".")
	require.NoError(t, err)

	m1, err := migrate.NewWithInstance("iofs", source1, "sqlite3", driver1)
	require.NoError(t, err)

	err = m1.Up()
	require.NoError(t, err, "first migration run should succeed")

	// Recreate the migrator, simulating an app restart.
	driver2, err := WithInstance(db, &Config{})
	require.NoError(t, err)

	source2, err := iofs.New(MigrationsFS(), ".")
	require.NoError(t, err)

	m2, err := migrate.NewWithInstance("iofs", source2, "sqlite3", driver2)
	require.NoError(t, err)

	err = m2.Up()
	if err != nil {
		require.True(t, errors.Is(err, migrate.ErrNoChange),
			"second migration run should return ErrNoChange, got: %v", err)
	}
}

// TestMigratedSchema_Constraints verifies the CHECK and foreign key
// constraints of the migrated schema reject bad rows.
func TestMigratedSchema_Constraints(t *testing.T) {
	db := openMemoryDB(t)

	_, err := db.Exec(`PRAGMA foreign_keys=ON`)
	require.NoError(t, err)

	err = RunMigrations(db)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO members (email, name) VALUES ('reader@uni.edu', 'Reader')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO books (book_id, title, author, pyear) VALUES (1, 'Dune', 'Frank Herbert', 1965)`)
	require.NoError(t, err)

	// Orphan borrowings are rejected.
	_, err = db.Exec(`INSERT INTO borrowings (bid, member, book_id, start_date) VALUES (1, 'ghost@uni.edu', 1, '2026-01-01')`)
	require.Error(t, err, "foreign key should reject unknown member")

	_, err = db.Exec(`INSERT INTO borrowings (bid, member, book_id, start_date) VALUES (1, 'reader@uni.edu', 1, '2026-01-01')`)
	require.NoError(t, err)

	// At most one open borrowing per book.
	_, err = db.Exec(`INSERT INTO borrowings (bid, member, book_id, start_date) VALUES (2, 'reader@uni.edu', 1, '2026-01-02')`)
	require.Error(t, err, "unique index should reject a second open borrowing")

	_, err = db.Exec(`INSERT INTO penalties (pid, bid, amount, paid_amount) VALUES (1, 1, 5, 6)`)
	require.Error(t, err, "CHECK constraint should reject paid_amount above amount")

	_, err = db.Exec(`INSERT INTO reviews (rid, book_id, member, rating, rtext, rdate) VALUES (1, 1, 'reader@uni.edu', 9, '', '2026-01-01')`)
	require.Error(t, err, "CHECK constraint should reject rating outside 1..5")
}
