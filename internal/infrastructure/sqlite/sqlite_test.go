package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	memberdomain "github.com/zjrosen/circ/internal/members/domain"
)

// openTestDB returns a migrated in-memory database that is closed when
// the test finishes.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err, "in-memory database should open and migrate")
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedMember(t *testing.T, db *DB, email string) {
	t.Helper()
	err := db.Members().Add(memberFixture(email))
	require.NoError(t, err)
}

func memberFixture(email string) memberdomain.Member {
	return memberdomain.Member{Email: email, Name: "Test Member"}
}

func seedBook(t *testing.T, db *DB, title, author string, year int) int64 {
	t.Helper()
	id, err := db.Catalog().AddBook(title, author, year)
	require.NoError(t, err)
	return id
}

func testDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// daysAgo returns a calendar date the given number of days before the
// fixed test "today".
func daysAgo(days int) time.Time {
	return testToday().AddDate(0, 0, -days)
}

func testToday() time.Time {
	return testDate(2026, 8, 28)
}
