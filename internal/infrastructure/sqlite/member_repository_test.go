package sqlite

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/circ/internal/members/domain"
)

func TestMemberAdd_And_Find(t *testing.T) {
	db := openTestDB(t)

	year := 1998
	err := db.Members().Add(domain.Member{
		Email:     "reader@uni.edu",
		Name:      "Reader",
		BirthYear: &year,
		Faculty:   "engineering",
	})
	require.NoError(t, err)

	member, err := db.Members().FindMember("reader@uni.edu")
	require.NoError(t, err)
	require.Equal(t, "Reader", member.Name)
	require.NotNil(t, member.BirthYear)
	require.Equal(t, 1998, *member.BirthYear)
	require.Equal(t, "engineering", member.Faculty)
}

func TestMemberAdd_DuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	seedMember(t, db, "reader@uni.edu")

	err := db.Members().Add(domain.Member{Email: "reader@uni.edu", Name: "Again"})
	var exists *domain.MemberExistsError
	require.ErrorAs(t, err, &exists)

	// Emails collide case-insensitively.
	err = db.Members().Add(domain.Member{Email: "Reader@Uni.EDU", Name: "Again"})
	require.ErrorAs(t, err, &exists)
}

func TestMemberFind_OptionalFieldsAbsent(t *testing.T) {
	db := openTestDB(t)
	seedMember(t, db, "reader@uni.edu")

	member, err := db.Members().FindMember("reader@uni.edu")
	require.NoError(t, err)
	require.Nil(t, member.BirthYear)
	require.Empty(t, member.Faculty)

	_, err = db.Members().FindMember("ghost@uni.edu")
	var notFound *domain.MemberNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestCountBorrowings(t *testing.T) {
	db := openTestDB(t)
	seedMember(t, db, "reader@uni.edu")
	dune := seedBook(t, db, "Dune", "Frank Herbert", 1965)
	hyperion := seedBook(t, db, "Hyperion", "Dan Simmons", 1989)
	solaris := seedBook(t, db, "Solaris", "Stanislaw Lem", 1961)
	ubik := seedBook(t, db, "Ubik", "Philip K. Dick", 1969)

	// Two returned, one open inside the window, one open and overdue.
	bid, err := db.Borrowings().Borrow("reader@uni.edu", dune, daysAgo(40))
	require.NoError(t, err)
	_, err = db.Borrowings().Return("reader@uni.edu", bid, daysAgo(30))
	require.NoError(t, err)

	bid, err = db.Borrowings().Borrow("reader@uni.edu", hyperion, daysAgo(15))
	require.NoError(t, err)
	_, err = db.Borrowings().Return("reader@uni.edu", bid, daysAgo(5))
	require.NoError(t, err)

	_, err = db.Borrowings().Borrow("reader@uni.edu", solaris, daysAgo(3))
	require.NoError(t, err)
	_, err = db.Borrowings().Borrow("reader@uni.edu", ubik, daysAgo(25))
	require.NoError(t, err)

	counts, err := db.Members().CountBorrowings("reader@uni.edu", testToday())
	require.NoError(t, err)
	require.Equal(t, 2, counts.Previous)
	require.Equal(t, 2, counts.Current, "overdue loans still count as current")
	require.Equal(t, 1, counts.Overdue)
}

func TestCountBorrowings_DeadlineDayIsNotOverdue(t *testing.T) {
	db := openTestDB(t)
	seedMember(t, db, "reader@uni.edu")
	book := seedBook(t, db, "Dune", "Frank Herbert", 1965)

	// Exactly 20 days out is the last penalty-free day.
	_, err := db.Borrowings().Borrow("reader@uni.edu", book, daysAgo(20))
	require.NoError(t, err)

	counts, err := db.Members().CountBorrowings("reader@uni.edu", testToday())
	require.NoError(t, err)
	require.Equal(t, 1, counts.Current)
	require.Zero(t, counts.Overdue)
}

func TestCountBorrowings_NoHistory(t *testing.T) {
	db := openTestDB(t)
	seedMember(t, db, "reader@uni.edu")

	counts, err := db.Members().CountBorrowings("reader@uni.edu", testToday())
	require.NoError(t, err)
	require.Zero(t, counts.Previous)
	require.Zero(t, counts.Current)
	require.Zero(t, counts.Overdue)
}

func TestPenaltySummary(t *testing.T) {
	db := openTestDB(t)
	seedMember(t, db, "reader@uni.edu")

	count, debt, err := db.Members().PenaltySummary("reader@uni.edu")
	require.NoError(t, err)
	require.Zero(t, count)
	require.Zero(t, debt)

	first := overdueReturn(t, db, "reader@uni.edu", "Dune")
	overdueReturn(t, db, "reader@uni.edu", "Hyperion")

	_, err = db.Penalties().Pay("reader@uni.edu", first.PID, 2, "receipt-1", testToday())
	require.NoError(t, err)

	count, debt, err = db.Members().PenaltySummary("reader@uni.edu")
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Equal(t, 8.0, debt)

	// Settling a penalty drops it from the summary.
	_, err = db.Penalties().Pay("reader@uni.edu", first.PID, 3, "receipt-2", testToday())
	require.NoError(t, err)

	count, debt, err = db.Members().PenaltySummary("reader@uni.edu")
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Equal(t, 5.0, debt)
}
