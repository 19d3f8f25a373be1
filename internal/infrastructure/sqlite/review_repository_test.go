package sqlite

import (
	"testing"

	"github.com/stretchr/testify/require"

	circdomain "github.com/zjrosen/circ/internal/circulation/domain"
	memberdomain "github.com/zjrosen/circ/internal/members/domain"
)

func TestReviewAdd(t *testing.T) {
	db := openTestDB(t)
	seedMember(t, db, "reader@uni.edu")
	book := seedBook(t, db, "Dune", "Frank Herbert", 1965)

	repo := db.Reviews()
	repo.clock = testToday

	rid, err := repo.Add(book, "reader@uni.edu", 5, "a classic")
	require.NoError(t, err)
	require.Equal(t, int64(1), rid)

	rid, err = repo.Add(book, "Reader@Uni.EDU", 3, "")
	require.NoError(t, err, "reviewer emails are normalized")
	require.Equal(t, int64(2), rid)

	var (
		member string
		rating int
		rdate  string
	)
	err = db.Connection().QueryRow(
		`SELECT member, rating, rdate FROM reviews WHERE rid = 2`,
	).Scan(&member, &rating, &rdate)
	require.NoError(t, err)
	require.Equal(t, "reader@uni.edu", member)
	require.Equal(t, 3, rating)
	require.Equal(t, "2026-08-28", rdate)
}

func TestReviewAdd_RatingOutOfRange(t *testing.T) {
	db := openTestDB(t)
	seedMember(t, db, "reader@uni.edu")
	book := seedBook(t, db, "Dune", "Frank Herbert", 1965)

	_, err := db.Reviews().Add(book, "reader@uni.edu", 0, "")
	require.Error(t, err)
	_, err = db.Reviews().Add(book, "reader@uni.edu", 6, "")
	require.Error(t, err)
}

func TestReviewAdd_UnknownMember(t *testing.T) {
	db := openTestDB(t)
	book := seedBook(t, db, "Dune", "Frank Herbert", 1965)

	_, err := db.Reviews().Add(book, "ghost@uni.edu", 4, "")
	var notFound *memberdomain.MemberNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestReviewAdd_UnknownBook(t *testing.T) {
	db := openTestDB(t)
	seedMember(t, db, "reader@uni.edu")

	_, err := db.Reviews().Add(999, "reader@uni.edu", 4, "")
	var notFound *circdomain.BookNotFoundError
	require.ErrorAs(t, err, &notFound)
}
