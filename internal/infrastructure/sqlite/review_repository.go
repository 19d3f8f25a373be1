package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	catalogapp "github.com/zjrosen/circ/internal/catalog/application"
	circdomain "github.com/zjrosen/circ/internal/circulation/domain"
	memberdomain "github.com/zjrosen/circ/internal/members/domain"
)

// ReviewRepository records member reviews. Reviews feed the catalog's
// average ratings but carry no invariants beyond referential integrity.
type ReviewRepository struct {
	db    *sql.DB
	clock func() time.Time
}

func newReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db, clock: time.Now}
}

// Ensure ReviewRepository implements the review port.
var _ catalogapp.ReviewRepository = (*ReviewRepository)(nil)

// Add stores a review dated today, with id max(existing)+1.
func (r *ReviewRepository) Add(bookID int64, member string, rating int, text string) (rid int64, err error) {
	if rating < 1 || rating > 5 {
		return 0, fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}
	member = memberdomain.NormalizeEmail(member)

	tx, err := r.db.Begin()
	if err != nil {
		return 0, txError("review", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var count int
	if err = tx.QueryRow(`SELECT COUNT(*) FROM members WHERE email = ?`, member).Scan(&count); err != nil {
		return 0, txError("review", err)
	}
	if count == 0 {
		return 0, &memberdomain.MemberNotFoundError{Email: member}
	}

	if err = tx.QueryRow(`SELECT COALESCE(MAX(rid), 0) + 1 FROM reviews`).Scan(&rid); err != nil {
		return 0, txError("review", err)
	}

	if _, err = tx.Exec(
		`INSERT INTO reviews (rid, book_id, member, rating, rtext, rdate) VALUES (?, ?, ?, ?, ?, ?)`,
		rid, bookID, member, rating, text, formatDate(r.clock()),
	); err != nil {
		if isForeignKeyViolation(err) {
			return 0, &circdomain.BookNotFoundError{BookID: bookID}
		}
		return 0, txError("review", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, txError("review", err)
	}
	return rid, nil
}
