package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	circapp "github.com/zjrosen/circ/internal/circulation/application"
	"github.com/zjrosen/circ/internal/circulation/domain"
	"github.com/zjrosen/circ/internal/log"
	memberdomain "github.com/zjrosen/circ/internal/members/domain"
)

// BorrowingRepository implements the lending ledger over SQLite. Each
// mutation is one transaction: the availability check, the id allocation
// and the insert/update are indivisible with respect to concurrent
// callers, and the partial unique index on open borrowings backstops the
// single-copy invariant.
type BorrowingRepository struct {
	db *sql.DB
}

func newBorrowingRepository(db *sql.DB) *BorrowingRepository {
	return &BorrowingRepository{db: db}
}

// Ensure BorrowingRepository implements the ledger port.
var _ circapp.BorrowingRepository = (*BorrowingRepository)(nil)

// Borrow creates an open borrowing for the member. The new borrowing id is
// max(existing)+1; ids are never reused, even after returns.
func (r *BorrowingRepository) Borrow(member string, bookID int64, start time.Time) (bid int64, err error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, txError("borrow", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var count int
	if err = tx.QueryRow(`SELECT COUNT(*) FROM members WHERE email = ?`, member).Scan(&count); err != nil {
		return 0, txError("borrow", err)
	}
	if count == 0 {
		return 0, &memberdomain.MemberNotFoundError{Email: member}
	}

	if err = tx.QueryRow(`SELECT COUNT(*) FROM books WHERE book_id = ?`, bookID).Scan(&count); err != nil {
		return 0, txError("borrow", err)
	}
	if count == 0 {
		return 0, &domain.BookNotFoundError{BookID: bookID}
	}

	if err = tx.QueryRow(
		`SELECT COUNT(*) FROM borrowings WHERE book_id = ? AND end_date IS NULL`, bookID,
	).Scan(&count); err != nil {
		return 0, txError("borrow", err)
	}
	if count > 0 {
		return 0, &domain.BookUnavailableError{BookID: bookID}
	}

	if err = tx.QueryRow(`SELECT COALESCE(MAX(bid), 0) + 1 FROM borrowings`).Scan(&bid); err != nil {
		return 0, txError("borrow", err)
	}

	if _, err = tx.Exec(
		`INSERT INTO borrowings (bid, member, book_id, start_date) VALUES (?, ?, ?, ?)`,
		bid, member, bookID, formatDate(start),
	); err != nil {
		// A concurrent borrower that slipped past the availability check
		// hits the open-borrowing index; the book is simply unavailable.
		if isUniqueViolation(err, "borrowings.book_id") {
			return 0, &domain.BookUnavailableError{BookID: bookID}
		}
		if isUniqueViolation(err, "borrowings.bid") {
			return 0, &domain.ConflictError{Op: "borrow", Retryable: true, Err: err}
		}
		return 0, txError("borrow", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, txError("borrow", err)
	}
	return bid, nil
}

// Return closes the member's open borrowing, setting end_date exactly
// once. A borrowing that is already closed, or that belongs to someone
// else, is not found.
func (r *BorrowingRepository) Return(member string, bid int64, returned time.Time) (outcome domain.ReturnOutcome, err error) {
	tx, err := r.db.Begin()
	if err != nil {
		return domain.ReturnOutcome{}, txError("return", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var model BorrowingModel
	err = tx.QueryRow(
		`SELECT bid, member, book_id, start_date
		 FROM borrowings
		 WHERE bid = ? AND member = ? AND end_date IS NULL`,
		bid, member,
	).Scan(&model.BID, &model.Member, &model.BookID, &model.StartDate)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ReturnOutcome{}, &domain.BorrowingNotFoundError{BorrowingID: bid, Member: member}
	}
	if err != nil {
		return domain.ReturnOutcome{}, txError("return", err)
	}

	result, err := tx.Exec(
		`UPDATE borrowings SET end_date = ? WHERE bid = ? AND end_date IS NULL`,
		formatDate(returned), bid,
	)
	if err != nil {
		return domain.ReturnOutcome{}, txError("return", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.ReturnOutcome{}, txError("return", err)
	}
	if affected == 0 {
		return domain.ReturnOutcome{}, &domain.BorrowingNotFoundError{BorrowingID: bid, Member: member}
	}

	if err = tx.Commit(); err != nil {
		return domain.ReturnOutcome{}, txError("return", err)
	}

	start, err := parseDate(model.StartDate)
	if err != nil {
		return domain.ReturnOutcome{}, err
	}
	return domain.OutcomeFor(model.BID, model.BookID, model.Member, start, returned), nil
}

// OpenLoans lists the member's open borrowings, newest first, with
// deadlines and overdue days computed at the given date.
func (r *BorrowingRepository) OpenLoans(member string, at time.Time) ([]domain.OpenLoan, error) {
	rows, err := r.db.Query(
		`SELECT b.bid, b.book_id, bk.title, b.start_date
		 FROM borrowings b
		 JOIN books bk ON bk.book_id = b.book_id
		 WHERE b.member = ? AND b.end_date IS NULL
		 ORDER BY b.start_date DESC, b.bid DESC`,
		member,
	)
	if err != nil {
		log.ErrorErr(log.CatDB, "OpenLoans query failed", err, "member", member)
		return nil, fmt.Errorf("listing open loans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var loans []domain.OpenLoan
	for rows.Next() {
		var (
			loan      domain.OpenLoan
			startDate string
		)
		if err := rows.Scan(&loan.BorrowingID, &loan.BookID, &loan.Title, &startDate); err != nil {
			return nil, fmt.Errorf("scanning open loan row: %w", err)
		}
		start, err := parseDate(startDate)
		if err != nil {
			return nil, err
		}
		borrowing := domain.Borrowing{BID: loan.BorrowingID, StartDate: start}
		loan.StartDate = start
		loan.Deadline = borrowing.Deadline()
		loan.OverdueDays = borrowing.OverdueDaysAt(at)
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating open loan rows: %w", err)
	}
	return loans, nil
}

// txError maps a storage failure to a retryable conflict when it is lock
// contention, and wraps it otherwise.
func txError(op string, err error) error {
	if isBusy(err) {
		return &domain.ConflictError{Op: op, Retryable: true, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
