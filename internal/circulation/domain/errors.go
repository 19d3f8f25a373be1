package domain

import (
	"errors"
	"fmt"
)

// BookNotFoundError indicates that no book with the given id exists in the
// catalog.
type BookNotFoundError struct {
	BookID int64
}

// Error implements the error interface.
func (e *BookNotFoundError) Error() string {
	return fmt.Sprintf("book not found: book_id=%d", e.BookID)
}

// BookUnavailableError indicates that the book already has an open
// borrowing and cannot be lent again until it is returned.
type BookUnavailableError struct {
	BookID int64
}

// Error implements the error interface.
func (e *BookUnavailableError) Error() string {
	return fmt.Sprintf("book unavailable: book_id=%d is on loan", e.BookID)
}

// BorrowingNotFoundError indicates that no open borrowing with the given id
// belongs to the member. A second return of the same id reports this too,
// because the first return closed it.
type BorrowingNotFoundError struct {
	BorrowingID int64
	Member      string
}

// Error implements the error interface.
func (e *BorrowingNotFoundError) Error() string {
	return fmt.Sprintf("open borrowing not found: bid=%d member=%q", e.BorrowingID, e.Member)
}

// PenaltyNotFoundError indicates that the penalty does not exist, is not
// owned by the paying member, or is already fully paid.
type PenaltyNotFoundError struct {
	PenaltyID int64
	Member    string
}

// Error implements the error interface.
func (e *PenaltyNotFoundError) Error() string {
	return fmt.Sprintf("unpaid penalty not found: pid=%d member=%q", e.PenaltyID, e.Member)
}

// InvalidPaymentError indicates a payment that is not positive or exceeds
// the remaining balance. Overpayment is rejected, never clamped.
type InvalidPaymentError struct {
	Amount    float64
	Remaining float64
}

// Error implements the error interface.
func (e *InvalidPaymentError) Error() string {
	return fmt.Sprintf("invalid payment: amount=%.2f remaining=%.2f", e.Amount, e.Remaining)
}

// ConflictError indicates that a storage transaction aborted because of
// concurrent access. Retryable conflicts may be re-attempted by the caller;
// everything else is a definitive rejection.
type ConflictError struct {
	Op        string
	Retryable bool
	Err       error
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("conflict during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("conflict during %s", e.Op)
}

// Unwrap exposes the underlying storage error.
func (e *ConflictError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the error is a transient storage conflict
// that a bounded retry may resolve.
func IsRetryable(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict) && conflict.Retryable
}
