// Package application orchestrates the lending ledger and penalty engine
// over repository ports.
package application

import (
	"time"

	"github.com/zjrosen/circ/internal/circulation/domain"
)

// BorrowingRepository owns borrowing rows. Mutations run as single atomic
// transactions: the availability check, the id allocation and the
// insert/update are indivisible with respect to concurrent callers.
type BorrowingRepository interface {
	// Borrow creates an open borrowing for the member and returns the new
	// borrowing id.
	Borrow(member string, bookID int64, start time.Time) (int64, error)

	// Return closes the member's open borrowing exactly once and reports
	// the outcome. A borrowing that is already closed is not found.
	Return(member string, bid int64, returned time.Time) (domain.ReturnOutcome, error)

	// OpenLoans lists the member's open borrowings with deadlines and
	// overdue days computed at the given date.
	OpenLoans(member string, at time.Time) ([]domain.OpenLoan, error)
}

// PenaltyRepository owns penalty rows and the payments audit trail.
type PenaltyRepository interface {
	// Create inserts a new unpaid penalty against a borrowing.
	Create(bid int64, amount float64) (domain.Penalty, error)

	// Pay applies a payment to the member's penalty and records a receipt.
	// Validation, the update and the debt recomputation are one
	// transaction.
	Pay(member string, pid int64, amount float64, receipt string, at time.Time) (domain.PaymentResult, error)

	// UnpaidForMember lists the member's penalties with a positive
	// balance.
	UnpaidForMember(member string) ([]domain.Penalty, error)

	// TotalDebt sums the member's unpaid balances. Zero when nothing is
	// owed.
	TotalDebt(member string) (float64, error)
}
