package sqlite

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/circ/internal/circulation/domain"
)

// TestLedgerInvariants drives random borrow/return/pay sequences against a
// migrated database and checks the structural invariants after every
// operation: at most one open borrowing per book, payments bounded by the
// penalty amount, and ids that only ever grow.
func TestLedgerInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		db, err := OpenInMemory()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		members := []string{"a@uni.edu", "b@uni.edu"}
		for _, m := range members {
			require.NoError(t, db.Members().Add(memberFixture(m)))
		}
		books := make([]int64, 3)
		for i := range books {
			books[i], err = db.Catalog().AddBook(fmt.Sprintf("Book %d", i), "Author", 2000)
			require.NoError(t, err)
		}

		var lastBID int64
		day := 0

		steps := rapid.IntRange(5, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			day += rapid.IntRange(0, 10).Draw(t, "advance")
			now := testDate(2026, 1, 1).AddDate(0, 0, day)
			member := rapid.SampledFrom(members).Draw(t, "member")
			book := rapid.SampledFrom(books).Draw(t, "book")

			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0: // borrow
				bid, err := db.Borrowings().Borrow(member, book, now)
				if err == nil {
					require.Greater(t, bid, lastBID, "borrowing ids only grow")
					lastBID = bid
				} else {
					var unavailable *domain.BookUnavailableError
					require.ErrorAs(t, err, &unavailable, "borrow can only fail because the book is out")
				}
			case 1: // return the member's oldest open loan, if any
				loans, err := db.Borrowings().OpenLoans(member, now)
				require.NoError(t, err)
				if len(loans) == 0 {
					continue
				}
				outcome, err := db.Borrowings().Return(member, loans[len(loans)-1].BorrowingID, now)
				require.NoError(t, err)
				if outcome.Overdue() {
					_, err = db.Penalties().Create(outcome.BorrowingID, domain.AmountForOverdueDays(outcome.OverdueDays))
					require.NoError(t, err)
				}
			case 2: // pay toward the member's first unpaid penalty, if any
				unpaid, err := db.Penalties().UnpaidForMember(member)
				require.NoError(t, err)
				if len(unpaid) == 0 {
					continue
				}
				payment := float64(rapid.IntRange(1, 5).Draw(t, "payment"))
				receipt := fmt.Sprintf("r-%d", i)
				_, err = db.Penalties().Pay(member, unpaid[0].PID, payment, receipt, now)
				if err != nil {
					var invalid *domain.InvalidPaymentError
					require.ErrorAs(t, err, &invalid, "pay can only fail on an over-large amount here")
				}
			}

			checkLedgerInvariants(t, db)
		}
	})
}

func checkLedgerInvariants(t *rapid.T, db *DB) {
	conn := db.Connection()

	var multiOpen int
	err := conn.QueryRow(
		`SELECT COUNT(*) FROM (
		     SELECT book_id FROM borrowings WHERE end_date IS NULL
		     GROUP BY book_id HAVING COUNT(*) > 1
		 )`,
	).Scan(&multiOpen)
	require.NoError(t, err)
	require.Zero(t, multiOpen, "a book must never have two open borrowings")

	var overpaid int
	err = conn.QueryRow(
		`SELECT COUNT(*) FROM penalties
		 WHERE COALESCE(paid_amount, 0) < 0 OR COALESCE(paid_amount, 0) > amount`,
	).Scan(&overpaid)
	require.NoError(t, err)
	require.Zero(t, overpaid, "paid_amount must stay within [0, amount]")

	// Payments against a penalty must sum to its paid_amount.
	var mismatched int
	err = conn.QueryRow(
		`SELECT COUNT(*) FROM penalties p
		 WHERE ABS(COALESCE(p.paid_amount, 0) -
		           COALESCE((SELECT SUM(amount) FROM payments WHERE pid = p.pid), 0)) > 1e-9`,
	).Scan(&mismatched)
	require.NoError(t, err)
	require.Zero(t, mismatched, "the payments audit trail must match paid_amount")
}
