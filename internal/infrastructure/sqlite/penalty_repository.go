package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	circapp "github.com/zjrosen/circ/internal/circulation/application"
	"github.com/zjrosen/circ/internal/circulation/domain"
	"github.com/zjrosen/circ/internal/log"
)

// PenaltyRepository implements the penalty engine over SQLite. The
// paid_amount CHECK constraint backstops the 0 <= paid_amount <= amount
// invariant.
type PenaltyRepository struct {
	db *sql.DB
}

func newPenaltyRepository(db *sql.DB) *PenaltyRepository {
	return &PenaltyRepository{db: db}
}

// Ensure PenaltyRepository implements the penalty port.
var _ circapp.PenaltyRepository = (*PenaltyRepository)(nil)

// Create inserts an unpaid penalty against a borrowing. The penalty id is
// max(existing)+1, allocated in the same transaction as the insert.
func (r *PenaltyRepository) Create(bid int64, amount float64) (penalty domain.Penalty, err error) {
	tx, err := r.db.Begin()
	if err != nil {
		return domain.Penalty{}, txError("assess", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var pid int64
	if err = tx.QueryRow(`SELECT COALESCE(MAX(pid), 0) + 1 FROM penalties`).Scan(&pid); err != nil {
		return domain.Penalty{}, txError("assess", err)
	}

	if _, err = tx.Exec(
		`INSERT INTO penalties (pid, bid, amount, paid_amount) VALUES (?, ?, ?, 0)`,
		pid, bid, amount,
	); err != nil {
		if isForeignKeyViolation(err) {
			return domain.Penalty{}, &domain.BorrowingNotFoundError{BorrowingID: bid}
		}
		if isUniqueViolation(err, "penalties.pid") {
			return domain.Penalty{}, &domain.ConflictError{Op: "assess", Retryable: true, Err: err}
		}
		return domain.Penalty{}, txError("assess", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.Penalty{}, txError("assess", err)
	}
	return domain.Penalty{PID: pid, BID: bid, Amount: amount, PaidAmount: 0}, nil
}

// Pay applies a payment to the member's penalty. Ownership, the fully-paid
// check, amount validation, the paid_amount update, the receipt insert and
// the debt recomputation all run in one transaction; a rejected payment
// leaves no partial state.
func (r *PenaltyRepository) Pay(member string, pid int64, amount float64, receipt string, at time.Time) (result domain.PaymentResult, err error) {
	tx, err := r.db.Begin()
	if err != nil {
		return domain.PaymentResult{}, txError("pay", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var model PenaltyModel
	err = tx.QueryRow(
		`SELECT p.pid, p.bid, p.amount, COALESCE(p.paid_amount, 0)
		 FROM penalties p
		 JOIN borrowings b ON b.bid = p.bid
		 WHERE p.pid = ? AND b.member = ?`,
		pid, member,
	).Scan(&model.PID, &model.BID, &model.Amount, &model.PaidAmount)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PaymentResult{}, &domain.PenaltyNotFoundError{PenaltyID: pid, Member: member}
	}
	if err != nil {
		return domain.PaymentResult{}, txError("pay", err)
	}

	penalty := model.toDomain()
	if penalty.FullyPaid() {
		err = &domain.PenaltyNotFoundError{PenaltyID: pid, Member: member}
		return domain.PaymentResult{}, err
	}
	if amount <= 0 || amount > penalty.Remaining() {
		err = &domain.InvalidPaymentError{Amount: amount, Remaining: penalty.Remaining()}
		return domain.PaymentResult{}, err
	}

	if _, err = tx.Exec(
		`UPDATE penalties SET paid_amount = paid_amount + ? WHERE pid = ?`,
		amount, pid,
	); err != nil {
		return domain.PaymentResult{}, txError("pay", err)
	}

	if _, err = tx.Exec(
		`INSERT INTO payments (receipt, pid, amount, paid_at) VALUES (?, ?, ?, ?)`,
		receipt, pid, amount, at.UTC().Format(time.RFC3339),
	); err != nil {
		return domain.PaymentResult{}, txError("pay", err)
	}

	var debt float64
	if err = tx.QueryRow(
		`SELECT COALESCE(SUM(p.amount - COALESCE(p.paid_amount, 0)), 0)
		 FROM penalties p
		 JOIN borrowings b ON b.bid = p.bid
		 WHERE b.member = ? AND p.amount > COALESCE(p.paid_amount, 0)`,
		member,
	).Scan(&debt); err != nil {
		return domain.PaymentResult{}, txError("pay", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.PaymentResult{}, txError("pay", err)
	}

	return domain.PaymentResult{
		Receipt:   receipt,
		PenaltyID: pid,
		Paid:      amount,
		Remaining: penalty.Remaining() - amount,
		TotalDebt: debt,
		PaidAt:    at.UTC(),
	}, nil
}

// UnpaidForMember lists the member's penalties with a positive balance.
func (r *PenaltyRepository) UnpaidForMember(member string) ([]domain.Penalty, error) {
	rows, err := r.db.Query(
		`SELECT p.pid, p.bid, p.amount, COALESCE(p.paid_amount, 0)
		 FROM penalties p
		 JOIN borrowings b ON b.bid = p.bid
		 WHERE b.member = ? AND p.amount > COALESCE(p.paid_amount, 0)
		 ORDER BY p.pid ASC`,
		member,
	)
	if err != nil {
		log.ErrorErr(log.CatDB, "UnpaidForMember query failed", err, "member", member)
		return nil, fmt.Errorf("listing unpaid penalties: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var penalties []domain.Penalty
	for rows.Next() {
		var model PenaltyModel
		if err := rows.Scan(&model.PID, &model.BID, &model.Amount, &model.PaidAmount); err != nil {
			return nil, fmt.Errorf("scanning penalty row: %w", err)
		}
		penalties = append(penalties, model.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating penalty rows: %w", err)
	}
	return penalties, nil
}

// TotalDebt sums the member's unpaid balances. Members with no unpaid
// penalties owe zero.
func (r *PenaltyRepository) TotalDebt(member string) (float64, error) {
	var debt float64
	err := r.db.QueryRow(
		`SELECT COALESCE(SUM(p.amount - COALESCE(p.paid_amount, 0)), 0)
		 FROM penalties p
		 JOIN borrowings b ON b.bid = p.bid
		 WHERE b.member = ? AND p.amount > COALESCE(p.paid_amount, 0)`,
		member,
	).Scan(&debt)
	if err != nil {
		return 0, fmt.Errorf("summing outstanding debt: %w", err)
	}
	return debt, nil
}
