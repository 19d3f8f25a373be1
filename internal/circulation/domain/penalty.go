package domain

import "time"

// PenaltyPerOverdueDay is the charge for each overdue day. The ledger
// prices penalties at one currency unit per day.
const PenaltyPerOverdueDay = 1.0

// Penalty is an overdue charge attached to a borrowing. PaidAmount only
// ever grows, and never past Amount.
type Penalty struct {
	PID        int64
	BID        int64
	Amount     float64
	PaidAmount float64
}

// Remaining returns the unpaid balance.
func (p Penalty) Remaining() float64 {
	return p.Amount - p.PaidAmount
}

// FullyPaid reports whether nothing is owed on the penalty.
func (p Penalty) FullyPaid() bool {
	return p.PaidAmount >= p.Amount
}

// AmountForOverdueDays converts overdue days into a penalty amount.
func AmountForOverdueDays(days int) float64 {
	return float64(days) * PenaltyPerOverdueDay
}

// PaymentResult reports a successful payment: the receipt identifier, the
// balance left on the penalty and the member's total outstanding debt
// across all penalties after the payment.
type PaymentResult struct {
	Receipt   string
	PenaltyID int64
	Paid      float64
	Remaining float64
	TotalDebt float64
	PaidAt    time.Time
}
