package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/circ/internal/circulation/domain"
	"github.com/zjrosen/circ/internal/log"
	memberdomain "github.com/zjrosen/circ/internal/members/domain"
)

const (
	// maxRetries bounds re-attempts of transactions aborted by concurrent
	// access. Non-retryable rejections are never re-attempted.
	maxRetries = 3

	retryBackoff = 50 * time.Millisecond
)

// Service exposes the lending ledger and penalty engine operations:
// borrow, return (with penalty assessment), pay and debt queries.
type Service struct {
	borrowings BorrowingRepository
	penalties  PenaltyRepository
	clock      func() time.Time
	tracer     trace.Tracer
}

// NewService creates a circulation service over the given repositories.
func NewService(borrowings BorrowingRepository, penalties PenaltyRepository) *Service {
	return &Service{
		borrowings: borrowings,
		penalties:  penalties,
		clock:      time.Now,
		tracer:     otel.Tracer("circ/circulation"),
	}
}

// Borrow lends the book to the member and returns the new borrowing id.
func (s *Service) Borrow(ctx context.Context, member string, bookID int64) (int64, error) {
	_, span := s.tracer.Start(ctx, "circulation.Borrow")
	defer span.End()

	member = memberdomain.NormalizeEmail(member)
	today := domain.ToDate(s.clock())

	var bid int64
	err := s.withRetry("borrow", func() error {
		var err error
		bid, err = s.borrowings.Borrow(member, bookID, today)
		return err
	})
	if err != nil {
		return 0, err
	}

	log.Info(log.CatApp, "Book borrowed", "bid", bid, "book_id", bookID, "member", member)
	return bid, nil
}

// Return closes the borrowing and assesses the overdue penalty. The
// returned penalty is nil when the book came back inside the loan window.
func (s *Service) Return(ctx context.Context, member string, bid int64) (domain.ReturnOutcome, *domain.Penalty, error) {
	_, span := s.tracer.Start(ctx, "circulation.Return")
	defer span.End()

	member = memberdomain.NormalizeEmail(member)
	today := domain.ToDate(s.clock())

	var outcome domain.ReturnOutcome
	err := s.withRetry("return", func() error {
		var err error
		outcome, err = s.borrowings.Return(member, bid, today)
		return err
	})
	if err != nil {
		return domain.ReturnOutcome{}, nil, err
	}

	log.Info(log.CatApp, "Book returned", "bid", bid, "member", member, "overdue_days", outcome.OverdueDays)

	if !outcome.Overdue() {
		return outcome, nil, nil
	}

	var penalty domain.Penalty
	err = s.withRetry("assess", func() error {
		var err error
		penalty, err = s.penalties.Create(outcome.BorrowingID, domain.AmountForOverdueDays(outcome.OverdueDays))
		return err
	})
	if err != nil {
		return domain.ReturnOutcome{}, nil, err
	}

	log.Info(log.CatApp, "Penalty assessed", "pid", penalty.PID, "bid", bid, "amount", penalty.Amount)
	return outcome, &penalty, nil
}

// Pay applies a payment to one of the member's penalties and returns the
// receipt, the balance left on the penalty and the member's total debt.
func (s *Service) Pay(ctx context.Context, member string, pid int64, amount float64) (domain.PaymentResult, error) {
	_, span := s.tracer.Start(ctx, "circulation.Pay")
	defer span.End()

	member = memberdomain.NormalizeEmail(member)
	receipt := uuid.NewString()
	now := s.clock().UTC()

	var result domain.PaymentResult
	err := s.withRetry("pay", func() error {
		var err error
		result, err = s.penalties.Pay(member, pid, amount, receipt, now)
		return err
	})
	if err != nil {
		return domain.PaymentResult{}, err
	}

	log.Info(log.CatApp, "Penalty payment applied", "pid", pid, "member", member,
		"paid", result.Paid, "remaining", result.Remaining, "receipt", result.Receipt)
	return result, nil
}

// OpenLoans lists the member's current borrowings with deadlines computed
// against today.
func (s *Service) OpenLoans(ctx context.Context, member string) ([]domain.OpenLoan, error) {
	_, span := s.tracer.Start(ctx, "circulation.OpenLoans")
	defer span.End()

	member = memberdomain.NormalizeEmail(member)
	return s.borrowings.OpenLoans(member, domain.ToDate(s.clock()))
}

// UnpaidPenalties lists the member's penalties with a positive balance.
func (s *Service) UnpaidPenalties(ctx context.Context, member string) ([]domain.Penalty, error) {
	_, span := s.tracer.Start(ctx, "circulation.UnpaidPenalties")
	defer span.End()

	return s.penalties.UnpaidForMember(memberdomain.NormalizeEmail(member))
}

// OutstandingDebt sums the member's unpaid penalty balances.
func (s *Service) OutstandingDebt(ctx context.Context, member string) (float64, error) {
	_, span := s.tracer.Start(ctx, "circulation.OutstandingDebt")
	defer span.End()

	return s.penalties.TotalDebt(memberdomain.NormalizeEmail(member))
}

// withRetry re-attempts transient storage conflicts with a linear backoff.
func (s *Service) withRetry(op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = fn()
		if err == nil || !domain.IsRetryable(err) {
			return err
		}
		log.Warn(log.CatApp, "Retrying after storage conflict", "op", op, "attempt", attempt)
		time.Sleep(time.Duration(attempt) * retryBackoff)
	}
	return err
}
