package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/circ/internal/members/domain"
)

// ProfileService assembles the read-only member profile: identity,
// borrowing counts and penalty totals.
type ProfileService struct {
	repo   ProfileRepository
	clock  func() time.Time
	tracer trace.Tracer
}

// NewProfileService creates a profile service.
func NewProfileService(repo ProfileRepository) *ProfileService {
	return &ProfileService{
		repo:   repo,
		clock:  time.Now,
		tracer: otel.Tracer("circ/members"),
	}
}

// Profile returns the member's profile. Members with no borrowings or
// penalties report zero counts and zero debt.
func (s *ProfileService) Profile(ctx context.Context, email string) (domain.Profile, error) {
	_, span := s.tracer.Start(ctx, "members.Profile")
	defer span.End()

	email = domain.NormalizeEmail(email)

	member, err := s.repo.FindMember(email)
	if err != nil {
		return domain.Profile{}, err
	}

	counts, err := s.repo.CountBorrowings(email, s.clock())
	if err != nil {
		return domain.Profile{}, err
	}

	unpaid, debt, err := s.repo.PenaltySummary(email)
	if err != nil {
		return domain.Profile{}, err
	}

	return domain.Profile{
		Member:             member,
		PreviousBorrowings: counts.Previous,
		CurrentBorrowings:  counts.Current,
		OverdueBorrowings:  counts.Overdue,
		UnpaidPenalties:    unpaid,
		TotalDebt:          debt,
	}, nil
}
