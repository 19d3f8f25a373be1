package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	circdomain "github.com/zjrosen/circ/internal/circulation/domain"
	"github.com/zjrosen/circ/internal/log"
	memberapp "github.com/zjrosen/circ/internal/members/application"
	"github.com/zjrosen/circ/internal/members/domain"
)

// MemberRepository implements member registration and the profile rollup
// over SQLite.
type MemberRepository struct {
	db *sql.DB
}

func newMemberRepository(db *sql.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Ensure MemberRepository implements the member ports.
var (
	_ memberapp.ProfileRepository = (*MemberRepository)(nil)
	_ memberapp.MemberRepository  = (*MemberRepository)(nil)
)

// Add registers a member. Emails are unique case-insensitively.
func (r *MemberRepository) Add(member domain.Member) error {
	model := toMemberModel(member)
	_, err := r.db.Exec(
		`INSERT INTO members (email, name, byear, faculty) VALUES (?, ?, ?, ?)`,
		model.Email, model.Name, model.BYear, model.Faculty,
	)
	if err != nil {
		if isUniqueViolation(err, "members.email") {
			return &domain.MemberExistsError{Email: member.Email}
		}
		return fmt.Errorf("adding member: %w", err)
	}
	return nil
}

// FindMember looks a member up by normalized email.
func (r *MemberRepository) FindMember(email string) (domain.Member, error) {
	var model MemberModel
	err := r.db.QueryRow(
		`SELECT email, name, byear, faculty FROM members WHERE email = ?`, email,
	).Scan(&model.Email, &model.Name, &model.BYear, &model.Faculty)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, &domain.MemberNotFoundError{Email: email}
	}
	if err != nil {
		return domain.Member{}, fmt.Errorf("finding member: %w", err)
	}
	return model.toDomain(), nil
}

// CountBorrowings rolls up the member's closed, open and overdue
// borrowings. Overdue means an open borrowing whose start date is more
// than the loan window before the query date.
func (r *MemberRepository) CountBorrowings(email string, at time.Time) (memberapp.BorrowingCounts, error) {
	// Books borrowed before this date are past the deadline.
	cutoff := formatDate(at.AddDate(0, 0, -circdomain.LoanWindowDays))

	var counts memberapp.BorrowingCounts
	err := r.db.QueryRow(
		`SELECT
		     COALESCE(SUM(CASE WHEN end_date IS NOT NULL THEN 1 ELSE 0 END), 0),
		     COALESCE(SUM(CASE WHEN end_date IS NULL THEN 1 ELSE 0 END), 0),
		     COALESCE(SUM(CASE WHEN end_date IS NULL AND start_date < ? THEN 1 ELSE 0 END), 0)
		 FROM borrowings
		 WHERE member = ?`,
		cutoff, email,
	).Scan(&counts.Previous, &counts.Current, &counts.Overdue)
	if err != nil {
		log.ErrorErr(log.CatDB, "CountBorrowings query failed", err, "member", email)
		return memberapp.BorrowingCounts{}, fmt.Errorf("counting borrowings: %w", err)
	}
	return counts, nil
}

// PenaltySummary counts the member's unpaid penalties and sums their
// outstanding balance. Zero rows yield zero counts and zero debt.
func (r *MemberRepository) PenaltySummary(email string) (int, float64, error) {
	var (
		count int
		debt  float64
	)
	err := r.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(p.amount - COALESCE(p.paid_amount, 0)), 0)
		 FROM penalties p
		 JOIN borrowings b ON b.bid = p.bid
		 WHERE b.member = ? AND p.amount > COALESCE(p.paid_amount, 0)`,
		email,
	).Scan(&count, &debt)
	if err != nil {
		return 0, 0, fmt.Errorf("summarizing penalties: %w", err)
	}
	return count, debt, nil
}
