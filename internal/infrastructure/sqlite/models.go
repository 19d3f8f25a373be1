package sqlite

import (
	"fmt"
	"time"

	circdomain "github.com/zjrosen/circ/internal/circulation/domain"
	memberdomain "github.com/zjrosen/circ/internal/members/domain"
)

// BorrowingModel represents the database row for the borrowings table.
// Dates are stored as YYYY-MM-DD text.
type BorrowingModel struct {
	BID       int64
	Member    string
	BookID    int64
	StartDate string
	EndDate   *string // nullable
}

// toDomain converts a borrowings row to the domain entity.
func (m BorrowingModel) toDomain() (circdomain.Borrowing, error) {
	start, err := parseDate(m.StartDate)
	if err != nil {
		return circdomain.Borrowing{}, fmt.Errorf("borrowing %d start_date: %w", m.BID, err)
	}
	b := circdomain.Borrowing{
		BID:       m.BID,
		Member:    m.Member,
		BookID:    m.BookID,
		StartDate: start,
	}
	if m.EndDate != nil {
		end, err := parseDate(*m.EndDate)
		if err != nil {
			return circdomain.Borrowing{}, fmt.Errorf("borrowing %d end_date: %w", m.BID, err)
		}
		b.EndDate = &end
	}
	return b, nil
}

// PenaltyModel represents the database row for the penalties table.
type PenaltyModel struct {
	PID        int64
	BID        int64
	Amount     float64
	PaidAmount float64
}

func (m PenaltyModel) toDomain() circdomain.Penalty {
	return circdomain.Penalty{
		PID:        m.PID,
		BID:        m.BID,
		Amount:     m.Amount,
		PaidAmount: m.PaidAmount,
	}
}

// MemberModel represents the database row for the members table.
type MemberModel struct {
	Email   string
	Name    string
	BYear   *int64  // nullable
	Faculty *string // nullable
}

func (m MemberModel) toDomain() memberdomain.Member {
	member := memberdomain.Member{
		Email: m.Email,
		Name:  m.Name,
	}
	if m.BYear != nil {
		year := int(*m.BYear)
		member.BirthYear = &year
	}
	if m.Faculty != nil {
		member.Faculty = *m.Faculty
	}
	return member
}

func toMemberModel(member memberdomain.Member) MemberModel {
	m := MemberModel{
		Email: member.Email,
		Name:  member.Name,
	}
	if member.BirthYear != nil {
		year := int64(*member.BirthYear)
		m.BYear = &year
	}
	if member.Faculty != "" {
		faculty := member.Faculty
		m.Faculty = &faculty
	}
	return m
}

func formatDate(t time.Time) string {
	return circdomain.ToDate(t).Format(circdomain.DateLayout)
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(circdomain.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", value, err)
	}
	return t, nil
}
