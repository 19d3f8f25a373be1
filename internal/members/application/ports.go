// Package application provides the member profile rollup.
package application

import (
	"time"

	"github.com/zjrosen/circ/internal/members/domain"
)

// BorrowingCounts summarizes a member's borrowing history. Overdue counts
// open borrowings past the loan window at the query date, not frozen at
// return time.
type BorrowingCounts struct {
	Previous int
	Current  int
	Overdue  int
}

// ProfileRepository is the read side of the profile rollup.
type ProfileRepository interface {
	// FindMember looks a member up by normalized email.
	FindMember(email string) (domain.Member, error)

	// CountBorrowings rolls up the member's closed, open and overdue
	// borrowings at the given date.
	CountBorrowings(email string, at time.Time) (BorrowingCounts, error)

	// PenaltySummary returns the number of unpaid penalties and their
	// total outstanding balance. Both are zero when nothing is owed.
	PenaltySummary(email string) (count int, debt float64, err error)
}

// MemberRepository registers members.
type MemberRepository interface {
	// Add inserts a member. The email must not already be registered.
	Add(member domain.Member) error
}
