// Package domain holds member identity and the profile rollup.
package domain

import (
	"fmt"
	"strings"
)

// Member is a registered library member, identified by a normalized
// (lower-case) email. BirthYear and Faculty are optional.
type Member struct {
	Email     string
	Name      string
	BirthYear *int
	Faculty   string
}

// Profile is the read-only rollup of a member's lending history.
type Profile struct {
	Member
	PreviousBorrowings int
	CurrentBorrowings  int
	OverdueBorrowings  int
	UnpaidPenalties    int
	TotalDebt          float64
}

// MemberNotFoundError indicates that no member with the given email exists.
type MemberNotFoundError struct {
	Email string
}

// Error implements the error interface.
func (e *MemberNotFoundError) Error() string {
	return fmt.Sprintf("member not found: email=%q", e.Email)
}

// MemberExistsError indicates that the email is already registered.
type MemberExistsError struct {
	Email string
}

// Error implements the error interface.
func (e *MemberExistsError) Error() string {
	return fmt.Sprintf("member already registered: email=%q", e.Email)
}

// NormalizeEmail canonicalizes a member identifier. Emails compare
// case-insensitively throughout the ledger.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
