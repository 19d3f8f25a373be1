// Package domain holds the circulation entities and the lending rules:
// loan window, overdue arithmetic and penalty pricing.
package domain

import "time"

// LoanWindowDays is the fixed loan window. A book returned more than this
// many days after its start date is overdue.
const LoanWindowDays = 20

// DateLayout is the storage format for calendar dates. Borrowing dates are
// dates, not timestamps; time-of-day never participates in overdue math.
const DateLayout = "2006-01-02"

// Borrowing is one lending transaction. A nil EndDate means the book is
// still out.
type Borrowing struct {
	BID       int64
	Member    string
	BookID    int64
	StartDate time.Time
	EndDate   *time.Time
}

// Open reports whether the borrowing has not been returned yet.
func (b Borrowing) Open() bool {
	return b.EndDate == nil
}

// Deadline returns the last day the book can be returned without penalty.
func (b Borrowing) Deadline() time.Time {
	return ToDate(b.StartDate).AddDate(0, 0, LoanWindowDays)
}

// OverdueDaysAt returns how many full days past the loan window have
// elapsed at the given date. Zero when the deadline has not passed.
func (b Borrowing) OverdueDaysAt(at time.Time) int {
	overdue := DaysBetween(b.StartDate, at) - LoanWindowDays
	if overdue < 0 {
		return 0
	}
	return overdue
}

// ReturnOutcome describes a completed return. The penalty assessment
// consumes it.
type ReturnOutcome struct {
	BorrowingID int64
	BookID      int64
	Member      string
	StartDate   time.Time
	ReturnDate  time.Time
	LoanDays    int
	OverdueDays int
}

// Overdue reports whether the loan exceeded the window.
func (o ReturnOutcome) Overdue() bool {
	return o.OverdueDays > 0
}

// OutcomeFor computes the loan duration and overdue days for a return.
func OutcomeFor(bid, bookID int64, member string, start, returned time.Time) ReturnOutcome {
	days := DaysBetween(start, returned)
	overdue := days - LoanWindowDays
	if overdue < 0 {
		overdue = 0
	}
	return ReturnOutcome{
		BorrowingID: bid,
		BookID:      bookID,
		Member:      member,
		StartDate:   ToDate(start),
		ReturnDate:  ToDate(returned),
		LoanDays:    days,
		OverdueDays: overdue,
	}
}

// OpenLoan is a member-facing view of an open borrowing, shown before a
// return so the member can pick the borrowing id.
type OpenLoan struct {
	BorrowingID int64
	BookID      int64
	Title       string
	StartDate   time.Time
	Deadline    time.Time
	OverdueDays int
}

// ToDate truncates a timestamp to its UTC calendar date.
func ToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from start to end. Fractional day
// components are discarded, matching date-only arithmetic.
func DaysBetween(start, end time.Time) int {
	return int(ToDate(end).Sub(ToDate(start)) / (24 * time.Hour))
}
