// Package domain holds the catalog entities: books and their search-result
// projection.
package domain

// LoanStatus reports whether a book is currently out.
type LoanStatus string

const (
	StatusAvailable LoanStatus = "AVAILABLE"
	StatusOnLoan    LoanStatus = "ON_LOAN"
)

// Book is one lendable copy in the catalog.
type Book struct {
	BookID int64
	Title  string
	Author string
	Year   int
}

// BookResult is one ranked search hit. AvgRating is nil when the book has
// no reviews.
type BookResult struct {
	BookID    int64
	Title     string
	Author    string
	Year      int
	AvgRating *float64
	Status    LoanStatus
}
