// Package application provides the ranked catalog search.
package application

import "github.com/zjrosen/circ/internal/catalog/domain"

// CatalogRepository is the read side of the book catalog.
type CatalogRepository interface {
	// SearchPage returns one page of ranked results for the keyword.
	// Title matches rank above author-only matches; each tier is ordered
	// alphabetically (title tier by title, author tier by author).
	SearchPage(keyword string, limit, offset int) ([]domain.BookResult, error)

	// GetBook looks a book up by id.
	GetBook(bookID int64) (domain.Book, error)

	// AddBook inserts a catalog entry and returns its allocated id.
	AddBook(title, author string, year int) (int64, error)
}

// ReviewRepository records member reviews, which feed the catalog's
// average ratings.
type ReviewRepository interface {
	// Add stores a review and returns its allocated id. Rating must be
	// between 1 and 5.
	Add(bookID int64, member string, rating int, text string) (int64, error)
}
