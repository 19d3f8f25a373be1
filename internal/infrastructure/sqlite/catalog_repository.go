package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	catalogapp "github.com/zjrosen/circ/internal/catalog/application"
	"github.com/zjrosen/circ/internal/catalog/domain"
	circdomain "github.com/zjrosen/circ/internal/circulation/domain"
	"github.com/zjrosen/circ/internal/log"
)

// CatalogRepository implements the ranked catalog search over SQLite.
type CatalogRepository struct {
	db *sql.DB
}

func newCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Ensure CatalogRepository implements the catalog port.
var _ catalogapp.CatalogRepository = (*CatalogRepository)(nil)

// searchQuery ranks title matches above author-only matches. A book whose
// title and author both match counts once, in the title tier (the author
// tier excludes title matches). Each tier orders alphabetically, the
// title tier by title, the author tier by author. Average ratings come
// from a LEFT JOIN so unreviewed books surface with a NULL rating rather
// than dropping out.
const searchQuery = `
SELECT book_id, title, author, pyear, avg_rating, status FROM (
    SELECT b.book_id, b.title, b.author, b.pyear,
           AVG(r.rating) AS avg_rating,
           (CASE WHEN EXISTS(SELECT 1 FROM borrowings
                             WHERE book_id = b.book_id AND end_date IS NULL)
                 THEN 'ON_LOAN' ELSE 'AVAILABLE' END) AS status,
           1 AS tier
    FROM books b
    LEFT JOIN reviews r ON b.book_id = r.book_id
    WHERE LOWER(b.title) LIKE ?
    GROUP BY b.book_id

    UNION ALL

    SELECT b.book_id, b.title, b.author, b.pyear,
           AVG(r.rating) AS avg_rating,
           (CASE WHEN EXISTS(SELECT 1 FROM borrowings
                             WHERE book_id = b.book_id AND end_date IS NULL)
                 THEN 'ON_LOAN' ELSE 'AVAILABLE' END) AS status,
           2 AS tier
    FROM books b
    LEFT JOIN reviews r ON b.book_id = r.book_id
    WHERE LOWER(b.author) LIKE ? AND LOWER(b.title) NOT LIKE ?
    GROUP BY b.book_id
)
ORDER BY tier,
         CASE WHEN tier = 1 THEN LOWER(title)
              WHEN tier = 2 THEN LOWER(author)
         END
LIMIT ? OFFSET ?`

// SearchPage returns one page of ranked results for a lower-cased
// keyword. Short pages signal the end of results; no cursor state is kept
// between calls.
func (r *CatalogRepository) SearchPage(keyword string, limit, offset int) ([]domain.BookResult, error) {
	pattern := "%" + keyword + "%"
	rows, err := r.db.Query(searchQuery, pattern, pattern, pattern, limit, offset)
	if err != nil {
		log.ErrorErr(log.CatDB, "SearchPage query failed", err, "keyword", keyword)
		return nil, fmt.Errorf("searching catalog: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]domain.BookResult, 0, limit)
	for rows.Next() {
		var (
			result domain.BookResult
			year   sql.NullInt64
			rating sql.NullFloat64
			status string
		)
		if err := rows.Scan(&result.BookID, &result.Title, &result.Author, &year, &rating, &status); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		if year.Valid {
			result.Year = int(year.Int64)
		}
		if rating.Valid {
			avg := rating.Float64
			result.AvgRating = &avg
		}
		result.Status = domain.LoanStatus(status)
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search rows: %w", err)
	}
	return results, nil
}

// GetBook looks a book up by id.
func (r *CatalogRepository) GetBook(bookID int64) (domain.Book, error) {
	var (
		book domain.Book
		year sql.NullInt64
	)
	err := r.db.QueryRow(
		`SELECT book_id, title, author, pyear FROM books WHERE book_id = ?`, bookID,
	).Scan(&book.BookID, &book.Title, &book.Author, &year)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Book{}, &circdomain.BookNotFoundError{BookID: bookID}
	}
	if err != nil {
		return domain.Book{}, fmt.Errorf("getting book: %w", err)
	}
	if year.Valid {
		book.Year = int(year.Int64)
	}
	return book, nil
}

// AddBook inserts a catalog entry with id max(existing)+1.
func (r *CatalogRepository) AddBook(title, author string, year int) (bookID int64, err error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, txError("add book", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = tx.QueryRow(`SELECT COALESCE(MAX(book_id), 0) + 1 FROM books`).Scan(&bookID); err != nil {
		return 0, txError("add book", err)
	}
	if _, err = tx.Exec(
		`INSERT INTO books (book_id, title, author, pyear) VALUES (?, ?, ?, ?)`,
		bookID, title, author, year,
	); err != nil {
		return 0, txError("add book", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, txError("add book", err)
	}
	return bookID, nil
}
