package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/circ/internal/catalog/domain"
	"github.com/zjrosen/circ/internal/log"
)

// Cache TTLs for search pages. Search is read-only and results stale by a
// transaction are acceptable, so pages are cached briefly to keep repeated
// pagination of the same keyword off the database.
const (
	cacheTTL     = 30 * time.Second
	cacheCleanup = 5 * time.Minute
)

// SearchService answers ranked, paginated catalog queries.
type SearchService struct {
	repo     CatalogRepository
	pages    *gocache.Cache
	pageSize int
	tracer   trace.Tracer
}

// NewSearchService creates a search service. pageSize is the default page
// length used when a caller passes a non-positive size.
func NewSearchService(repo CatalogRepository, pageSize int) *SearchService {
	if pageSize <= 0 {
		pageSize = 5
	}
	return &SearchService{
		repo:     repo,
		pages:    gocache.New(cacheTTL, cacheCleanup),
		pageSize: pageSize,
		tracer:   otel.Tracer("circ/catalog"),
	}
}

// Search returns page N (0-indexed) of results for the keyword. A short
// page signals the end of results. Every call is an independent query;
// no cursor state is kept between calls.
func (s *SearchService) Search(ctx context.Context, keyword string, page, pageSize int) ([]domain.BookResult, error) {
	_, span := s.tracer.Start(ctx, "catalog.Search")
	defer span.End()

	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return nil, fmt.Errorf("search keyword is required")
	}
	if page < 0 {
		return nil, fmt.Errorf("page must not be negative")
	}
	if pageSize <= 0 {
		pageSize = s.pageSize
	}

	key := fmt.Sprintf("%s|%d|%d", keyword, page, pageSize)
	if cached, ok := s.pages.Get(key); ok {
		return cached.([]domain.BookResult), nil
	}

	results, err := s.repo.SearchPage(keyword, pageSize, page*pageSize)
	if err != nil {
		log.ErrorErr(log.CatApp, "Catalog search failed", err, "keyword", keyword, "page", page)
		return nil, err
	}

	s.pages.Set(key, results, gocache.DefaultExpiration)
	return results, nil
}

// Lookup returns the catalog entry for a book id.
func (s *SearchService) Lookup(ctx context.Context, bookID int64) (domain.Book, error) {
	_, span := s.tracer.Start(ctx, "catalog.Lookup")
	defer span.End()

	return s.repo.GetBook(bookID)
}
