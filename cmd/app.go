package cmd

import (
	"fmt"

	catalogapp "github.com/zjrosen/circ/internal/catalog/application"
	circapp "github.com/zjrosen/circ/internal/circulation/application"
	"github.com/zjrosen/circ/internal/infrastructure/sqlite"
	memberapp "github.com/zjrosen/circ/internal/members/application"
	memberdomain "github.com/zjrosen/circ/internal/members/domain"
)

// app wires the services over one database connection for the duration of
// a command.
type app struct {
	db          *sqlite.DB
	circulation *circapp.Service
	search      *catalogapp.SearchService
	profiles    *memberapp.ProfileService
	members     *sqlite.MemberRepository
	reviews     *sqlite.ReviewRepository
	catalog     *sqlite.CatalogRepository
}

func openApp() (*app, error) {
	db, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening library database: %w", err)
	}
	return &app{
		db:          db,
		circulation: circapp.NewService(db.Borrowings(), db.Penalties()),
		search:      catalogapp.NewSearchService(db.Catalog(), cfg.PageSize),
		profiles:    memberapp.NewProfileService(db.Members()),
		members:     db.Members(),
		reviews:     db.Reviews(),
		catalog:     db.Catalog(),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// requireMember returns the normalized --member email, failing when the
// flag is missing.
func requireMember() (string, error) {
	email := memberdomain.NormalizeEmail(memberEmail)
	if email == "" {
		return "", fmt.Errorf("a member email is required (use --member)")
	}
	return email, nil
}
