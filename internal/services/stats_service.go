// Package services – StatsService
//
// StatsService is the read side of the catalogue: the stats row, the local
// search summary and the administrator overview. It also exposes the repair
// path that rebuilds the stats row from the underlying tables.
package services

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-font-catalogue/internal/domain"
	"github.com/tbourn/go-font-catalogue/internal/repo"
)

// DefaultTopQueries is the number of most frequent local queries reported.
const DefaultTopQueries = 5

// Overview is the administrator statistics screen.
type Overview struct {
	Users          int64                      `json:"users"`
	Admins         int64                      `json:"admins"`
	RemoteSearches int64                      `json:"remote_searches"`
	Entries        int64                      `json:"entries"`
	Documents      int64                      `json:"documents"`
	Catalogue      *domain.CatalogueStats     `json:"catalogue"`
	LocalSearch    *repo.LocalSearchAggregate `json:"local_search"`
}

// StatsService reports catalogue and usage statistics.
type StatsService struct {
	DB *gorm.DB
	// TopQueries caps the top-queries list (DefaultTopQueries when <= 0).
	TopQueries int
	// Writer, when set, is held while the stats row is rebuilt so the repair
	// does not interleave with catalogue writes.
	Writer sync.Locker
}

func (s *StatsService) tracer() trace.Tracer { return otel.Tracer("services/StatsService") }

func (s *StatsService) topN() int {
	if s.TopQueries <= 0 {
		return DefaultTopQueries
	}
	return s.TopQueries
}

// LocalSearchSummary returns total local searches, distinct users, distinct
// queries, the mean result count (0 when nothing was searched) and the most
// frequent queries.
func (s *StatsService) LocalSearchSummary(ctx context.Context) (*repo.LocalSearchAggregate, error) {
	ctx, span := s.tracer().Start(ctx, "LocalSearchSummary")
	defer span.End()

	agg, err := repo.LocalSearchAggregates(ctx, s.DB, s.topN())
	if err != nil {
		return nil, storageErr(ctx, "local search summary", "", err)
	}
	return agg, nil
}

// Catalogue returns the stats row.
func (s *StatsService) Catalogue(ctx context.Context) (*domain.CatalogueStats, error) {
	st, err := repo.GetStats(ctx, s.DB)
	if err != nil {
		return nil, storageErr(ctx, "catalogue stats", "", err)
	}
	return st, nil
}

// Overview collects every counter shown on the administrator screen.
func (s *StatsService) Overview(ctx context.Context) (*Overview, error) {
	ctx, span := s.tracer().Start(ctx, "Overview")
	defer span.End()

	var (
		out Overview
		err error
	)
	counts := []struct {
		op  string
		dst *int64
		fn  func(context.Context, *gorm.DB) (int64, error)
	}{
		{"count users", &out.Users, repo.CountUsers},
		{"count admins", &out.Admins, repo.CountAdmins},
		{"count searches", &out.RemoteSearches, repo.CountSearchQueries},
		{"count entries", &out.Entries, repo.CountEntries},
		{"count documents", &out.Documents, repo.CountDocuments},
	}
	for _, c := range counts {
		if *c.dst, err = c.fn(ctx, s.DB); err != nil {
			return nil, storageErr(ctx, c.op, "", err)
		}
	}
	if out.Catalogue, err = s.Catalogue(ctx); err != nil {
		return nil, err
	}
	if out.LocalSearch, err = s.LocalSearchSummary(ctx); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("entries", out.Entries))
	return &out, nil
}

// Rebuild recomputes the stats row from catalogue_entries and
// local_search_logs and returns the repaired row.
func (s *StatsService) Rebuild(ctx context.Context) (*domain.CatalogueStats, error) {
	ctx, span := s.tracer().Start(ctx, "Rebuild")
	defer span.End()

	if s.Writer != nil {
		s.Writer.Lock()
		defer s.Writer.Unlock()
	}
	st, err := repo.RecomputeStats(ctx, s.DB)
	if err != nil {
		return nil, storageErr(ctx, "rebuild stats", "", err)
	}
	return st, nil
}
