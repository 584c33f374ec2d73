// Package services – SearchService
//
// SearchService orchestrates a remote font search: it records the query,
// asks the FontFinder for candidates, and hands every valid candidate to the
// CatalogueService for ingestion. A failing or empty remote search is not an
// error for the caller; it yields zero results and ingests nothing.
package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-font-catalogue/internal/domain"
	"github.com/tbourn/go-font-catalogue/internal/observability"
	"github.com/tbourn/go-font-catalogue/internal/repo"
	"github.com/tbourn/go-font-catalogue/internal/sysutil"
)

// FontFinder looks fonts up by free-text query in the remote font API.
type FontFinder interface {
	Search(ctx context.Context, query string) ([]domain.ExternalFontRecord, error)
}

// SearchOutcome is the result of one remote search.
type SearchOutcome struct {
	QueryID    int64              `json:"query_id"`
	Query      string             `json:"query"`
	Fonts      []domain.FoundFont `json:"fonts"`
	NewEntries int                `json:"new_entries"`
	Skipped    int                `json:"skipped"`
}

// SearchService runs remote searches and serves search history.
type SearchService struct {
	DB        *gorm.DB
	Finder    FontFinder
	Catalogue *CatalogueService

	// MaxQueryRunes caps query length (0 disables).
	MaxQueryRunes int
	// HistoryLimit caps History and List when the caller passes <= 0.
	HistoryLimit int
}

func (s *SearchService) tracer() trace.Tracer { return otel.Tracer("services/SearchService") }

// Search records query for userID, queries the remote API and ingests the
// results. The query id is returned even when the remote side produced
// nothing.
func (s *SearchService) Search(ctx context.Context, userID int64, query string) (*SearchOutcome, error) {
	ctx, span := s.tracer().Start(ctx, "Search", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	query, err := normalizeQuery(query, s.MaxQueryRunes)
	if err != nil {
		return nil, err
	}

	q, err := repo.CreateSearchQuery(ctx, s.DB, userID, query)
	if err != nil {
		return nil, storageErr(ctx, "record search", query, err)
	}
	out := &SearchOutcome{QueryID: q.ID, Query: query, Fonts: []domain.FoundFont{}}
	span.SetAttributes(attribute.Int64("search.id", q.ID))

	if s.Finder == nil {
		return out, nil
	}
	recs, err := s.Finder.Search(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "remote search failed")
		sysutil.Logger(ctx).Warn().Err(err).Str("op", "remote search").Str("key", query).Msg("font api unavailable")
		observability.RemoteSearches.WithLabelValues("error").Inc()
		return out, nil
	}
	if len(recs) == 0 {
		observability.RemoteSearches.WithLabelValues("empty").Inc()
		return out, nil
	}
	observability.RemoteSearches.WithLabelValues("ok").Inc()

	for _, r := range recs {
		ff, created, err := s.Catalogue.RecordFoundFont(ctx, q.ID, r)
		if errors.Is(err, ErrInvalidFont) {
			sysutil.Logger(ctx).Warn().Err(err).Int64("search_id", q.ID).Str("slug", r.Slug).Msg("skipping invalid font record")
			out.Skipped++
			continue
		}
		if err != nil {
			return nil, err
		}
		out.Fonts = append(out.Fonts, *ff)
		if created {
			out.NewEntries++
		}
	}
	span.SetAttributes(attribute.Int("fonts", len(out.Fonts)), attribute.Int("new_entries", out.NewEntries))
	return out, nil
}

func (s *SearchService) limit(n int) int {
	if n > 0 {
		return n
	}
	return s.HistoryLimit
}

// History returns userID's searches newest first, each with its fonts.
func (s *SearchService) History(ctx context.Context, userID int64, limit int) ([]domain.SearchQuery, error) {
	out, err := repo.ListUserSearchHistory(ctx, s.DB, userID, s.limit(limit))
	if err != nil {
		return nil, storageErr(ctx, "search history", "", err)
	}
	if out == nil {
		out = []domain.SearchQuery{}
	}
	return out, nil
}

// Details returns one search with its fonts and user. A missing search is
// (nil, false, nil).
func (s *SearchService) Details(ctx context.Context, queryID int64) (*repo.SearchDetails, bool, error) {
	d, err := repo.GetSearchDetails(ctx, s.DB, queryID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageErr(ctx, "search details", "", err)
	}
	return d, true, nil
}

// List returns the most recent searches across all users.
func (s *SearchService) List(ctx context.Context, limit int) ([]repo.SearchWithCount, error) {
	out, err := repo.ListSearches(ctx, s.DB, s.limit(limit))
	if err != nil {
		return nil, storageErr(ctx, "list searches", "", err)
	}
	if out == nil {
		out = []repo.SearchWithCount{}
	}
	return out, nil
}
