// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for remote search
// history: SearchQuery rows and the FoundFont rows bound to them.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tbourn/go-font-catalogue/internal/domain"
)

// SearchWithCount is a search query joined with the number of fonts found.
type SearchWithCount struct {
	domain.SearchQuery
	FontCount int64 `json:"font_count"`
}

// SearchDetails is one search with its found fonts and, when registered, the
// issuing user.
type SearchDetails struct {
	Search domain.SearchQuery `json:"search"`
	User   *domain.User       `json:"user,omitempty"`
	Fonts  []domain.FoundFont `json:"fonts"`
}

// CreateSearchQuery appends a remote search for userID. SearchedAt is set to
// the current UTC time.
func CreateSearchQuery(ctx context.Context, db *gorm.DB, userID int64, text string) (*domain.SearchQuery, error) {
	q := &domain.SearchQuery{
		UserID:     userID,
		Query:      text,
		SearchedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

// GetSearchQuery fetches a search by id, or ErrNotFound.
func GetSearchQuery(ctx context.Context, db *gorm.DB, id int64) (*domain.SearchQuery, error) {
	var q domain.SearchQuery
	if err := db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// CreateFoundFont appends one result to a search. The validated record is
// also kept verbatim in the Raw JSON column.
func CreateFoundFont(ctx context.Context, db *gorm.DB, queryID int64, rec domain.ExternalFontRecord, downloadURL string) (*domain.FoundFont, error) {
	ff := rec.FoundFont(queryID, downloadURL)
	if raw, err := json.Marshal(rec); err == nil {
		ff.Raw = datatypes.JSON(raw)
	}
	if err := db.WithContext(ctx).Create(&ff).Error; err != nil {
		return nil, err
	}
	return &ff, nil
}

// ListUserSearchHistory returns the user's searches, newest first, each with
// its found fonts. limit <= 0 means no limit.
func ListUserSearchHistory(ctx context.Context, db *gorm.DB, userID int64, limit int) ([]domain.SearchQuery, error) {
	var out []domain.SearchQuery
	q := db.WithContext(ctx).
		Preload("Fonts", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Where("user_id = ?", userID).
		Order("searched_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// GetSearchDetails returns the search, its found fonts in insertion order and
// the issuing user, or ErrNotFound when the search does not exist. A search by
// an unregistered user is returned with a nil User.
func GetSearchDetails(ctx context.Context, db *gorm.DB, queryID int64) (*SearchDetails, error) {
	var q domain.SearchQuery
	err := db.WithContext(ctx).
		Preload("Fonts", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		First(&q, "id = ?", queryID).Error
	if err != nil {
		return nil, err
	}
	out := &SearchDetails{Fonts: q.Fonts}
	q.Fonts = nil
	out.Search = q
	if out.Fonts == nil {
		out.Fonts = []domain.FoundFont{}
	}

	u, err := GetUser(ctx, db, q.UserID)
	switch {
	case err == nil:
		out.User = u
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}
	return out, nil
}

// ListSearches returns the most recent searches across all users with their
// found-font counts. limit <= 0 means no limit.
func ListSearches(ctx context.Context, db *gorm.DB, limit int) ([]SearchWithCount, error) {
	var out []SearchWithCount
	q := db.WithContext(ctx).
		Model(&domain.SearchQuery{}).
		Select("search_queries.*, COUNT(found_fonts.id) AS font_count").
		Joins("LEFT JOIN found_fonts ON found_fonts.search_query_id = search_queries.id").
		Group("search_queries.id").
		Order("search_queries.searched_at DESC, search_queries.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Scan(&out).Error
	return out, err
}

// CountSearchQueries returns the total number of remote searches.
func CountSearchQueries(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.SearchQuery{}).Count(&n).Error
	return n, err
}
