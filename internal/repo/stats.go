// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file holds the catalogue statistics row, the local
// search log, and the aggregate queries the statistics screens are built on.
//
// The stats row is a materialized cache. BumpStats is the only regular write
// path and must run inside the transaction of the entry mutation it accounts
// for. RecomputeStats rebuilds it from the underlying tables and is the only
// function here allowed to scan them in full.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-font-catalogue/internal/domain"
)

// StatsDelta is a signed adjustment applied to the stats row.
type StatsDelta struct {
	Fonts         int64
	Documents     int64
	Downloads     int64
	LocalSearches int64
}

// IsZero reports whether the delta changes nothing.
func (d StatsDelta) IsZero() bool {
	return d == StatsDelta{}
}

// QueryCount is one query text with the number of times it was run.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// LocalSearchAggregate summarizes the local search log.
type LocalSearchAggregate struct {
	TotalSearches   int64        `json:"total_searches"`
	DistinctUsers   int64        `json:"distinct_users"`
	DistinctQueries int64        `json:"distinct_queries"`
	AvgResults      float64      `json:"avg_results"`
	TopQueries      []QueryCount `json:"top_queries"`
}

// GetStats returns the stats row. A missing row is reported as ErrNotFound;
// AutoMigrate always seeds it.
func GetStats(ctx context.Context, db *gorm.DB) (*domain.CatalogueStats, error) {
	var s domain.CatalogueStats
	if err := db.WithContext(ctx).First(&s, "id = ?", domain.StatsRowID).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// BumpStats applies d to the stats row with SQL expressions, so concurrent
// writers never lose an update to a read-modify-write race.
func BumpStats(ctx context.Context, db *gorm.DB, d StatsDelta) error {
	if d.IsZero() {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.CatalogueStats{}).
		Where("id = ?", domain.StatsRowID).
		Updates(map[string]any{
			"total_fonts":     gorm.Expr("total_fonts + ?", d.Fonts),
			"total_documents": gorm.Expr("total_documents + ?", d.Documents),
			"total_downloads": gorm.Expr("total_downloads + ?", d.Downloads),
			"local_searches":  gorm.Expr("local_searches + ?", d.LocalSearches),
			"last_updated":    time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateLocalSearchLog appends one local search record.
func CreateLocalSearchLog(ctx context.Context, db *gorm.DB, userID int64, query string, resultCount int) (*domain.LocalSearchLog, error) {
	l := &domain.LocalSearchLog{
		UserID:      userID,
		Query:       query,
		ResultCount: resultCount,
		SearchedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, err
	}
	return l, nil
}

// LocalSearchAggregates computes the local search summary. The mean is 0 when
// the log is empty; top holds at most topN queries by frequency, ties broken
// by first appearance.
func LocalSearchAggregates(ctx context.Context, db *gorm.DB, topN int) (*LocalSearchAggregate, error) {
	var row struct {
		Total           int64
		DistinctUsers   int64
		DistinctQueries int64
		Avg             *float64
	}
	err := db.WithContext(ctx).
		Model(&domain.LocalSearchLog{}).
		Select("COUNT(*) AS total, COUNT(DISTINCT user_id) AS distinct_users, " +
			"COUNT(DISTINCT query) AS distinct_queries, AVG(result_count) AS avg").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	out := &LocalSearchAggregate{
		TotalSearches:   row.Total,
		DistinctUsers:   row.DistinctUsers,
		DistinctQueries: row.DistinctQueries,
		TopQueries:      []QueryCount{},
	}
	if row.Avg != nil {
		out.AvgResults = *row.Avg
	}
	if topN <= 0 || row.Total == 0 {
		return out, nil
	}

	err = db.WithContext(ctx).
		Model(&domain.LocalSearchLog{}).
		Select("query, COUNT(*) AS count").
		Group("query").
		Order("count DESC, MIN(id) ASC").
		Limit(topN).
		Scan(&out.TopQueries).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecomputeStats rebuilds the stats row from catalogue_entries and
// local_search_logs and returns the repaired row. Font, document and search
// totals are recounted. total_downloads also covers deliveries of entries
// deleted since, so the live per-entry sum is only a lower bound: the total
// is raised to it, never lowered.
func RecomputeStats(ctx context.Context, db *gorm.DB) (*domain.CatalogueStats, error) {
	var out *domain.CatalogueStats
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var agg struct {
			Fonts     int64
			Documents int64
			Downloads int64
		}
		if err := tx.Model(&domain.CatalogueEntry{}).
			Select("COUNT(*) AS fonts, " +
				"COALESCE(SUM(CASE WHEN is_document THEN 1 ELSE 0 END), 0) AS documents, " +
				"COALESCE(SUM(download_count), 0) AS downloads").
			Scan(&agg).Error; err != nil {
			return err
		}
		var searches int64
		if err := tx.Model(&domain.LocalSearchLog{}).Count(&searches).Error; err != nil {
			return err
		}
		if err := SeedStats(tx); err != nil {
			return err
		}
		cur, err := GetStats(ctx, tx)
		if err != nil {
			return err
		}
		if cur.TotalDownloads > agg.Downloads {
			agg.Downloads = cur.TotalDownloads
		}
		if err := tx.Model(&domain.CatalogueStats{}).
			Where("id = ?", domain.StatsRowID).
			Updates(map[string]any{
				"total_fonts":     agg.Fonts,
				"total_documents": agg.Documents,
				"total_downloads": agg.Downloads,
				"local_searches":  searches,
				"last_updated":    time.Now().UTC(),
			}).Error; err != nil {
			return err
		}
		s, err := GetStats(ctx, tx)
		out = s
		return err
	})
	return out, err
}
