// Package domain defines the persistence models for chat users, remote font
// searches, and the local font catalogue. These types are mapped with GORM and
// form the core data layer of the font catalogue service.
package domain

import (
	"time"

	"golang.org/x/text/cases"
	"gorm.io/datatypes"
)

// User is a chat participant. The ID is the chat platform's identity and is
// never generated locally. Users are created on first interaction and are
// never deleted; only the administrator flag is mutated after creation.
type User struct {
	ID           int64     `json:"id"            gorm:"primaryKey;autoIncrement:false"`
	Handle       string    `json:"handle"        gorm:"type:varchar(64);not null;default:''"`
	DisplayName  string    `json:"display_name"  gorm:"type:varchar(255);not null;default:''"`
	IsAdmin      bool      `json:"is_admin"      gorm:"not null;default:false;index"`
	RegisteredAt time.Time `json:"registered_at" gorm:"not null;index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// SearchQuery is one free-text search issued by a user against the remote
// font API. Rows are append-only.
//
// Fields:
//   - ID: autoincrement key handed back to callers as the query id.
//   - UserID: issuing user (reference by id only, no cascade).
//   - Fonts: raw results returned for this search, kept for history.
type SearchQuery struct {
	ID         int64       `json:"id"          gorm:"primaryKey;autoIncrement"`
	UserID     int64       `json:"user_id"     gorm:"not null;index:idx_search_user_date,priority:1"`
	Query      string      `json:"query"       gorm:"type:varchar(512);not null"`
	SearchedAt time.Time   `json:"searched_at" gorm:"not null;index:idx_search_user_date,priority:2"`
	Fonts      []FoundFont `json:"fonts,omitempty" gorm:"foreignKey:SearchQueryID;references:ID"`
}

// TableName returns the database table name for SearchQuery.
func (SearchQuery) TableName() string { return "search_queries" }

// FoundFont is a snapshot of one remote search result bound to the search
// that produced it. Found fonts are not deduplicated; the catalogue is.
type FoundFont struct {
	ID              int64          `json:"-"                gorm:"primaryKey;autoIncrement"`
	SearchQueryID   int64          `json:"search_query_id"  gorm:"not null;index"`
	FontName        string         `json:"font_name"        gorm:"type:varchar(255);not null;default:''"`
	Slug            string         `json:"slug"             gorm:"type:varchar(255);not null;index"`
	Designer        string         `json:"designer"         gorm:"type:varchar(255);not null;default:''"`
	Manufacturer    string         `json:"manufacturer"     gorm:"type:varchar(255);not null;default:''"`
	ContributorName string         `json:"contributor_name" gorm:"type:varchar(255);not null;default:''"`
	URL             string         `json:"url"              gorm:"type:text;not null;default:''"`
	DownloadURL     string         `json:"download_url"     gorm:"type:text;not null;default:''"`
	Raw             datatypes.JSON `json:"-"`
}

// TableName returns the database table name for FoundFont.
func (FoundFont) TableName() string { return "found_fonts" }

// CatalogueEntry is the deduplicated local record of a font, keyed by slug.
//
// Invariants:
//   - at most one entry per slug (unique index ux_catalogue_slug);
//   - DownloadCount only ever grows;
//   - IsDocument marks files submitted directly by a user, as opposed to
//     fonts discovered through a remote search;
//   - NameFold and SlugFold hold Fold(FontName) and Fold(Slug). They back
//     case-insensitive search, since SQL LOWER only folds ASCII on SQLite.
type CatalogueEntry struct {
	ID              int64     `json:"id"               gorm:"primaryKey;autoIncrement"`
	FontName        string    `json:"font_name"        gorm:"type:varchar(255);not null;default:''"`
	Slug            string    `json:"slug"             gorm:"type:varchar(255);not null;uniqueIndex:ux_catalogue_slug"`
	Designer        string    `json:"designer"         gorm:"type:varchar(255);not null;default:''"`
	Manufacturer    string    `json:"manufacturer"     gorm:"type:varchar(255);not null;default:''"`
	ContributorName string    `json:"contributor_name" gorm:"type:varchar(255);not null;default:''"`
	URL             string    `json:"url"              gorm:"type:text;not null;default:''"`
	DownloadURL     string    `json:"download_url"     gorm:"type:text;not null;default:''"`
	FilePath        *string   `json:"file_path,omitempty" gorm:"type:text"`
	AddedByUserID   *int64    `json:"added_by_user_id,omitempty" gorm:"index"`
	CreatedAt       time.Time `json:"created_at"       gorm:"not null;index"`
	DownloadCount   int64     `json:"download_count"   gorm:"not null;default:0"`
	IsDocument      bool      `json:"is_document"      gorm:"not null;default:false;index"`
	NameFold        string    `json:"-"                gorm:"type:varchar(255);not null;default:''"`
	SlugFold        string    `json:"-"                gorm:"type:varchar(255);not null;default:''"`
}

// TableName returns the database table name for CatalogueEntry.
func (CatalogueEntry) TableName() string { return "catalogue_entries" }

// Fold returns the case-folded form of s used for catalogue search keys.
func Fold(s string) string { return cases.Fold().String(s) }

// SetFoldKeys refreshes NameFold and SlugFold from FontName and Slug.
func (e *CatalogueEntry) SetFoldKeys() {
	e.NameFold = Fold(e.FontName)
	e.SlugFold = Fold(e.Slug)
}

// HasFile reports whether the entry points at a local file path.
func (e *CatalogueEntry) HasFile() bool {
	return e != nil && e.FilePath != nil && *e.FilePath != ""
}

// StatsRowID is the primary key of the single catalogue_stats row.
const StatsRowID = 1

// CatalogueStats is the singleton aggregate row. It is a materialized cache of
// counts derivable from catalogue_entries and local_search_logs and is only
// ever adjusted in the same transaction as the write that changes them.
type CatalogueStats struct {
	ID             int       `json:"-"               gorm:"primaryKey;autoIncrement:false"`
	TotalFonts     int64     `json:"total_fonts"     gorm:"not null;default:0"`
	TotalDocuments int64     `json:"total_documents" gorm:"not null;default:0"`
	TotalDownloads int64     `json:"total_downloads" gorm:"not null;default:0"`
	LocalSearches  int64     `json:"local_searches"  gorm:"not null;default:0"`
	LastUpdated    time.Time `json:"last_updated"    gorm:"not null"`
}

// TableName returns the database table name for CatalogueStats.
func (CatalogueStats) TableName() string { return "catalogue_stats" }

// LocalSearchLog records one query run against the local catalogue. It is
// distinct from SearchQuery, which is a search against the remote API.
type LocalSearchLog struct {
	ID          int64     `json:"id"           gorm:"primaryKey;autoIncrement"`
	UserID      int64     `json:"user_id"      gorm:"not null;index"`
	Query       string    `json:"query"        gorm:"type:varchar(512);not null;index"`
	ResultCount int       `json:"result_count" gorm:"not null;default:0"`
	SearchedAt  time.Time `json:"searched_at"  gorm:"not null"`
}

// TableName returns the database table name for LocalSearchLog.
func (LocalSearchLog) TableName() string { return "local_search_logs" }
