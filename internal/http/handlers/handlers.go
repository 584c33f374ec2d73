// Package handlers exposes the font catalogue over REST.
//
// Handlers are transport-thin: they parse and bound inputs, call the
// application services through the narrow interfaces below, and translate
// results into JSON or file responses. Identity comes from the X-User-ID
// middleware; privilege checks for administrative routes are attached in the
// router.
package handlers

import (
	"context"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-font-catalogue/internal/domain"
	"github.com/tbourn/go-font-catalogue/internal/repo"
	"github.com/tbourn/go-font-catalogue/internal/search"
	"github.com/tbourn/go-font-catalogue/internal/services"
	"github.com/tbourn/go-font-catalogue/internal/utils"
)

//
// Service contracts (context-aware)
//

// CatalogueService is the catalogue surface consumed by the handlers.
type CatalogueService interface {
	List(ctx context.Context, page, pageSize int) ([]repo.EntryListing, int64, error)
	Get(ctx context.Context, slug string) (*domain.CatalogueEntry, bool, error)
	Usage(ctx context.Context, slug string) (*services.EntryUsage, bool, error)
	Download(ctx context.Context, slug string) (*services.DownloadResult, error)
	Refresh(ctx context.Context, rec domain.ExternalFontRecord, filePath *string) (*domain.CatalogueEntry, bool, error)
	DeleteBySlug(ctx context.Context, slug string) (bool, error)
	Search(ctx context.Context, userID int64, query string) ([]search.Result, error)
	RecordUploadedFont(ctx context.Context, userID int64, rec domain.ExternalFontRecord, filePath string) (*domain.CatalogueEntry, error)
}

// SearchService runs remote searches and serves their history.
type SearchService interface {
	Search(ctx context.Context, userID int64, query string) (*services.SearchOutcome, error)
	History(ctx context.Context, userID int64, limit int) ([]domain.SearchQuery, error)
	Details(ctx context.Context, queryID int64) (*repo.SearchDetails, bool, error)
	List(ctx context.Context, limit int) ([]repo.SearchWithCount, error)
}

// UserService is the user registry.
type UserService interface {
	Register(ctx context.Context, id int64, handle, displayName string) (*domain.User, error)
	SetAdmin(ctx context.Context, id int64, isAdmin bool) error
	Get(ctx context.Context, id int64) (*domain.User, bool, error)
	IsPrivileged(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]repo.UserWithSearches, error)
}

// StatsService serves the administrator overview.
type StatsService interface {
	Overview(ctx context.Context) (*services.Overview, error)
	Rebuild(ctx context.Context) (*domain.CatalogueStats, error)
}

// FileSaver stores uploaded font files.
type FileSaver interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Remove(ctx context.Context, path string)
}

// IdempotencyRecorder remembers the resource produced for an idempotent
// request so retries can be replayed.
type IdempotencyRecorder interface {
	Record(ctx context.Context, userID int64, scope, key, resourceID string, status int) error
}

//
// Handler wiring
//

// Options carries the transport limits applied by the handlers.
type Options struct {
	// FontsPerPage is the page size of local search results.
	FontsPerPage int
	// MaxUploadBytes caps multipart uploads; 0 disables the check.
	MaxUploadBytes int64
	// HistoryLimit caps history and search listings.
	HistoryLimit int
}

// Handlers groups every endpoint of the API.
type Handlers struct {
	catalogue CatalogueService
	searches  SearchService
	users     UserService
	stats     StatsService
	files     FileSaver
	idem      IdempotencyRecorder
	opts      Options
}

// New constructs Handlers. files and idem may be nil: uploads are then
// rejected and idempotent results are not recorded.
func New(catalogue CatalogueService, searches SearchService, users UserService, stats StatsService,
	files FileSaver, idem IdempotencyRecorder, opts Options) *Handlers {
	if opts.FontsPerPage <= 0 {
		opts.FontsPerPage = 3
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 50
	}
	return &Handlers{
		catalogue: catalogue,
		searches:  searches,
		users:     users,
		stats:     stats,
		files:     files,
		idem:      idem,
		opts:      opts,
	}
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	pages := utils.TotalPages(total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: pages,
		HasNext:    page < pages,
	}
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size.
func clampPagination(c *gin.Context, defaultPageSize int) (page, pageSize int) {
	const maxPageSize = 100
	page = utils.AtoiDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// paramID parses a positive int64 path parameter.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}
