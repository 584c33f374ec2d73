// Package services – CatalogueService
//
// This file implements CatalogueService, which owns the local font catalogue:
// ingestion of fonts discovered by remote searches, uploaded documents and
// explicit refreshes, download accounting, administrative removal and the
// ranked local search.
//
// Every write that touches the catalogue_stats row runs under a single writer
// mutex and inside one short transaction, so concurrent requests for the same
// slug never lose a counter update. Reads take no lock.
//
// Observability: public methods are OpenTelemetry-instrumented; storage
// failures are logged with the operation and key before being returned.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-font-catalogue/internal/domain"
	"github.com/tbourn/go-font-catalogue/internal/observability"
	"github.com/tbourn/go-font-catalogue/internal/repo"
	"github.com/tbourn/go-font-catalogue/internal/search"
	"github.com/tbourn/go-font-catalogue/internal/sysutil"
)

// FileStore is the local font file storage managed alongside the catalogue.
type FileStore interface {
	// Exists reports whether path is a readable regular file.
	Exists(path string) bool
	// Remove deletes path, logging and swallowing any failure.
	Remove(ctx context.Context, path string)
}

// FileFetcher downloads the font archive for slug and returns its local path.
type FileFetcher interface {
	Fetch(ctx context.Context, slug string) (string, error)
}

// EntryRef identifies a catalogue entry by id or, when ID is zero, by slug.
type EntryRef struct {
	ID   int64
	Slug string
}

func (r EntryRef) String() string {
	if r.ID != 0 {
		return fmt.Sprintf("id:%d", r.ID)
	}
	return r.Slug
}

// DownloadResult describes the outcome of a download request. When Delivered
// is false the caller should hand out URL instead; counters were not changed.
type DownloadResult struct {
	Entry     *domain.CatalogueEntry `json:"entry"`
	Delivered bool                   `json:"delivered"`
	FilePath  string                 `json:"-"`
	URL       string                 `json:"download_url"`
}

// EntryUsage is the per-entry usage summary shown to administrators.
type EntryUsage struct {
	Entry           *domain.CatalogueEntry `json:"entry"`
	DaysSinceAdded  int                    `json:"days_since_added"`
	DownloadsPerDay float64                `json:"downloads_per_day"`
}

// CatalogueService coordinates catalogue persistence, file storage and
// download accounting.
type CatalogueService struct {
	DB      *gorm.DB
	Files   FileStore
	Fetcher FileFetcher

	// DownloadURLTemplate expands "{slug}" into the direct download URL.
	DownloadURLTemplate string
	// MaxQueryRunes caps local search queries (0 disables).
	MaxQueryRunes int
	// PageSize is the default page size of List.
	PageSize int
	// Now is the clock; tests may replace it.
	Now func() time.Time

	mu sync.Mutex
}

// NewCatalogueService constructs a CatalogueService with defaults.
func NewCatalogueService(db *gorm.DB, files FileStore, fetcher FileFetcher) *CatalogueService {
	return &CatalogueService{
		DB:                  db,
		Files:               files,
		Fetcher:             fetcher,
		DownloadURLTemplate: domain.DefaultDownloadURLTemplate,
		MaxQueryRunes:       256,
		PageSize:            20,
		Now:                 time.Now,
	}
}

func (s *CatalogueService) tracer() trace.Tracer { return otel.Tracer("services/CatalogueService") }

// WriteLock returns the writer mutex guarding stats-touching writes, for
// collaborators that must not interleave with them.
func (s *CatalogueService) WriteLock() sync.Locker { return &s.mu }

func (s *CatalogueService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *CatalogueService) downloadURL(slug string) string {
	return domain.DownloadURL(s.DownloadURLTemplate, slug)
}

// storageErr logs a store failure with its operation and key and wraps it.
func storageErr(ctx context.Context, op, key string, err error) error {
	sysutil.Logger(ctx).Error().Err(err).Str("op", op).Str("key", key).Msg("storage failure")
	return fmt.Errorf("%s %q: %w", op, key, err)
}

func validateRecord(rec domain.ExternalFontRecord) (domain.ExternalFontRecord, error) {
	rec = rec.Normalize()
	if err := rec.Validate(); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrInvalidFont, err)
	}
	return rec, nil
}

// RecordFoundFont appends rec to the results of search queryID and ingests it
// into the catalogue in the same transaction. A slug seen for the first time
// becomes a new entry attributed to the user who issued the search; a known
// slug is left untouched. created reports which of the two happened.
func (s *CatalogueService) RecordFoundFont(ctx context.Context, queryID int64, rec domain.ExternalFontRecord) (ff *domain.FoundFont, created bool, err error) {
	ctx, span := s.tracer().Start(ctx, "RecordFoundFont",
		trace.WithAttributes(attribute.Int64("search.id", queryID), attribute.String("font.slug", rec.Slug)))
	defer span.End()

	rec, err = validateRecord(rec)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := repo.GetSearchQuery(ctx, tx, queryID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrSearchNotFound
		}
		if err != nil {
			return err
		}
		ff, err = repo.CreateFoundFont(ctx, tx, queryID, rec, s.downloadURL(rec.Slug))
		if err != nil {
			return err
		}
		created, err = s.ingestDiscovered(ctx, tx, q.UserID, rec)
		return err
	})
	if errors.Is(err, ErrSearchNotFound) {
		return nil, false, err
	}
	if err != nil {
		return nil, false, storageErr(ctx, "record found font", rec.Slug, err)
	}
	if created {
		observability.FontsIngested.WithLabelValues("search").Inc()
	}
	return ff, created, nil
}

// ingestDiscovered inserts rec when its slug is unknown. Discovery never
// overwrites an existing entry.
func (s *CatalogueService) ingestDiscovered(ctx context.Context, tx *gorm.DB, userID int64, rec domain.ExternalFontRecord) (bool, error) {
	_, err := repo.GetEntryBySlug(ctx, tx, rec.Slug)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return false, err
	}

	e := rec.CatalogueEntry(s.downloadURL(rec.Slug))
	e.AddedByUserID = &userID
	e.CreatedAt = s.now()
	err = repo.InsertEntry(ctx, tx, &e, repo.StatsDelta{Fonts: 1})
	if errors.Is(err, repo.ErrDuplicate) {
		return false, nil
	}
	return err == nil, err
}

// RecordUploadedFont stores a font file submitted directly by userID. A new
// slug is inserted as a document (fonts+1, documents+1). A known slug is
// updated in place: metadata and file path are replaced and the document flag
// is set, counting one more document only if it was not one already. A file
// that the update replaces is removed best-effort.
func (s *CatalogueService) RecordUploadedFont(ctx context.Context, userID int64, rec domain.ExternalFontRecord, filePath string) (*domain.CatalogueEntry, error) {
	ctx, span := s.tracer().Start(ctx, "RecordUploadedFont",
		trace.WithAttributes(attribute.Int64("user.id", userID), attribute.String("font.slug", rec.Slug)))
	defer span.End()

	rec, err := validateRecord(rec)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		out      *domain.CatalogueEntry
		created  bool
		replaced string
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := repo.GetEntryBySlug(ctx, tx, rec.Slug)
		if errors.Is(err, repo.ErrNotFound) {
			e := rec.CatalogueEntry(s.downloadURL(rec.Slug))
			e.FilePath = &filePath
			e.IsDocument = true
			e.AddedByUserID = &userID
			e.CreatedAt = s.now()
			err = repo.InsertEntry(ctx, tx, &e, repo.StatsDelta{Fonts: 1, Documents: 1})
			if err == nil {
				out, created = &e, true
				return nil
			}
			if !errors.Is(err, repo.ErrDuplicate) {
				return err
			}
			existing, err = repo.GetEntryBySlug(ctx, tx, rec.Slug)
		}
		if err != nil {
			return err
		}

		fields := metadataFields(rec, s.downloadURL(rec.Slug))
		fields["file_path"] = filePath
		fields["is_document"] = true
		if existing.AddedByUserID == nil {
			fields["added_by_user_id"] = userID
		}
		var delta repo.StatsDelta
		if !existing.IsDocument {
			delta.Documents = 1
		}
		if err := repo.UpdateEntryFields(ctx, tx, existing.ID, fields, delta); err != nil {
			return err
		}
		if existing.HasFile() && *existing.FilePath != filePath {
			replaced = *existing.FilePath
		}
		out, err = repo.GetEntryByID(ctx, tx, existing.ID)
		return err
	})
	if err != nil {
		return nil, storageErr(ctx, "record uploaded font", rec.Slug, err)
	}
	if created {
		observability.FontsIngested.WithLabelValues("upload").Inc()
	}
	if replaced != "" && s.Files != nil {
		s.Files.Remove(ctx, replaced)
	}
	return out, nil
}

// Refresh explicitly updates the metadata of rec's slug, and its file path
// when filePath is non-nil, or inserts a new non-document entry when the slug
// is unknown. Unlike discovery, refresh always overwrites.
func (s *CatalogueService) Refresh(ctx context.Context, rec domain.ExternalFontRecord, filePath *string) (entry *domain.CatalogueEntry, created bool, err error) {
	ctx, span := s.tracer().Start(ctx, "Refresh", trace.WithAttributes(attribute.String("font.slug", rec.Slug)))
	defer span.End()

	rec, err = validateRecord(rec)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var replaced string
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := repo.GetEntryBySlug(ctx, tx, rec.Slug)
		if errors.Is(err, repo.ErrNotFound) {
			e := rec.CatalogueEntry(s.downloadURL(rec.Slug))
			e.FilePath = filePath
			e.CreatedAt = s.now()
			err = repo.InsertEntry(ctx, tx, &e, repo.StatsDelta{Fonts: 1})
			if err == nil {
				entry, created = &e, true
				return nil
			}
			if !errors.Is(err, repo.ErrDuplicate) {
				return err
			}
			existing, err = repo.GetEntryBySlug(ctx, tx, rec.Slug)
		}
		if err != nil {
			return err
		}

		fields := metadataFields(rec, s.downloadURL(rec.Slug))
		if filePath != nil {
			fields["file_path"] = *filePath
			if existing.HasFile() && *existing.FilePath != *filePath {
				replaced = *existing.FilePath
			}
		}
		if err := repo.UpdateEntryFields(ctx, tx, existing.ID, fields, repo.StatsDelta{}); err != nil {
			return err
		}
		entry, err = repo.GetEntryByID(ctx, tx, existing.ID)
		return err
	})
	if err != nil {
		return nil, false, storageErr(ctx, "refresh entry", rec.Slug, err)
	}
	if created {
		observability.FontsIngested.WithLabelValues("refresh").Inc()
	}
	if replaced != "" && s.Files != nil {
		s.Files.Remove(ctx, replaced)
	}
	return entry, created, nil
}

func metadataFields(rec domain.ExternalFontRecord, downloadURL string) map[string]any {
	return map[string]any{
		"font_name":        rec.FontName,
		"designer":         rec.Designer,
		"manufacturer":     rec.Manufacturer,
		"contributor_name": rec.ContributorName,
		"url":              rec.URL,
		"download_url":     downloadURL,
	}
}

// AttachFile records a successfully fetched file for slug. Counters are not
// touched; the previous file, if different, is removed best-effort.
func (s *CatalogueService) AttachFile(ctx context.Context, slug, path string) (*domain.CatalogueEntry, error) {
	ctx, span := s.tracer().Start(ctx, "AttachFile", trace.WithAttributes(attribute.String("font.slug", slug)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		out      *domain.CatalogueEntry
		replaced string
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e, err := repo.GetEntryBySlug(ctx, tx, slug)
		if err != nil {
			return err
		}
		if err := repo.SetEntryFilePath(ctx, tx, e.ID, &path); err != nil {
			return err
		}
		if e.HasFile() && *e.FilePath != path {
			replaced = *e.FilePath
		}
		e.FilePath = &path
		out = e
		return nil
	})
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, storageErr(ctx, "attach file", slug, err)
	}
	if replaced != "" && s.Files != nil {
		s.Files.Remove(ctx, replaced)
	}
	return out, nil
}

// IncrementDownload bumps the per-entry and global download counters of the
// referenced entry atomically.
func (s *CatalogueService) IncrementDownload(ctx context.Context, ref EntryRef) (*domain.CatalogueEntry, error) {
	ctx, span := s.tracer().Start(ctx, "IncrementDownload", trace.WithAttributes(attribute.String("font.ref", ref.String())))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var out *domain.CatalogueEntry
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id := ref.ID
		if id == 0 {
			e, err := repo.GetEntryBySlug(ctx, tx, ref.Slug)
			if err != nil {
				return err
			}
			id = e.ID
		}
		e, err := repo.IncrementDownload(ctx, tx, id)
		out = e
		return err
	})
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, storageErr(ctx, "increment download", ref.String(), err)
	}
	return out, nil
}

// Download resolves slug to a deliverable file. A cached local file is served
// as is; otherwise the fetcher is asked for a fresh copy, which is attached to
// the entry. Counters move only when a file is delivered. When no file can be
// produced the result carries the direct download URL and Delivered=false.
func (s *CatalogueService) Download(ctx context.Context, slug string) (*DownloadResult, error) {
	ctx, span := s.tracer().Start(ctx, "Download", trace.WithAttributes(attribute.String("font.slug", slug)))
	defer span.End()

	e, found, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEntryNotFound
	}
	fallback := e.DownloadURL
	if fallback == "" {
		fallback = s.downloadURL(slug)
	}

	if e.HasFile() && s.Files != nil && s.Files.Exists(*e.FilePath) {
		updated, err := s.IncrementDownload(ctx, EntryRef{ID: e.ID})
		if err != nil {
			return nil, err
		}
		observability.FontDownloads.WithLabelValues("cached").Inc()
		return &DownloadResult{Entry: updated, Delivered: true, FilePath: *e.FilePath, URL: fallback}, nil
	}

	if s.Fetcher == nil {
		observability.FontDownloads.WithLabelValues("fallback").Inc()
		return &DownloadResult{Entry: e, URL: fallback}, nil
	}

	path, ferr := s.Fetcher.Fetch(ctx, slug)
	if ferr != nil {
		sysutil.Logger(ctx).Warn().Err(ferr).Str("op", "fetch font").Str("key", slug).Msg("font file unavailable, falling back to link")
		observability.FontDownloads.WithLabelValues("fallback").Inc()
		return &DownloadResult{Entry: e, URL: fallback}, nil
	}

	updated, err := s.attachAndCount(ctx, e.ID, path)
	if err != nil {
		if s.Files != nil {
			s.Files.Remove(ctx, path)
		}
		return nil, err
	}
	observability.FontDownloads.WithLabelValues("fetched").Inc()
	return &DownloadResult{Entry: updated, Delivered: true, FilePath: path, URL: fallback}, nil
}

// attachAndCount records a freshly fetched file and counts the download in
// one transaction.
func (s *CatalogueService) attachAndCount(ctx context.Context, id int64, path string) (*domain.CatalogueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		out      *domain.CatalogueEntry
		replaced string
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prev, err := repo.GetEntryByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := repo.SetEntryFilePath(ctx, tx, id, &path); err != nil {
			return err
		}
		if prev.HasFile() && *prev.FilePath != path {
			replaced = *prev.FilePath
		}
		out, err = repo.IncrementDownload(ctx, tx, id)
		return err
	})
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, storageErr(ctx, "attach fetched file", fmt.Sprint(id), err)
	}
	if replaced != "" && s.Files != nil {
		s.Files.Remove(ctx, replaced)
	}
	return out, nil
}

// Delete removes entry id and adjusts the stats row atomically. The backing
// file of an uploaded document is then deleted best-effort; fetched files of
// discovered fonts stay in the fonts directory. It reports false when the entry does not
// exist, leaving every counter unchanged.
func (s *CatalogueService) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, span := s.tracer().Start(ctx, "Delete", trace.WithAttributes(attribute.Int64("font.id", id)))
	defer span.End()

	s.mu.Lock()
	removed, err := repo.DeleteEntry(ctx, s.DB, id)
	s.mu.Unlock()

	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storageErr(ctx, "delete entry", fmt.Sprint(id), err)
	}
	observability.CatalogueDeletions.Inc()
	if removed.IsDocument && removed.HasFile() && s.Files != nil {
		s.Files.Remove(ctx, *removed.FilePath)
	}
	return true, nil
}

// DeleteBySlug resolves slug and deletes that entry.
func (s *CatalogueService) DeleteBySlug(ctx context.Context, slug string) (bool, error) {
	e, found, err := s.Get(ctx, slug)
	if err != nil || !found {
		return false, err
	}
	return s.Delete(ctx, e.ID)
}

// Search runs query against the local catalogue (substring on name or slug),
// ranks the matches by relevance and records the search in the local search
// log and the stats row.
func (s *CatalogueService) Search(ctx context.Context, userID int64, query string) ([]search.Result, error) {
	ctx, span := s.tracer().Start(ctx, "Search", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	query, err := normalizeQuery(query, s.MaxQueryRunes)
	if err != nil {
		return nil, err
	}

	matches, err := repo.SearchEntries(ctx, s.DB, query, 0)
	if err != nil {
		return nil, storageErr(ctx, "search entries", query, err)
	}
	ranked := search.Rank(query, matches)

	s.mu.Lock()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.CreateLocalSearchLog(ctx, tx, userID, query, len(ranked)); err != nil {
			return err
		}
		return repo.BumpStats(ctx, tx, repo.StatsDelta{LocalSearches: 1})
	})
	s.mu.Unlock()
	if err != nil {
		return nil, storageErr(ctx, "log local search", query, err)
	}
	observability.LocalSearches.Inc()
	span.SetAttributes(attribute.Int("results", len(ranked)))
	return ranked, nil
}

// normalizeQuery trims q and applies the emptiness and length rules shared by
// local and remote search.
func normalizeQuery(q string, maxRunes int) (string, error) {
	q = strings.Join(strings.Fields(q), " ")
	if q == "" {
		return "", ErrEmptyQuery
	}
	if maxRunes > 0 && utf8.RuneCountInString(q) > maxRunes {
		return "", ErrQueryTooLong
	}
	return q, nil
}

// Get returns the entry for slug. A missing entry is (nil, false, nil).
func (s *CatalogueService) Get(ctx context.Context, slug string) (*domain.CatalogueEntry, bool, error) {
	e, err := repo.GetEntryBySlug(ctx, s.DB, slug)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageErr(ctx, "get entry", slug, err)
	}
	return e, true, nil
}

// GetByID returns the entry with id. A missing entry is (nil, false, nil).
func (s *CatalogueService) GetByID(ctx context.Context, id int64) (*domain.CatalogueEntry, bool, error) {
	e, err := repo.GetEntryByID(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageErr(ctx, "get entry", fmt.Sprint(id), err)
	}
	return e, true, nil
}

// List returns a page of entries, newest first, plus the total entry count.
func (s *CatalogueService) List(ctx context.Context, page, pageSize int) ([]repo.EntryListing, int64, error) {
	ctx, span := s.tracer().Start(ctx, "List",
		trace.WithAttributes(attribute.Int("page", page), attribute.Int("page_size", pageSize)))
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.PageSize
		if pageSize <= 0 {
			pageSize = 20
		}
	}

	total, err := repo.CountEntries(ctx, s.DB)
	if err != nil {
		return nil, 0, storageErr(ctx, "count entries", "", err)
	}
	if total == 0 {
		return []repo.EntryListing{}, 0, nil
	}
	items, err := repo.ListEntries(ctx, s.DB, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, storageErr(ctx, "list entries", fmt.Sprint(page), err)
	}
	return items, total, nil
}

// Usage returns the age and download rate of slug's entry. The rate divides
// by at least one day.
func (s *CatalogueService) Usage(ctx context.Context, slug string) (*EntryUsage, bool, error) {
	e, found, err := s.Get(ctx, slug)
	if err != nil || !found {
		return nil, found, err
	}
	days := int(s.now().Sub(e.CreatedAt.UTC()).Hours() / 24)
	if days < 0 {
		days = 0
	}
	div := days
	if div < 1 {
		div = 1
	}
	return &EntryUsage{
		Entry:           e,
		DaysSinceAdded:  days,
		DownloadsPerDay: float64(e.DownloadCount) / float64(div),
	}, true, nil
}
