// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the local font
// catalogue (CatalogueEntry).
//
// Every function that changes the number of entries, the document flag or a
// download counter also adjusts the catalogue_stats row inside the same
// transaction. Callers that need a larger unit of work pass a transaction
// handle as db; nested Transaction calls then become savepoints.
//
// Functions:
//
//   - GetEntryBySlug / GetEntryByID -> *domain.CatalogueEntry, error
//   - ListEntries(ctx, db, limit, offset) -> []EntryListing, error
//   - InsertEntry(ctx, db, entry, delta) -> error (ErrDuplicate on slug clash)
//   - UpdateEntryFields(ctx, db, id, fields, delta) -> error
//   - SetEntryFilePath(ctx, db, id, path) -> error
//   - IncrementDownload(ctx, db, id) -> *domain.CatalogueEntry, error
//   - DeleteEntry(ctx, db, id) -> *domain.CatalogueEntry, error
//   - SearchEntries(ctx, db, query, limit) -> []domain.CatalogueEntry, error
//   - BackfillFoldKeys(ctx, db) -> int64, error
//   - CountEntries / CountDocuments -> int64, error
package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-font-catalogue/internal/domain"
)

// EntryListing is a catalogue entry with the display info of the user who
// contributed it, when that user is registered.
type EntryListing struct {
	domain.CatalogueEntry
	AddedBy *domain.User `json:"added_by,omitempty"`
}

// GetEntryBySlug fetches the entry for slug, or ErrNotFound.
func GetEntryBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.CatalogueEntry, error) {
	var e domain.CatalogueEntry
	if err := db.WithContext(ctx).First(&e, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEntryByID fetches the entry with id, or ErrNotFound.
func GetEntryByID(ctx context.Context, db *gorm.DB, id int64) (*domain.CatalogueEntry, error) {
	var e domain.CatalogueEntry
	if err := db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEntries returns a page of entries, newest first, each joined with its
// contributing user. Users are loaded with one extra query for the page.
func ListEntries(ctx context.Context, db *gorm.DB, limit, offset int) ([]EntryListing, error) {
	var entries []domain.CatalogueEntry
	q := db.WithContext(ctx).Order("created_at DESC, id DESC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(entries))
	seen := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		if e.AddedByUserID == nil {
			continue
		}
		if _, ok := seen[*e.AddedByUserID]; !ok {
			seen[*e.AddedByUserID] = struct{}{}
			ids = append(ids, *e.AddedByUserID)
		}
	}
	users := make(map[int64]*domain.User, len(ids))
	if len(ids) > 0 {
		var us []domain.User
		if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&us).Error; err != nil {
			return nil, err
		}
		for i := range us {
			users[us[i].ID] = &us[i]
		}
	}

	out := make([]EntryListing, 0, len(entries))
	for _, e := range entries {
		l := EntryListing{CatalogueEntry: e}
		if e.AddedByUserID != nil {
			l.AddedBy = users[*e.AddedByUserID]
		}
		out = append(out, l)
	}
	return out, nil
}

// InsertEntry creates e and applies delta to the stats row atomically.
// CreatedAt defaults to now and the search fold keys are derived here. A slug
// that already exists yields ErrDuplicate and leaves the stats row untouched.
func InsertEntry(ctx context.Context, db *gorm.DB, e *domain.CatalogueEntry, delta StatsDelta) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.SetFoldKeys()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(e).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return err
		}
		return BumpStats(ctx, tx, delta)
	})
}

// UpdateEntryFields updates the named columns of entry id and applies delta
// to the stats row in the same transaction. The slug, id, counters and fold
// keys are not updatable through this function; a new font_name refreshes
// name_fold.
func UpdateEntryFields(ctx context.Context, db *gorm.DB, id int64, fields map[string]any, delta StatsDelta) error {
	for _, k := range []string{"id", "slug", "download_count", "created_at", "name_fold", "slug_fold"} {
		delete(fields, k)
	}
	if name, ok := fields["font_name"].(string); ok {
		fields["name_fold"] = domain.Fold(name)
	}
	if len(fields) == 0 && delta.IsZero() {
		return nil
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			if err := tx.Model(&domain.CatalogueEntry{}).Where("id = ?", id).Updates(fields).Error; err != nil {
				return err
			}
		}
		return BumpStats(ctx, tx, delta)
	})
}

// SetEntryFilePath records the local file location for entry id. A nil path
// clears it.
func SetEntryFilePath(ctx context.Context, db *gorm.DB, id int64, path *string) error {
	return db.WithContext(ctx).
		Model(&domain.CatalogueEntry{}).
		Where("id = ?", id).
		Update("file_path", path).Error
}

// IncrementDownload bumps the entry's counter and the global total in one
// transaction and returns the updated entry. ErrNotFound leaves both
// untouched.
func IncrementDownload(ctx context.Context, db *gorm.DB, id int64) (*domain.CatalogueEntry, error) {
	var out *domain.CatalogueEntry
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.CatalogueEntry{}).
			Where("id = ?", id).
			UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := BumpStats(ctx, tx, StatsDelta{Downloads: 1}); err != nil {
			return err
		}
		e, err := GetEntryByID(ctx, tx, id)
		out = e
		return err
	})
	return out, err
}

// DeleteEntry removes entry id and takes it out of the stats row: one font,
// and one document if flagged. total_downloads counts deliveries and is left
// alone. It returns the deleted row so the caller can clean up the backing
// file, or ErrNotFound.
func DeleteEntry(ctx context.Context, db *gorm.DB, id int64) (*domain.CatalogueEntry, error) {
	var out *domain.CatalogueEntry
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e, err := GetEntryByID(ctx, tx, id)
		if err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.CatalogueEntry{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		d := StatsDelta{Fonts: -1}
		if e.IsDocument {
			d.Documents = -1
		}
		if err := BumpStats(ctx, tx, d); err != nil {
			return err
		}
		out = e
		return nil
	})
	return out, err
}

// SearchEntries returns entries whose name or slug contains query,
// case-insensitively in any script, most downloaded first. Matching runs on
// the fold keys. limit <= 0 means no limit.
func SearchEntries(ctx context.Context, db *gorm.DB, query string, limit int) ([]domain.CatalogueEntry, error) {
	var out []domain.CatalogueEntry
	pattern := "%" + escapeLike(domain.Fold(query)) + "%"
	q := db.WithContext(ctx).
		Where("name_fold LIKE ? ESCAPE '!' OR slug_fold LIKE ? ESCAPE '!'", pattern, pattern).
		Order("download_count DESC, slug ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// BackfillFoldKeys fills the fold keys of rows written before they existed.
// It returns the number of rows updated.
func BackfillFoldKeys(ctx context.Context, db *gorm.DB) (int64, error) {
	var (
		batch []domain.CatalogueEntry
		n     int64
	)
	res := db.WithContext(ctx).
		Select("id", "font_name", "slug").
		Where("slug_fold = ?", "").
		FindInBatches(&batch, 200, func(_ *gorm.DB, _ int) error {
			for i := range batch {
				e := &batch[i]
				e.SetFoldKeys()
				if err := db.WithContext(ctx).Model(&domain.CatalogueEntry{}).
					Where("id = ?", e.ID).
					UpdateColumns(map[string]any{"name_fold": e.NameFold, "slug_fold": e.SlugFold}).Error; err != nil {
					return err
				}
				n++
			}
			return nil
		})
	return n, res.Error
}

// escapeLike makes user input literal inside a LIKE pattern using '!' as the
// escape character.
func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}

// CountEntries returns the number of catalogue entries.
func CountEntries(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.CatalogueEntry{}).Count(&n).Error
	return n, err
}

// CountDocuments returns the number of entries flagged as uploaded documents.
func CountDocuments(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.CatalogueEntry{}).Where("is_document = ?", true).Count(&n).Error
	return n, err
}
