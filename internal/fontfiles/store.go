// Package fontfiles manages the font files kept on local disk: uploaded
// documents and archives fetched from the download service. Files are stored
// flat in one directory under uuid-prefixed names so two fonts with the same
// original name never collide.
package fontfiles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tbourn/go-font-catalogue/internal/domain"
	"github.com/tbourn/go-font-catalogue/internal/sysutil"
)

var (
	// ErrNotFontFile is returned by Save for names without a font or archive
	// extension.
	ErrNotFontFile = errors.New("unsupported font file extension")
	// ErrEmptyFile is returned by Save when the reader produced no bytes.
	ErrEmptyFile = errors.New("empty font file")
	// ErrTooLarge is returned by Save when the content exceeds MaxBytes.
	ErrTooLarge = errors.New("font file too large")
)

var fontExtensions = map[string]struct{}{
	".ttf":   {},
	".otf":   {},
	".woff":  {},
	".woff2": {},
	".eot":   {},
	".zip":   {},
	".rar":   {},
}

// IsFontFile reports whether name carries a supported font or archive
// extension (case-insensitive).
func IsFontFile(name string) bool {
	_, ok := fontExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Store is a directory of font files.
type Store struct {
	Dir string
	// MaxBytes caps a single file (0 disables).
	MaxBytes int64
}

// New returns a Store rooted at dir, creating the directory when missing.
func New(dir string, maxBytes int64) (*Store, error) {
	if dir == "" {
		return nil, errors.New("fontfiles: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("fontfiles: create %s: %w", dir, err)
	}
	return &Store{Dir: dir, MaxBytes: maxBytes}, nil
}

// Save copies r into a new file named "<uuid>_<base of name>" and returns
// its path. Empty or oversized content is rejected and the partial file is
// removed.
func (s *Store) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || !IsFontFile(base) {
		return "", ErrNotFontFile
	}
	path := filepath.Join(s.Dir, uuid.NewString()+"_"+base)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("fontfiles: create %s: %w", path, err)
	}

	src := r
	if s.MaxBytes > 0 {
		src = io.LimitReader(r, s.MaxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	switch {
	case err != nil:
		err = fmt.Errorf("fontfiles: write %s: %w", path, err)
	case n == 0:
		err = ErrEmptyFile
	case s.MaxBytes > 0 && n > s.MaxBytes:
		err = ErrTooLarge
	}
	if err != nil {
		s.Remove(ctx, path)
		return "", err
	}

	sysutil.Logger(ctx).Debug().Str("path", path).Int64("bytes", n).Msg("font file stored")
	return path, nil
}

// Remove deletes path. Failures are logged and swallowed; a missing file is
// not a failure.
func (s *Store) Remove(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		sysutil.Logger(ctx).Warn().Err(err).Str("op", "remove file").Str("key", path).Msg("font file not removed")
	}
}

// Exists reports whether path is an existing regular file.
func (s *Store) Exists(path string) bool {
	if path == "" {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// DeriveRecord builds the catalogue record for an uploaded document: the
// font name is the file stem, the slug its lower-cased form with spaces
// replaced by dashes.
func DeriveRecord(fileName, contributor string) domain.ExternalFontRecord {
	base := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	name := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	slug := strings.ToLower(strings.Join(strings.Fields(name), "-"))
	return domain.ExternalFontRecord{
		Slug:            slug,
		FontName:        name,
		ContributorName: strings.TrimSpace(contributor),
	}
}
