package domain

import (
	"errors"
	"strings"
)

// ErrInvalidFontRecord is returned by ExternalFontRecord.Validate when a
// required field is missing.
var ErrInvalidFontRecord = errors.New("invalid font record")

// DefaultDownloadURLTemplate is the download location used when no template is
// configured. "{slug}" is replaced with the font slug.
const DefaultDownloadURLTemplate = "https://font.download/dl/font/{slug}.zip"

// ExternalFontRecord is one candidate font returned by the remote search API
// (or derived from an uploaded document). Slug and FontName are required;
// everything else is optional and defaults to the empty string.
type ExternalFontRecord struct {
	Slug            string `json:"slug"`
	FontName        string `json:"font_name"`
	Designer        string `json:"designer,omitempty"`
	Manufacturer    string `json:"manufacturer,omitempty"`
	ContributorName string `json:"user_fullname,omitempty"`
	URL             string `json:"url,omitempty"`
}

// Normalize trims surrounding whitespace from every field.
func (r ExternalFontRecord) Normalize() ExternalFontRecord {
	return ExternalFontRecord{
		Slug:            strings.TrimSpace(r.Slug),
		FontName:        strings.TrimSpace(r.FontName),
		Designer:        strings.TrimSpace(r.Designer),
		Manufacturer:    strings.TrimSpace(r.Manufacturer),
		ContributorName: strings.TrimSpace(r.ContributorName),
		URL:             strings.TrimSpace(r.URL),
	}
}

// Validate checks the required fields of a normalized record.
func (r ExternalFontRecord) Validate() error {
	switch {
	case r.Slug == "":
		return errors.Join(ErrInvalidFontRecord, errors.New("slug is required"))
	case r.FontName == "":
		return errors.Join(ErrInvalidFontRecord, errors.New("font_name is required"))
	case strings.ContainsAny(r.Slug, " \t\r\n/\\"):
		return errors.Join(ErrInvalidFontRecord, errors.New("slug must not contain whitespace or path separators"))
	}
	return nil
}

// DownloadURL expands tmpl for the record's slug, falling back to
// DefaultDownloadURLTemplate when tmpl is empty.
func DownloadURL(tmpl, slug string) string {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultDownloadURLTemplate
	}
	return strings.ReplaceAll(tmpl, "{slug}", slug)
}

// FoundFont converts the record into a FoundFont row for the given search.
func (r ExternalFontRecord) FoundFont(queryID int64, downloadURL string) FoundFont {
	return FoundFont{
		SearchQueryID:   queryID,
		FontName:        r.FontName,
		Slug:            r.Slug,
		Designer:        r.Designer,
		Manufacturer:    r.Manufacturer,
		ContributorName: r.ContributorName,
		URL:             r.URL,
		DownloadURL:     downloadURL,
	}
}

// CatalogueEntry converts the record into a new, not yet persisted entry.
func (r ExternalFontRecord) CatalogueEntry(downloadURL string) CatalogueEntry {
	return CatalogueEntry{
		FontName:        r.FontName,
		Slug:            r.Slug,
		Designer:        r.Designer,
		Manufacturer:    r.Manufacturer,
		ContributorName: r.ContributorName,
		URL:             r.URL,
		DownloadURL:     downloadURL,
	}
}
