// Package search ranks local catalogue entries against free-text queries.
// Scoring is a pure, deterministic function; the package does no I/O and no
// logging, so it is safe for concurrent use.
//
// Scoring (all comparisons case-folded):
//
//	whole name   exact 10.0, else prefix 5.0, else substring 3.0
//	tokens       per query token: equal to a name token 2.0, else a
//	             substring of a name token 1.0 (multi-word queries only)
//	designer     query is a substring 1.5
//	manufacturer query is a substring 1.0
//
// A single-word query is already fully judged by the whole-name check, so it
// earns no token bonus on top: "Roboto" scores 10 against "Roboto", not 12.
package search

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/tbourn/go-font-catalogue/internal/domain"
)

// Score weights.
const (
	ExactNameScore     = 10.0
	PrefixNameScore    = 5.0
	SubstringNameScore = 3.0
	TokenExactScore    = 2.0
	TokenPartialScore  = 1.0
	DesignerScore      = 1.5
	ManufacturerScore  = 1.0
)

// Result is a ranked catalogue entry with its relevance score.
type Result struct {
	Entry domain.CatalogueEntry `json:"entry"`
	Score float64               `json:"score"`
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	minScore float64
	limit    int
}

func defaultConfig() config {
	return config{minScore: 0, limit: 0}
}

// WithMinScore drops results scoring below s.
func WithMinScore(s float64) Option {
	return func(c *config) {
		if s >= 0 {
			c.minScore = s
		}
	}
}

// WithLimit caps the number of results. n <= 0 means no cap.
func WithLimit(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.limit = n
		}
	}
}

// ----------------------------------------------------------------------------
// Scoring

// Score returns the relevance of a font for query. Empty designer or
// manufacturer never match; an empty query scores 0.
func Score(query, fontName, designer, manufacturer string) float64 {
	fold := cases.Fold()
	q := strings.TrimSpace(fold.String(query))
	if q == "" {
		return 0
	}
	name := fold.String(fontName)

	var s float64
	switch {
	case q == name:
		s += ExactNameScore
	case strings.HasPrefix(name, q):
		s += PrefixNameScore
	case strings.Contains(name, q):
		s += SubstringNameScore
	}

	if qTokens := strings.Fields(q); len(qTokens) > 1 {
		nameTokens := strings.Fields(name)
		for _, qt := range qTokens {
			s += tokenScore(qt, nameTokens)
		}
	}

	if d := fold.String(designer); d != "" && strings.Contains(d, q) {
		s += DesignerScore
	}
	if m := fold.String(manufacturer); m != "" && strings.Contains(m, q) {
		s += ManufacturerScore
	}
	return s
}

func tokenScore(token string, nameTokens []string) float64 {
	for _, nt := range nameTokens {
		if nt == token {
			return TokenExactScore
		}
	}
	for _, nt := range nameTokens {
		if strings.Contains(nt, token) {
			return TokenPartialScore
		}
	}
	return 0
}

// Rank scores entries against query and orders them by score descending,
// then download count descending, then slug ascending, so equal inputs always
// produce the same order.
func Rank(query string, entries []domain.CatalogueEntry, opts ...Option) []Result {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	out := make([]Result, 0, len(entries))
	for _, e := range entries {
		sc := Score(query, e.FontName, e.Designer, e.Manufacturer)
		if sc < cfg.minScore {
			continue
		}
		out = append(out, Result{Entry: e, Score: sc})
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		if out[a].Entry.DownloadCount != out[b].Entry.DownloadCount {
			return out[a].Entry.DownloadCount > out[b].Entry.DownloadCount
		}
		return out[a].Entry.Slug < out[b].Entry.Slug
	})

	if cfg.limit > 0 && len(out) > cfg.limit {
		out = out[:cfg.limit]
	}
	return out
}
