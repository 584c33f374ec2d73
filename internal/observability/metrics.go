package observability

import "github.com/prometheus/client_golang/prometheus"

// Domain counters for the font catalogue. Label values are fixed sets, never
// slugs or queries, to keep cardinality bounded.
var (
	// FontsIngested counts new catalogue entries by source
	// ("search", "upload", "refresh").
	FontsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fontcat_fonts_ingested_total",
			Help: "Catalogue entries created, by ingestion source.",
		},
		[]string{"source"},
	)

	// FontDownloads counts download requests by outcome
	// ("cached", "fetched", "fallback").
	FontDownloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fontcat_font_downloads_total",
			Help: "Font download requests, by outcome.",
		},
		[]string{"outcome"},
	)

	// CatalogueDeletions counts removed catalogue entries.
	CatalogueDeletions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fontcat_catalogue_deletions_total",
			Help: "Catalogue entries deleted by administrators.",
		},
	)

	// LocalSearches counts searches against the local catalogue.
	LocalSearches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fontcat_local_searches_total",
			Help: "Searches run against the local catalogue.",
		},
	)

	// RemoteSearches counts remote API lookups by outcome
	// ("ok", "empty", "error", "cache_hit").
	RemoteSearches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fontcat_remote_searches_total",
			Help: "Remote font API lookups, by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(FontsIngested, FontDownloads, CatalogueDeletions, LocalSearches, RemoteSearches)
}
