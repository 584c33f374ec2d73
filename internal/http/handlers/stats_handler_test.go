package handlers

import (
	"net/http"
	"testing"

	"github.com/tbourn/go-font-catalogue/internal/domain"
	"github.com/tbourn/go-font-catalogue/internal/services"
)

func TestGetStats_Overview(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 3, 7)
	env.finder.recs = []domain.ExternalFontRecord{{Slug: "lato", FontName: "Lato"}}

	env.do(t, http.MethodPost, "/searches", 7, CreateSearchRequest{Query: "lato"})
	env.upload(t, uploadRequest(t, 3, "Arial.ttf", []byte("glyphs"), ""))
	env.do(t, http.MethodGet, "/local-search?q=arial", 7, nil)
	env.do(t, http.MethodGet, "/local-search?q=arial", 3, nil)
	env.do(t, http.MethodPost, "/fonts/arial/download", 7, nil)

	w := env.do(t, http.MethodGet, "/stats", testAdminID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	ov := decode[services.Overview](t, w)
	if ov.Users != 2 || ov.RemoteSearches != 1 || ov.Entries != 2 || ov.Documents != 1 {
		t.Fatalf("overview=%+v", ov)
	}
	if ov.Catalogue == nil || ov.Catalogue.TotalFonts != 2 || ov.Catalogue.TotalDocuments != 1 ||
		ov.Catalogue.TotalDownloads != 1 || ov.Catalogue.LocalSearches != 2 {
		t.Fatalf("catalogue=%+v", ov.Catalogue)
	}
	if ov.LocalSearch == nil || ov.LocalSearch.TotalSearches != 2 || ov.LocalSearch.DistinctUsers != 2 {
		t.Fatalf("local=%+v", ov.LocalSearch)
	}
}

func TestGetStats_RequiresAdministrator(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 7)

	expectError(t, env.do(t, http.MethodGet, "/stats", 0, nil), http.StatusUnauthorized, ErrCodeUnauthorized)
	expectError(t, env.do(t, http.MethodGet, "/stats", 7, nil), http.StatusForbidden, ErrCodeForbidden)
	expectError(t, env.do(t, http.MethodPost, "/stats/rebuild", 7, nil), http.StatusForbidden, ErrCodeForbidden)
}

func TestRebuildStats_RepairsCounters(t *testing.T) {
	env := newTestEnv(t)
	env.seedEntry(t, "arial", "Arial")
	env.seedEntry(t, "lato", "Lato")

	if err := env.db.Model(&domain.CatalogueStats{}).Where("id = ?", domain.StatsRowID).Update("total_fonts", 99).Error; err != nil {
		t.Fatalf("corrupt stats: %v", err)
	}

	w := env.do(t, http.MethodPost, "/stats/rebuild", testAdminID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	st := decode[domain.CatalogueStats](t, w)
	if st.TotalFonts != 2 || st.TotalDocuments != 0 {
		t.Fatalf("stats=%+v", st)
	}
}
