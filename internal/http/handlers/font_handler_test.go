package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/tbourn/go-font-catalogue/internal/fontfiles"
	"github.com/tbourn/go-font-catalogue/internal/services"
)

func TestListFonts_Paginated(t *testing.T) {
	env := newTestEnv(t)
	env.seedEntry(t, "arial", "Arial")
	env.seedEntry(t, "roboto", "Roboto")
	env.seedEntry(t, "lato", "Lato")

	w := env.do(t, http.MethodGet, "/fonts?page=1&page_size=2", 0, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	resp := decode[ListFontsResponse](t, w)
	if len(resp.Fonts) != 2 {
		t.Fatalf("len=%d", len(resp.Fonts))
	}
	if resp.Pagination.Total != 3 || resp.Pagination.TotalPages != 2 || !resp.Pagination.HasNext {
		t.Fatalf("pagination=%+v", resp.Pagination)
	}
}

func TestGetFont_FoundAndMissing(t *testing.T) {
	env := newTestEnv(t)
	env.seedEntry(t, "arial", "Arial")

	w := env.do(t, http.MethodGet, "/fonts/arial", 0, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"font_name":"Arial"`) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	expectError(t, env.do(t, http.MethodGet, "/fonts/nope", 0, nil), http.StatusNotFound, ErrCodeNotFound)
	expectError(t, env.do(t, http.MethodGet, "/fonts/nope/usage", 0, nil), http.StatusNotFound, ErrCodeNotFound)
}

func TestFontUsage_OK(t *testing.T) {
	env := newTestEnv(t)
	env.seedEntry(t, "arial", "Arial")

	w := env.do(t, http.MethodGet, "/fonts/arial/usage", 0, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	u := decode[services.EntryUsage](t, w)
	if u.Entry == nil || u.Entry.Slug != "arial" || u.DaysSinceAdded != 0 || u.DownloadsPerDay != 0 {
		t.Fatalf("usage=%+v", u)
	}
}

func TestDownloadFont_FallsBackToLink(t *testing.T) {
	env := newTestEnv(t)
	env.seedEntry(t, "arial", "Arial")

	w := env.do(t, http.MethodPost, "/fonts/arial/download", 0, nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	res := decode[services.DownloadResult](t, w)
	if res.Delivered || !strings.Contains(res.URL, "arial") {
		t.Fatalf("result=%+v", res)
	}
	if res.Entry == nil || res.Entry.DownloadCount != 0 {
		t.Fatalf("undelivered download must not count: %+v", res.Entry)
	}
	if got := w.Header().Get(HeaderDownloadCount); got != "" {
		t.Fatalf("unexpected %s=%q", HeaderDownloadCount, got)
	}
}

func TestDownloadFont_DeliversStoredFile(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 3)
	ctx := context.Background()

	path, err := env.store.Save(ctx, "Arial.ttf", strings.NewReader("glyphs"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := env.catalogue.RecordUploadedFont(ctx, 3, fontfiles.DeriveRecord("Arial.ttf", ""), path); err != nil {
		t.Fatalf("record: %v", err)
	}

	w := env.do(t, http.MethodPost, "/fonts/arial/download", 0, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got := w.Header().Get(HeaderDownloadCount); got != "1" {
		t.Fatalf("%s=%q", HeaderDownloadCount, got)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "arial.ttf") {
		t.Fatalf("content-disposition=%q", cd)
	}
	if w.Body.String() != "glyphs" {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestDownloadFont_UnknownSlug(t *testing.T) {
	env := newTestEnv(t)
	expectError(t, env.do(t, http.MethodPost, "/fonts/ghost/download", 0, nil), http.StatusNotFound, ErrCodeNotFound)
}

func TestRefreshFont_CreateThenUpdate(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/fonts/new-font/refresh", testAdminID, RefreshFontRequest{FontName: "New Font"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	first := decode[RefreshFontResponse](t, w)
	if !first.Created || first.Entry.FontName != "New Font" || first.Entry.IsDocument {
		t.Fatalf("created=%+v", first)
	}

	w = env.do(t, http.MethodPost, "/fonts/new-font/refresh", testAdminID, RefreshFontRequest{FontName: "Renamed", Designer: "Ann"})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	second := decode[RefreshFontResponse](t, w)
	if second.Created || second.Entry.FontName != "Renamed" || second.Entry.Designer != "Ann" {
		t.Fatalf("updated=%+v", second)
	}
}

func TestRefreshFont_Validation(t *testing.T) {
	env := newTestEnv(t)

	expectError(t, env.do(t, http.MethodPost, "/fonts/x/refresh", testAdminID, map[string]string{}), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, env.do(t, http.MethodPost, "/fonts/x/refresh", 0, RefreshFontRequest{FontName: "X"}), http.StatusUnauthorized, ErrCodeUnauthorized)

	env.register(t, 5)
	expectError(t, env.do(t, http.MethodPost, "/fonts/x/refresh", 5, RefreshFontRequest{FontName: "X"}), http.StatusForbidden, ErrCodeForbidden)
}

func TestDeleteFont_Privileges(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 5)
	env.seedEntry(t, "arial", "Arial")

	expectError(t, env.do(t, http.MethodDelete, "/fonts/arial", 0, nil), http.StatusUnauthorized, ErrCodeUnauthorized)
	expectError(t, env.do(t, http.MethodDelete, "/fonts/arial", 5, nil), http.StatusForbidden, ErrCodeForbidden)

	w := env.do(t, http.MethodDelete, "/fonts/arial", testAdminID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	expectError(t, env.do(t, http.MethodDelete, "/fonts/arial", testAdminID, nil), http.StatusNotFound, ErrCodeNotFound)
	expectError(t, env.do(t, http.MethodGet, "/fonts/arial", 0, nil), http.StatusNotFound, ErrCodeNotFound)
}

func TestLocalSearch_RanksAndPaginates(t *testing.T) {
	env := newTestEnv(t)
	env.seedEntry(t, "arial-black", "Arial Black")
	env.seedEntry(t, "arial", "Arial")
	env.seedEntry(t, "arial-bold", "Arial Bold")
	env.seedEntry(t, "roboto", "Roboto")

	w := env.do(t, http.MethodGet, "/local-search?q=arial", 0, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	page1 := decode[LocalSearchResponse](t, w)
	if len(page1.Results) != 2 || page1.Results[0].Entry.Slug != "arial" {
		t.Fatalf("page1=%+v", page1.Results)
	}
	if page1.Pagination.Total != 3 || page1.Pagination.TotalPages != 2 || !page1.Pagination.HasNext {
		t.Fatalf("pagination=%+v", page1.Pagination)
	}

	w = env.do(t, http.MethodGet, "/local-search?q=arial&page=2", 0, nil)
	page2 := decode[LocalSearchResponse](t, w)
	if len(page2.Results) != 1 || page2.Pagination.HasNext {
		t.Fatalf("page2=%+v", page2)
	}

	w = env.do(t, http.MethodGet, "/local-search?q=arial&page=9", 0, nil)
	if got := decode[LocalSearchResponse](t, w); len(got.Results) != 0 {
		t.Fatalf("past the end: %+v", got.Results)
	}
}

func TestLocalSearch_QueryErrors(t *testing.T) {
	env := newTestEnv(t)

	expectError(t, env.do(t, http.MethodGet, "/local-search?q=%20%20", 0, nil), http.StatusBadRequest, ErrCodeEmptyQuery)
	expectError(t, env.do(t, http.MethodGet, "/local-search", 0, nil), http.StatusBadRequest, ErrCodeEmptyQuery)
}
