package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tbourn/go-font-catalogue/internal/domain"
	"github.com/tbourn/go-font-catalogue/internal/http/middleware"
	"github.com/tbourn/go-font-catalogue/internal/repo"
	"github.com/tbourn/go-font-catalogue/internal/services"
)

func TestCreateSearch_IngestsRemoteFonts(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 7)
	env.finder.recs = []domain.ExternalFontRecord{
		{Slug: "open-sans", FontName: "Open Sans", Designer: "Steve Matteson"},
		{Slug: "", FontName: "No Slug"},
	}

	w := env.do(t, http.MethodPost, "/searches", 7, CreateSearchRequest{Query: "  open   sans "})
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	out := decode[services.SearchOutcome](t, w)
	if out.QueryID == 0 || out.Query != "open sans" {
		t.Fatalf("outcome=%+v", out)
	}
	if len(out.Fonts) != 1 || out.NewEntries != 1 || out.Skipped != 1 {
		t.Fatalf("fonts=%d new=%d skipped=%d", len(out.Fonts), out.NewEntries, out.Skipped)
	}

	// the discovered font is now in the catalogue
	if w := env.do(t, http.MethodGet, "/fonts/open-sans", 0, nil); w.Code != http.StatusOK {
		t.Fatalf("catalogue lookup status=%d", w.Code)
	}
}

func TestCreateSearch_RemoteFailureStillRecords(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 7)
	env.finder.err = errors.New("upstream down")

	w := env.do(t, http.MethodPost, "/searches", 7, CreateSearchRequest{Query: "lato"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	out := decode[services.SearchOutcome](t, w)
	if out.QueryID == 0 || len(out.Fonts) != 0 {
		t.Fatalf("outcome=%+v", out)
	}
}

func TestCreateSearch_Validation(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 7)

	expectError(t, env.do(t, http.MethodPost, "/searches", 0, CreateSearchRequest{Query: "x"}), http.StatusUnauthorized, ErrCodeUnauthorized)
	expectError(t, env.do(t, http.MethodPost, "/searches", 7, map[string]string{}), http.StatusBadRequest, ErrCodeEmptyQuery)
	expectError(t, env.do(t, http.MethodPost, "/searches", 7, CreateSearchRequest{Query: "   "}), http.StatusBadRequest, ErrCodeEmptyQuery)
	expectError(t, env.do(t, http.MethodPost, "/searches", 7, CreateSearchRequest{Query: strings.Repeat("a", 65)}), http.StatusBadRequest, ErrCodeQueryTooLong)

	if env.finder.calls != 0 {
		t.Fatalf("finder called %d times for invalid input", env.finder.calls)
	}
}

func TestCreateSearch_IdempotentReplay(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 7)
	env.finder.recs = []domain.ExternalFontRecord{{Slug: "lato", FontName: "Lato"}}
	key := uuid.NewString()

	first := env.do(t, http.MethodPost, "/searches", 7, CreateSearchRequest{Query: "lato"}, middleware.HeaderIdempotencyKey, key)
	if first.Code != http.StatusCreated {
		t.Fatalf("first status=%d body=%s", first.Code, first.Body.String())
	}
	out := decode[services.SearchOutcome](t, first)

	second := env.do(t, http.MethodPost, "/searches", 7, CreateSearchRequest{Query: "lato"}, middleware.HeaderIdempotencyKey, key)
	if second.Code != http.StatusOK {
		t.Fatalf("replay status=%d body=%s", second.Code, second.Body.String())
	}
	if second.Header().Get(middleware.HeaderIdempotencyReplayed) != "true" {
		t.Fatalf("missing %s header", middleware.HeaderIdempotencyReplayed)
	}
	d := decode[repo.SearchDetails](t, second)
	if d.Search.ID != out.QueryID || len(d.Fonts) != 1 {
		t.Fatalf("replayed=%+v", d)
	}
	if env.finder.calls != 1 {
		t.Fatalf("finder calls=%d, want 1", env.finder.calls)
	}

	// the same key from another user is a fresh request
	env.register(t, 8)
	third := env.do(t, http.MethodPost, "/searches", 8, CreateSearchRequest{Query: "lato"}, middleware.HeaderIdempotencyKey, key)
	if third.Code != http.StatusCreated {
		t.Fatalf("other user status=%d", third.Code)
	}
}

func TestGetSearch_OwnerAdminAndOthers(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 7, 8)
	env.finder.recs = []domain.ExternalFontRecord{{Slug: "lato", FontName: "Lato"}}

	out := decode[services.SearchOutcome](t, env.do(t, http.MethodPost, "/searches", 7, CreateSearchRequest{Query: "lato"}))
	path := "/searches/" + strconv.FormatInt(out.QueryID, 10)

	w := env.do(t, http.MethodGet, path, 7, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("owner status=%d body=%s", w.Code, w.Body.String())
	}
	d := decode[repo.SearchDetails](t, w)
	if d.User == nil || d.User.ID != 7 || d.Search.Query != "lato" {
		t.Fatalf("details=%+v", d)
	}

	if w := env.do(t, http.MethodGet, path, testAdminID, nil); w.Code != http.StatusOK {
		t.Fatalf("admin status=%d", w.Code)
	}
	expectError(t, env.do(t, http.MethodGet, path, 8, nil), http.StatusForbidden, ErrCodeForbidden)
	expectError(t, env.do(t, http.MethodGet, path, 0, nil), http.StatusUnauthorized, ErrCodeUnauthorized)
	expectError(t, env.do(t, http.MethodGet, "/searches/999", 7, nil), http.StatusNotFound, ErrCodeNotFound)
	expectError(t, env.do(t, http.MethodGet, "/searches/abc", 7, nil), http.StatusBadRequest, ErrCodeBadRequest)
}

func TestListSearches_AdminOnlyWithLimit(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 7)
	for _, q := range []string{"a", "b", "c"} {
		if w := env.do(t, http.MethodPost, "/searches", 7, CreateSearchRequest{Query: q}); w.Code != http.StatusCreated {
			t.Fatalf("seed %s status=%d", q, w.Code)
		}
	}

	expectError(t, env.do(t, http.MethodGet, "/searches", 7, nil), http.StatusForbidden, ErrCodeForbidden)

	w := env.do(t, http.MethodGet, "/searches?limit=2", testAdminID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	resp := decode[ListSearchesResponse](t, w)
	if len(resp.Searches) != 2 {
		t.Fatalf("len=%d", len(resp.Searches))
	}
}
