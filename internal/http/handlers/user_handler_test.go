package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tbourn/go-font-catalogue/internal/domain"
	"github.com/tbourn/go-font-catalogue/internal/http/middleware"
)

func TestRegisterUser_CreateAndRefresh(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/users", 9, RegisterUserRequest{Handle: "@ann", DisplayName: "Ann"})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	u := decode[domain.User](t, w)
	if u.ID != 9 || u.Handle != "@ann" || u.IsAdmin {
		t.Fatalf("user=%+v", u)
	}

	w = env.do(t, http.MethodPost, "/users", 9, RegisterUserRequest{Handle: "@ann2"})
	if got := decode[domain.User](t, w); got.Handle != "@ann2" || !got.RegisteredAt.Equal(u.RegisteredAt) {
		t.Fatalf("refreshed=%+v first=%+v", got, u)
	}
}

func TestRegisterUser_EmptyBodyAndErrors(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(t, http.MethodPost, "/users", 9, nil); w.Code != http.StatusOK {
		t.Fatalf("empty body status=%d body=%s", w.Code, w.Body.String())
	}
	expectError(t, env.do(t, http.MethodPost, "/users", 0, nil), http.StatusUnauthorized, ErrCodeUnauthorized)

	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderUserID, "9")
	w := httptest.NewRecorder()
	env.r.ServeHTTP(w, req)
	expectError(t, w, http.StatusBadRequest, ErrCodeBadRequest)
}

func TestSetUserAdmin_GrantAndRevoke(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 8)

	expectError(t, env.do(t, http.MethodGet, "/stats", 8, nil), http.StatusForbidden, ErrCodeForbidden)

	yes, no := true, false
	if w := env.do(t, http.MethodPut, "/users/8/admin", testAdminID, SetAdminRequest{Admin: &yes}); w.Code != http.StatusNoContent {
		t.Fatalf("grant status=%d body=%s", w.Code, w.Body.String())
	}
	if w := env.do(t, http.MethodGet, "/stats", 8, nil); w.Code != http.StatusOK {
		t.Fatalf("granted stats status=%d", w.Code)
	}

	if w := env.do(t, http.MethodPut, "/users/8/admin", testAdminID, SetAdminRequest{Admin: &no}); w.Code != http.StatusNoContent {
		t.Fatalf("revoke status=%d", w.Code)
	}
	expectError(t, env.do(t, http.MethodGet, "/stats", 8, nil), http.StatusForbidden, ErrCodeForbidden)
}

func TestSetUserAdmin_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 8)
	yes := true

	expectError(t, env.do(t, http.MethodPut, "/users/404/admin", testAdminID, SetAdminRequest{Admin: &yes}), http.StatusNotFound, ErrCodeNotFound)
	expectError(t, env.do(t, http.MethodPut, "/users/8/admin", testAdminID, map[string]string{}), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, env.do(t, http.MethodPut, "/users/x/admin", testAdminID, SetAdminRequest{Admin: &yes}), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, env.do(t, http.MethodPut, "/users/8/admin", 8, SetAdminRequest{Admin: &yes}), http.StatusForbidden, ErrCodeForbidden)
}

func TestListUsers_WithSearchCounts(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 7, 8)
	env.do(t, http.MethodPost, "/searches", 7, CreateSearchRequest{Query: "lato"})
	env.do(t, http.MethodPost, "/searches", 7, CreateSearchRequest{Query: "arial"})

	w := env.do(t, http.MethodGet, "/users", testAdminID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	resp := decode[ListUsersResponse](t, w)
	if len(resp.Users) != 2 {
		t.Fatalf("users=%+v", resp.Users)
	}
	for _, u := range resp.Users {
		want := int64(0)
		if u.ID == 7 {
			want = 2
		}
		if u.SearchCount != want {
			t.Fatalf("user %d searches=%d want %d", u.ID, u.SearchCount, want)
		}
	}
}

func TestUserHistory_SelfOrPrivileged(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 7, 8)
	env.finder.recs = []domain.ExternalFontRecord{{Slug: "lato", FontName: "Lato"}}
	env.do(t, http.MethodPost, "/searches", 7, CreateSearchRequest{Query: "first"})
	env.do(t, http.MethodPost, "/searches", 7, CreateSearchRequest{Query: "second"})

	w := env.do(t, http.MethodGet, "/users/7/history", 7, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	resp := decode[HistoryResponse](t, w)
	if resp.UserID != 7 || len(resp.Searches) != 2 || resp.Searches[0].Query != "second" {
		t.Fatalf("history=%+v", resp)
	}
	if len(resp.Searches[0].Fonts) != 1 {
		t.Fatalf("history must carry found fonts: %+v", resp.Searches[0])
	}

	if w := env.do(t, http.MethodGet, "/users/7/history?limit=1", testAdminID, nil); len(decode[HistoryResponse](t, w).Searches) != 1 {
		t.Fatalf("admin limited history body=%s", w.Body.String())
	}
	expectError(t, env.do(t, http.MethodGet, "/users/7/history", 8, nil), http.StatusForbidden, ErrCodeForbidden)
	expectError(t, env.do(t, http.MethodGet, "/users/0/history", 7, nil), http.StatusBadRequest, ErrCodeBadRequest)
}
