package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type lookupCall struct {
	userID int64
	scope  string
	key    string
}

func recordingLookup(res string, exists bool, err error, calls *[]lookupCall) IdempotencyLookup {
	return func(_ context.Context, userID int64, scope, key string, _ time.Time) (string, bool, error) {
		*calls = append(*calls, lookupCall{userID, scope, key})
		return res, exists, err
	}
}

func idemRouter(lookup IdempotencyLookup, h gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Identity(), IdempotencyValidator(IdempotencyOptions{}, lookup))
	r.POST("/api/v1/searches", h)
	r.GET("/api/v1/searches", h)
	return r
}

func TestIdempotencyHelpers_Defaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/x", nil)

	if k, ok := GetIdempotencyKey(c); k != "" || ok {
		t.Fatalf("expected no key")
	}
	if IsReplay(c) {
		t.Fatalf("expected IsReplay=false")
	}
	if _, ok := ReplayResource(c); ok {
		t.Fatalf("expected no replay resource")
	}
	if got := IdempotencyScope(c); got != "/x" {
		t.Fatalf("scope fallback = %q", got)
	}

	c.Set(ctxKeyIdemReplay, "yes")
	if IsReplay(c) {
		t.Fatalf("non-bool replay flag must read as false")
	}
}

func TestIdempotencyValidator_NoHeaderSkipsLookup(t *testing.T) {
	var calls []lookupCall
	r := idemRouter(recordingLookup("", false, nil, &calls), func(c *gin.Context) {
		if _, ok := GetIdempotencyKey(c); ok {
			t.Errorf("key should be absent")
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/searches", nil))
	if w.Code != http.StatusNoContent || len(calls) != 0 {
		t.Fatalf("code=%d calls=%d", w.Code, len(calls))
	}
}

func TestIdempotencyValidator_SafeMethodIgnoresHeader(t *testing.T) {
	var calls []lookupCall
	r := idemRouter(recordingLookup("", false, nil, &calls), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/searches", nil)
	req.Header.Set(HeaderIdempotencyKey, "bad key with spaces")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || len(calls) != 0 {
		t.Fatalf("code=%d calls=%d", w.Code, len(calls))
	}
}

func TestIdempotencyValidator_RejectsInvalidKey(t *testing.T) {
	r := idemRouter(nil, func(c *gin.Context) { t.Errorf("handler must not run") })

	for _, key := range []string{"has space", strings.Repeat("k", 201), "emoji-☃"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/searches", nil)
		req.Header.Set(HeaderIdempotencyKey, key)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "bad_idempotency_key") {
			t.Fatalf("key %q: code=%d body=%s", key, w.Code, w.Body.String())
		}
	}
}

func TestIdempotencyValidator_MissPassesScopeAndUser(t *testing.T) {
	var calls []lookupCall
	r := idemRouter(recordingLookup("", false, nil, &calls), func(c *gin.Context) {
		if k, _ := GetIdempotencyKey(c); k != "abc-123" {
			t.Errorf("key = %q", k)
		}
		if IsReplay(c) || IsRateBypass(c) {
			t.Errorf("miss must not be marked as replay")
		}
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/searches", nil)
	req.Header.Set(HeaderIdempotencyKey, "abc-123")
	req.Header.Set(HeaderUserID, "42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("code = %d", w.Code)
	}
	want := lookupCall{userID: 42, scope: "/api/v1/searches", key: "abc-123"}
	if len(calls) != 1 || calls[0] != want {
		t.Fatalf("calls = %+v", calls)
	}
}

func TestIdempotencyValidator_HitMarksReplay(t *testing.T) {
	var calls []lookupCall
	r := idemRouter(recordingLookup("17", true, nil, &calls), func(c *gin.Context) {
		res, ok := ReplayResource(c)
		if !IsReplay(c) || !IsRateBypass(c) || !ok || res != "17" {
			t.Errorf("replay=%v bypass=%v res=%q", IsReplay(c), IsRateBypass(c), res)
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/searches", nil)
	req.Header.Set(HeaderIdempotencyKey, "k1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	if calls[0].userID != 0 {
		t.Fatalf("anonymous caller should look up as user 0, got %d", calls[0].userID)
	}
}

func TestIdempotencyValidator_LookupErrorIsAMiss(t *testing.T) {
	var calls []lookupCall
	r := idemRouter(recordingLookup("9", true, errors.New("db down"), &calls), func(c *gin.Context) {
		if IsReplay(c) {
			t.Errorf("lookup error must not produce a replay")
		}
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/searches", nil)
	req.Header.Set(HeaderIdempotencyKey, "k2")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated || len(calls) != 1 {
		t.Fatalf("code=%d calls=%d", w.Code, len(calls))
	}
}
