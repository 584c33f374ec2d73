package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// secServe runs req through SecurityHeaders with headers preset by an
// upstream middleware and returns the response headers.
func secServe(opt SecurityOptions, preset map[string]string, req *http.Request) http.Header {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		for k, v := range preset {
			c.Header(k, v)
		}
		c.Next()
	})
	r.Use(SecurityHeaders(opt))
	r.Any("/*path", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Header()
}

func get(path string) *http.Request { return httptest.NewRequest(http.MethodGet, path, nil) }

func TestSecurityHeaders_Baseline(t *testing.T) {
	h := secServe(SecurityOptions{}, nil, get("/api/v1/fonts"))

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
	}
	for k, v := range want {
		if h.Get(k) != v {
			t.Errorf("%s = %q, want %q", k, h.Get(k), v)
		}
	}
	for _, k := range []string{"Permissions-Policy", "Cache-Control", "Strict-Transport-Security", "Access-Control-Expose-Headers"} {
		if h.Get(k) != "" {
			t.Errorf("unexpected %s = %q", k, h.Get(k))
		}
	}
}

func TestSecurityHeaders_ExposesRequestID(t *testing.T) {
	cases := []struct {
		name   string
		expose string
		want   string
	}{
		{"none yet", "", "X-Request-ID"},
		{"appended", "X-Download-Count", "X-Download-Count, X-Request-ID"},
		{"already listed", "X-Request-ID, Content-Disposition", "X-Request-ID, Content-Disposition"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			preset := map[string]string{"X-Request-ID": "rid-1"}
			if tc.expose != "" {
				preset["Access-Control-Expose-Headers"] = tc.expose
			}
			h := secServe(SecurityOptions{}, preset, get("/fonts"))
			if got := h.Get("Access-Control-Expose-Headers"); got != tc.want {
				t.Fatalf("expose = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSecurityHeaders_PolicyAndNoStore(t *testing.T) {
	opt := SecurityOptions{NoStore: true, EnablePolicy: true, CacheablePrefixes: []string{"/swagger/"}}

	h := secServe(opt, nil, get("/api/v1/stats"))
	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatalf("policy headers missing: %v", h)
	}
	if h.Get("Cache-Control") != "no-store" || h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0" {
		t.Fatalf("cache headers missing: %v", h)
	}

	if got := secServe(opt, nil, get("/swagger/index.html")).Get("Cache-Control"); got != "" {
		t.Fatalf("docs should stay cacheable, got %q", got)
	}
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	viaTLS := get("/")
	viaTLS.TLS = &tls.ConnectionState{}
	viaProxy := get("/")
	viaProxy.Header.Set("X-Forwarded-Proto", "HTTPS")

	cases := []struct {
		name string
		opt  SecurityOptions
		req  *http.Request
		want string
	}{
		{"tls", SecurityOptions{EnableHSTS: true, HSTSMaxAge: 24 * time.Hour}, viaTLS, "max-age=86400; includeSubDomains; preload"},
		{"forwarded", SecurityOptions{EnableHSTS: true}, viaProxy, "max-age=15552000; includeSubDomains; preload"},
		{"plain http", SecurityOptions{EnableHSTS: true}, get("/"), ""},
		{"disabled", SecurityOptions{}, viaProxy, ""},
	}
	for _, tc := range cases {
		if got := secServe(tc.opt, nil, tc.req).Get("Strict-Transport-Security"); got != tc.want {
			t.Errorf("%s: HSTS = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func Test_hasAnyPrefix(t *testing.T) {
	if hasAnyPrefix("/fonts", nil) || hasAnyPrefix("/fonts", []string{""}) {
		t.Fatal("empty prefixes must not match")
	}
	if !hasAnyPrefix("/swagger/doc.json", []string{"/docs/", "/swagger/"}) {
		t.Fatal("expected prefix match")
	}
}
