// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, caller identity, logging/redaction, panic
// recovery, metrics, compression, CORS, security headers, idempotency, and
// rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-font-catalogue/internal/config"
	"github.com/tbourn/go-font-catalogue/internal/domain"
	"github.com/tbourn/go-font-catalogue/internal/fontapi"
	"github.com/tbourn/go-font-catalogue/internal/fontfiles"
	"github.com/tbourn/go-font-catalogue/internal/http/handlers"
	"github.com/tbourn/go-font-catalogue/internal/http/middleware"
	"github.com/tbourn/go-font-catalogue/internal/repo"
	"github.com/tbourn/go-font-catalogue/internal/services"
)

// multipartOverhead is added to MaxUploadBytes for the global body cap so the
// multipart envelope around a maximum-size file still fits.
const multipartOverhead = 1 << 20

// userRepoShim adapts the repository free functions to the services.UserRepo
// interface expected by the UserService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type userRepoShim struct{}

// UpsertUser proxies repo.UpsertUser.
func (userRepoShim) UpsertUser(ctx context.Context, db *gorm.DB, id int64, handle, displayName string) (*domain.User, error) {
	return repo.UpsertUser(ctx, db, id, handle, displayName)
}

// GetUser proxies repo.GetUser.
func (userRepoShim) GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	return repo.GetUser(ctx, db, id)
}

// SetAdmin proxies repo.SetAdmin.
func (userRepoShim) SetAdmin(ctx context.Context, db *gorm.DB, id int64, isAdmin bool) error {
	return repo.SetAdmin(ctx, db, id, isAdmin)
}

// IsAdmin proxies repo.IsAdmin.
func (userRepoShim) IsAdmin(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	return repo.IsAdmin(ctx, db, id)
}

// ListUsers proxies repo.ListUsers.
func (userRepoShim) ListUsers(ctx context.Context, db *gorm.DB) ([]repo.UserWithSearches, error) {
	return repo.ListUsers(ctx, db)
}

// CountUsers proxies repo.CountUsers.
func (userRepoShim) CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountUsers(ctx, db)
}

// CountAdmins proxies repo.CountAdmins.
func (userRepoShim) CountAdmins(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountAdmins(ctx, db)
}

// idempotencyStore backs both halves of idempotent POSTs with the
// idempotency table: the middleware lookup and the handler's record.
type idempotencyStore struct {
	db  *gorm.DB
	ttl time.Duration
}

// Lookup reports the resource stored for (userID, scope, key).
func (s idempotencyStore) Lookup(ctx context.Context, userID int64, scope, key string, now time.Time) (string, bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.db, userID, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.ResourceID, true, nil
}

// Record stores the outcome of a completed request. A concurrent duplicate
// is not an error: the first writer wins.
func (s idempotencyStore) Record(ctx context.Context, userID int64, scope, key, resourceID string, status int) error {
	_, err := repo.CreateIdempotency(ctx, s.db, userID, scope, key, resourceID, status, s.ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

// Deps carries the collaborators built by the caller. Files may be nil, in
// which case uploads are disabled and downloads always fall back to the link;
// Finder may be nil, in which case remote searches record the query only.
type Deps struct {
	DB     *gorm.DB
	Files  *fontfiles.Store
	Finder services.FontFinder
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), identity,
// idempotency and rate limiting, CORS and security headers, health, metrics
// and docs endpoints, and then mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Identity: X-User-ID (read by the logger and the limiter)
//  4. Logger: structured logs with PII scrubbing
//  5. Recovery: capture panics after logger
//  6. Body size limiter
//  7. Compression
//  8. Metrics
//  9. Idempotency validator (before rate limiter to allow bypass on replay)
//  10. Rate limiter (per user/IP, bypass on replay)
//  11. CORS and Security headers
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	db := deps.DB
	idem := idempotencyStore{db: db, ttl: cfg.IdempotencyTTL}

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Caller identity
	r.Use(middleware.Identity())

	// 4) Structured logging with redaction
	r.Use(middleware.Logger(middleware.LogOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))

	// 5) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 6) Global body size limit (largest upload plus multipart envelope)
	r.Use(limitBody(cfg.MaxUploadBytes + multipartOverhead))

	// 7) Compress JSON; font files are already compressed
	r.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/metrics"}),
		gzip.WithExcludedPathsRegexs([]string{`/download$`}),
	))

	// 8) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 9) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, idem.Lookup))

	// 10) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP(), "/health", "/metrics")
	r.Use(rl.Handler())

	// 11) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderUserID, middleware.HeaderIdempotencyKey}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "Content-Disposition",
		middleware.HeaderIdempotencyReplayed, handlers.HeaderDownloadCount}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:        cfg.Security.EnableHSTS,
		HSTSMaxAge:        cfg.Security.HSTSMaxAge,
		NoStore:           true,
		EnablePolicy:      true,
		CacheablePrefixes: []string{"/swagger/"},
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/files/remote
	var (
		store   services.FileStore
		saver   handlers.FileSaver
		fetcher services.FileFetcher
	)
	if deps.Files != nil {
		store, saver = deps.Files, deps.Files
		fetcher = fontapi.NewFetcher(cfg.FontAPI.DownloadURL, deps.Files, fontapi.NewHTTPClient(cfg.FontAPI.Timeout))
	}
	catSvc := services.NewCatalogueService(db, store, fetcher)
	catSvc.DownloadURLTemplate = cfg.FontAPI.DownloadURL
	catSvc.MaxQueryRunes = cfg.MaxQueryRunes

	searchSvc := &services.SearchService{
		DB:            db,
		Finder:        deps.Finder,
		Catalogue:     catSvc,
		MaxQueryRunes: cfg.MaxQueryRunes,
	}
	userSvc := services.NewUserService(db, userRepoShim{}, cfg.AdminIDs)
	statsSvc := &services.StatsService{DB: db, Writer: catSvc.WriteLock()}

	h := handlers.New(catSvc, searchSvc, userSvc, statsSvc, saver, idem, handlers.Options{
		FontsPerPage:   cfg.FontsPerPage,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	admin := middleware.RequirePrivileged(userSvc.IsPrivileged)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Catalogue
		api.GET("/fonts", h.ListFonts)
		api.GET("/fonts/:slug", h.GetFont)
		api.GET("/fonts/:slug/usage", h.FontUsage)
		api.POST("/fonts/:slug/download", h.DownloadFont)
		api.POST("/fonts/:slug/refresh", admin, h.RefreshFont)
		api.DELETE("/fonts/:slug", admin, h.DeleteFont)
		api.GET("/local-search", h.LocalSearch)

		// Remote search
		api.POST("/searches", h.CreateSearch)
		api.GET("/searches", admin, h.ListSearches)
		api.GET("/searches/:id", h.GetSearch)

		// Users
		api.POST("/users", h.RegisterUser)
		api.GET("/users", admin, h.ListUsers)
		api.PUT("/users/:id/admin", admin, h.SetUserAdmin)
		api.GET("/users/:id/history", h.UserHistory)

		// Documents
		api.POST("/documents", h.UploadDocument)

		// Statistics
		api.GET("/stats", admin, h.GetStats)
		api.POST("/stats/rebuild", admin, h.RebuildStats)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
