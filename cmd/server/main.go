// Command server runs the font catalogue HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-font-catalogue/docs" // Swagger docs

	"github.com/tbourn/go-font-catalogue/internal/config"
	"github.com/tbourn/go-font-catalogue/internal/fontapi"
	"github.com/tbourn/go-font-catalogue/internal/fontfiles"
	httpapi "github.com/tbourn/go-font-catalogue/internal/http"
	"github.com/tbourn/go-font-catalogue/internal/observability"
	"github.com/tbourn/go-font-catalogue/internal/repo"
	"github.com/tbourn/go-font-catalogue/internal/services"
	"github.com/tbourn/go-font-catalogue/internal/sysutil"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	shutdownTimeout    = 15 * time.Second
	idempotencySweepAt = time.Hour
)

// @title          Font Catalogue API
// @version        1.0
// @description    Font finder backend: a local catalogue of fonts fed by remote searches
// @description    and user uploads, with relevance-ranked local search and usage statistics.

// @contact.name   API Support
// @contact.url    https://github.com/tbourn/go-font-catalogue

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host           localhost:8080
// @BasePath       /api/v1
// @schemes        http https

// @securityDefinitions.apikey UserID
// @in header
// @name X-User-ID

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatal().Err(err).Msg("load .env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg config.Config) error {
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.Open(cfg.DB.Driver, cfg.DB.Path, cfg.DB.DSN)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := observability.InstrumentDB(db, cfg.OTEL); err != nil {
		return err
	}
	if err := repo.AutoMigrate(db); err != nil {
		return err
	}

	files, err := fontfiles.New(cfg.FontsDir, cfg.MaxUploadBytes)
	if err != nil {
		return err
	}

	var finder services.FontFinder = fontapi.NewClient(cfg.FontAPI.SearchURL, fontapi.NewHTTPClient(cfg.FontAPI.Timeout))
	rdb, err := fontapi.NewRedisClient(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("search cache disabled")
	case rdb != nil:
		defer rdb.Close()
		finder = fontapi.NewCachedFinder(finder, rdb, cfg.Cache.SearchTTL)
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{DB: db, Files: files, Finder: finder}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("version", version).Str("db", cfg.DB.Driver).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	g.Go(func() error {
		purgeIdempotency(gctx, db, idempotencySweepAt)
		return nil
	})
	return g.Wait()
}

// purgeIdempotency deletes expired idempotency records every interval until
// ctx is done.
func purgeIdempotency(ctx context.Context, db *gorm.DB, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now)
			if err != nil {
				log.Warn().Err(err).Msg("idempotency purge failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("removed", n).Msg("expired idempotency records purged")
			}
		}
	}
}
