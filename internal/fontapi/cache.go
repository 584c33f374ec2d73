package fontapi

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tbourn/go-font-catalogue/internal/domain"
	"github.com/tbourn/go-font-catalogue/internal/observability"
	"github.com/tbourn/go-font-catalogue/internal/sysutil"
)

// DefaultCacheTTL is how long a cached search response stays valid.
const DefaultCacheTTL = 10 * time.Minute

const cacheKeyPrefix = "fontcat:search:"

// Finder is anything that can answer a remote font search.
type Finder interface {
	Search(ctx context.Context, query string) ([]domain.ExternalFontRecord, error)
}

// CachedFinder serves repeated searches from Redis. Cache failures are
// logged and the search falls through to Next; failed or empty remote
// answers are never cached.
type CachedFinder struct {
	Next  Finder
	Redis redis.UniversalClient
	TTL   time.Duration
}

// NewCachedFinder wraps next with a Redis cache.
func NewCachedFinder(next Finder, rdb redis.UniversalClient, ttl time.Duration) *CachedFinder {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedFinder{Next: next, Redis: rdb, TTL: ttl}
}

// CacheKey normalizes query into its cache key: case-folded, with runs of
// whitespace collapsed.
func CacheKey(query string) string {
	return cacheKeyPrefix + strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// Search implements Finder.
func (c *CachedFinder) Search(ctx context.Context, query string) ([]domain.ExternalFontRecord, error) {
	key := CacheKey(query)
	log := sysutil.Logger(ctx)

	raw, err := c.Redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var recs []domain.ExternalFontRecord
		if jerr := json.Unmarshal(raw, &recs); jerr == nil {
			observability.RemoteSearches.WithLabelValues("cache_hit").Inc()
			return recs, nil
		}
		log.Warn().Str("op", "cache decode").Str("key", key).Msg("discarding corrupt cache entry")
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("op", "cache get").Str("key", key).Msg("search cache unavailable")
	}

	recs, err := c.Next.Search(ctx, query)
	if err != nil || len(recs) == 0 {
		return recs, err
	}

	if b, jerr := json.Marshal(recs); jerr == nil {
		if serr := c.Redis.Set(ctx, key, b, c.TTL).Err(); serr != nil {
			log.Warn().Err(serr).Str("op", "cache set").Str("key", key).Msg("search cache unavailable")
		}
	}
	return recs, nil
}

// NewRedisClient connects to addr and verifies the connection. An empty
// addr disables caching and returns nil.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
