// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for unsafe HTTP methods. It
// validates the Idempotency-Key request header and, through a lookup
// function, detects requests that already completed so handlers can serve
// the stored resource instead of repeating the work (for example, a remote
// font search that would otherwise be recorded twice).
//
// The middleware never replays a payload itself. It only marks the context:
//   - GetIdempotencyKey returns the validated key
//   - IsReplay and ReplayResource describe a prior completion
//   - the rate limiter skips replays
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header carrying the idempotency key.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotencyReplayed is set on responses served from a stored result.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

const (
	ctxKeyIdemKey      = "idem.key"
	ctxKeyIdemReplay   = "idem.replay"   // bool
	ctxKeyIdemResource = "idem.resource" // string
	ctxKeyRateBypass   = "rate.bypass"   // bool
)

// GetIdempotencyKey returns the key stored by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the lookup found a completed request for the
// same (user, route, key).
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// ReplayResource returns the resource id stored with the original request.
func ReplayResource(c *gin.Context) (string, bool) {
	if !IsReplay(c) {
		return "", false
	}
	v, _ := c.Get(ctxKeyIdemResource)
	s, _ := v.(string)
	return s, s != ""
}

// IdempotencyScope is the scope under which keys are stored for c: the
// registered route, so the same key on two endpoints never collides.
func IdempotencyScope(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}

// IdempotencyOptions configures header validation.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. Defaults to ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// IdempotencyLookup reports whether a still-valid completion exists for
// (userID, scope, key) at now, and the resource id it produced. Errors are
// logged and treated as a miss.
type IdempotencyLookup func(ctx context.Context, userID int64, scope, key string, now time.Time) (resourceID string, exists bool, err error)

// IdempotencyValidator validates Idempotency-Key on unsafe methods and
// consults lookup for prior completions.
//
//   - Safe methods and requests without the header pass through untouched.
//   - An invalid key is rejected with 400 bad_idempotency_key.
//   - A hit marks the request as a replay and bypasses rate limiting.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			res, exists, err := lookup(c.Request.Context(), UserID(c), IdempotencyScope(c), key, time.Now().UTC())
			switch {
			case err != nil:
				LoggerFrom(c).Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed")
			case exists:
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyIdemResource, res)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}
