// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller's chat identity. The chat front end forwards
// the numeric user id in X-User-ID; the service trusts it as given and only
// distinguishes privileged identities from the rest.
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderUserID carries the numeric chat user id of the caller.
const HeaderUserID = "X-User-ID"

// ctxKeyUserID is the Gin context key holding the caller id (int64).
const ctxKeyUserID = "userID"

// PrivilegeCheck reports whether userID may call administrative routes.
type PrivilegeCheck func(ctx context.Context, userID int64) (bool, error)

// Identity parses X-User-ID into the Gin context. A missing header leaves the
// caller anonymous (id 0); a malformed one is rejected with 400.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if raw == "" {
			c.Next()
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_request",
				"message":    "X-User-ID must be a positive integer",
			})
			return
		}
		c.Set(ctxKeyUserID, id)
		c.Next()
	}
}

// UserID returns the caller id set by Identity, or 0 for anonymous callers.
func UserID(c *gin.Context) int64 {
	if v, ok := c.Get(ctxKeyUserID); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// RequirePrivileged aborts with 401 for anonymous callers and 403 for
// callers check rejects.
func RequirePrivileged(check PrivilegeCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.Writer.Header().Get(requestIDHeader)
		uid := UserID(c)
		if uid == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": rid,
				"code":       "unauthorized",
				"message":    "X-User-ID required",
			})
			return
		}
		ok, err := check(c.Request.Context(), uid)
		if err != nil {
			LoggerFrom(c).Error().Err(err).Int64("user_id", uid).Msg("privilege check failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": rid,
				"code":       "internal_error",
				"message":    "internal server error",
			})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"request_id": rid,
				"code":       "forbidden",
				"message":    "administrator access required",
			})
			return
		}
		c.Next()
	}
}
