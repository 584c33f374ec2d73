// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by every endpoint: the error
// envelope, the mapping from service errors to status and code, and thin
// success writers.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "font not found"
//	}
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-font-catalogue/internal/fontfiles"
	"github.com/tbourn/go-font-catalogue/internal/http/middleware"
	"github.com/tbourn/go-font-catalogue/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"font not found"`
}

// fail aborts the request with a structured error. Server errors (>=500) are
// logged with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failService translates a service error into the envelope. Validation and
// lookup errors keep their own codes; anything else is a 500 under
// fallbackCode with a generic message, the detail going to the log only.
func failService(c *gin.Context, err error, fallbackCode string) {
	switch {
	case errors.Is(err, services.ErrEmptyQuery):
		fail(c, http.StatusBadRequest, ErrCodeEmptyQuery, "query must not be empty")
	case errors.Is(err, services.ErrQueryTooLong):
		fail(c, http.StatusBadRequest, ErrCodeQueryTooLong, "query is too long")
	case errors.Is(err, services.ErrInvalidFont):
		fail(c, http.StatusBadRequest, ErrCodeInvalidFont, err.Error())
	case errors.Is(err, services.ErrNotFontFile), errors.Is(err, fontfiles.ErrNotFontFile):
		fail(c, http.StatusUnsupportedMediaType, ErrCodeNotFontFile, "unsupported font file type")
	case errors.Is(err, fontfiles.ErrEmptyFile):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "file is empty")
	case errors.Is(err, fontfiles.ErrTooLarge):
		fail(c, http.StatusRequestEntityTooLarge, ErrCodeFileTooLarge, "file is too large")
	case errors.Is(err, services.ErrEntryNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "font not found")
	case errors.Is(err, services.ErrSearchNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "search not found")
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
	case errors.Is(err, services.ErrForbidden):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "administrator access required")
	default:
		middleware.LoggerFrom(c).Error().Err(err).Str("code", fallbackCode).Msg("service error")
		fail(c, http.StatusInternalServerError, fallbackCode, fmt.Sprintf("%s: internal error", fallbackCode))
	}
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
