// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// These codes are the machine-readable half of every error envelope (see
// fail in response.go). Generic codes mirror HTTP status semantics; the
// domain codes name the catalogue operation that failed so chat front ends
// can pick a user-facing reply without parsing messages.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "not_font_file",
//	  "message": "unsupported file type \".exe\""
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeEmptyQuery     = "empty_query"
	ErrCodeQueryTooLong   = "query_too_long"
	ErrCodeInvalidFont    = "invalid_font"
	ErrCodeNotFontFile    = "not_font_file"
	ErrCodeFileTooLarge   = "file_too_large"
	ErrCodeSearchFailed   = "search_failed"
	ErrCodeDownloadFailed = "download_failed"
	ErrCodeUploadFailed   = "upload_failed"
	ErrCodeListFailed     = "list_failed"
	ErrCodeUpdateFailed   = "update_failed"
	ErrCodeDeleteFailed   = "delete_failed"
	ErrCodeStatsFailed    = "stats_failed"
)
