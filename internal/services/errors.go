// Package services defines the business logic for the font catalogue: remote
// search orchestration, catalogue ingestion, statistics and the user registry.
// This file centralizes service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// Query validation errors.
var (
	// ErrEmptyQuery is returned when a search query is blank after trimming.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrQueryTooLong is returned when a search query exceeds the configured
	// maximum rune length.
	ErrQueryTooLong = errors.New("query too long")
)

// Catalogue errors.
var (
	// ErrInvalidFont wraps a font record rejected at the ingestion boundary
	// (missing slug or name).
	ErrInvalidFont = errors.New("invalid font record")

	// ErrEntryNotFound indicates that no catalogue entry matches the slug or id.
	ErrEntryNotFound = errors.New("catalogue entry not found")

	// ErrNotFontFile is returned when an uploaded file does not carry a
	// supported font or archive extension.
	ErrNotFontFile = errors.New("not a font file")
)

// History and user errors.
var (
	// ErrSearchNotFound indicates that the remote search id does not exist.
	ErrSearchNotFound = errors.New("search not found")

	// ErrUserNotFound indicates that the user id is not registered.
	ErrUserNotFound = errors.New("user not found")

	// ErrForbidden is returned when a non-privileged identity calls an
	// administrative operation.
	ErrForbidden = errors.New("forbidden")
)
