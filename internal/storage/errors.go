package storage

import "errors"

// Storage errors.
var (
	// ErrNotFound is returned when a requested object does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured is returned by a backend that lacks credentials or an endpoint.
	ErrNotConfigured = errors.New("storage backend not configured")

	// ErrAllBackendsFailed is returned when every tier of the fallback chain failed.
	ErrAllBackendsFailed = errors.New("all storage backends failed")

	// ErrInvalidLocator is returned when an inline locator cannot be decoded.
	ErrInvalidLocator = errors.New("invalid inline locator")
)
