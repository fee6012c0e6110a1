// Package storage uploads token assets to pinning services and returns
// publicly resolvable locators.
package storage

import (
	"context"
)

// Blob is binary content to upload.
type Blob struct {
	// Name is the logical name used for provider-side tagging.
	Name        string
	FileName    string
	ContentType string
	Data        []byte
}

// Backend stores content and returns a fully-qualified URL for it.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// PutBlob uploads binary content.
	PutBlob(ctx context.Context, b Blob) (string, error)

	// PutJSON uploads an already-encoded JSON document.
	PutJSON(ctx context.Context, name string, doc []byte) (string, error)
}
