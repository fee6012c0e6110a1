// Package gcs implements storage.Backend on a public Google Cloud Storage bucket.
package gcs

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	gcstorage "cloud.google.com/go/storage"
	"github.com/google/uuid"

	"solana-token-wizard/internal/storage"
)

// DefaultPublicBaseURL serves objects from public buckets.
const DefaultPublicBaseURL = "https://storage.googleapis.com"

// Backend writes objects to a bucket and returns their public URL.
type Backend struct {
	client        *gcstorage.Client
	bucket        string
	prefix        string
	publicBaseURL string
	newID         func() string
}

// New creates a GCS backend. The bucket must allow public reads for the
// returned locators to resolve.
func New(client *gcstorage.Client, bucket, prefix string) *Backend {
	return &Backend{
		client:        client,
		bucket:        strings.TrimSpace(bucket),
		prefix:        strings.Trim(strings.TrimSpace(prefix), "/"),
		publicBaseURL: DefaultPublicBaseURL,
		newID:         uuid.NewString,
	}
}

// Name implements storage.Backend.
func (b *Backend) Name() string { return "gcs" }

// PutBlob writes binary content to files/<uuid><ext>.
func (b *Backend) PutBlob(ctx context.Context, blob storage.Blob) (string, error) {
	obj := b.objectName("files", b.newID()+path.Ext(blob.FileName))
	return b.write(ctx, obj, blob.ContentType, blob.Data)
}

// PutJSON writes a JSON document to metadata/<uuid>.json.
func (b *Backend) PutJSON(ctx context.Context, _ string, doc []byte) (string, error) {
	obj := b.objectName("metadata", b.newID()+".json")
	return b.write(ctx, obj, "application/json", doc)
}

func (b *Backend) write(ctx context.Context, obj, contentType string, data []byte) (string, error) {
	if b.client == nil || b.bucket == "" {
		return "", storage.ErrNotConfigured
	}
	if len(data) == 0 {
		return "", storage.ErrInvalidInput
	}

	w := b.client.Bucket(b.bucket).Object(obj).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	w.CacheControl = "public, max-age=31536000, immutable"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write gs://%s/%s: %w", b.bucket, obj, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close gs://%s/%s: %w", b.bucket, obj, err)
	}
	return b.PublicURL(obj), nil
}

func (b *Backend) objectName(kind, name string) string {
	if b.prefix == "" {
		return kind + "/" + name
	}
	return b.prefix + "/" + kind + "/" + name
}

// PublicURL returns the public URL of an object in the bucket.
func (b *Backend) PublicURL(obj string) string {
	segments := strings.Split(obj, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(b.publicBaseURL, "/") + "/" + b.bucket + "/" + strings.Join(segments, "/")
}

var _ storage.Backend = (*Backend)(nil)
