// Package memory provides an in-memory storage backend.
//
// A Repository is scoped to whoever constructs it. It is never pruned, so
// it is meant for a single session, local development and tests.
package memory

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"solana-token-wizard/internal/storage"
)

const (
	filesPath    = "/files/"
	metadataPath = "/metadata/"
)

type object struct {
	contentType string
	data        []byte
}

// Repository is an in-memory implementation of storage.Backend. Locators
// are served by the Repository itself through ServeHTTP.
type Repository struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]object // keyed by path, e.g. /files/file_<id>
}

// NewRepository creates an empty repository whose locators start with baseURL.
func NewRepository(baseURL string) *Repository {
	return &Repository{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]object),
	}
}

// Name implements storage.Backend.
func (r *Repository) Name() string { return "memory" }

// PutBlob stores binary content under a fresh identifier.
func (r *Repository) PutBlob(_ context.Context, b storage.Blob) (string, error) {
	if len(b.Data) == 0 {
		return "", storage.ErrInvalidInput
	}
	contentType := b.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return r.put(filesPath+"file_"+uuid.NewString(), contentType, b.Data), nil
}

// PutJSON stores a JSON document under a fresh identifier.
func (r *Repository) PutJSON(_ context.Context, _ string, doc []byte) (string, error) {
	if len(doc) == 0 {
		return "", storage.ErrInvalidInput
	}
	return r.put(metadataPath+uuid.NewString(), "application/json", doc), nil
}

func (r *Repository) put(path, contentType string, data []byte) string {
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[path] = object{contentType: contentType, data: dataCopy}
	return r.baseURL + path
}

// Get resolves a locator previously returned by this repository.
// Returns ErrNotFound if it does not exist.
func (r *Repository) Get(locator string) ([]byte, string, error) {
	path := strings.TrimPrefix(locator, r.baseURL)
	if path == locator && r.baseURL != "" {
		return nil, "", storage.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	obj, ok := r.objects[path]
	if !ok {
		return nil, "", storage.ErrNotFound
	}
	dataCopy := make([]byte, len(obj.data))
	copy(dataCopy, obj.data)
	return dataCopy, obj.contentType, nil
}

// Len returns the number of stored objects.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}

// ServeHTTP serves stored objects at /files/{id} and /metadata/{id}.
func (r *Repository) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.mu.RLock()
	obj, ok := r.objects[req.URL.Path]
	r.mu.RUnlock()

	if !ok {
		http.NotFound(w, req)
		return
	}
	w.Header().Set("Content-Type", obj.contentType)
	w.WriteHeader(http.StatusOK)
	if req.Method == http.MethodGet {
		_, _ = w.Write(obj.data)
	}
}

var _ storage.Backend = (*Repository)(nil)
