package memory

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"solana-token-wizard/internal/storage"
)

func TestRepository_PutBlobAndGet(t *testing.T) {
	repo := NewRepository("http://localhost:8080")
	ctx := context.Background()

	locator, err := repo.PutBlob(ctx, storage.Blob{Name: "logo", ContentType: "image/png", Data: []byte("png")})
	if err != nil {
		t.Fatalf("PutBlob failed: %v", err)
	}
	if !strings.HasPrefix(locator, "http://localhost:8080/files/file_") {
		t.Errorf("unexpected locator: %s", locator)
	}

	data, contentType, err := repo.Get(locator)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != "png" {
		t.Errorf("data mismatch: got %q", data)
	}
	if contentType != "image/png" {
		t.Errorf("content type mismatch: got %s", contentType)
	}
}

func TestRepository_IdenticalInputDistinctLocators(t *testing.T) {
	repo := NewRepository("http://localhost:8080")
	ctx := context.Background()
	doc := []byte(`{"name":"Doge"}`)

	first, err := repo.PutJSON(ctx, "metadata", doc)
	if err != nil {
		t.Fatalf("first PutJSON failed: %v", err)
	}
	second, err := repo.PutJSON(ctx, "metadata", doc)
	if err != nil {
		t.Fatalf("second PutJSON failed: %v", err)
	}

	if first == second {
		t.Fatalf("expected distinct locators, got %s twice", first)
	}
	for _, loc := range []string{first, second} {
		data, _, err := repo.Get(loc)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", loc, err)
		}
		if string(data) != string(doc) {
			t.Errorf("Get(%s) = %q", loc, data)
		}
	}
}

func TestRepository_NotFound(t *testing.T) {
	repo := NewRepository("http://localhost:8080")

	_, _, err := repo.Get("http://localhost:8080/files/file_missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	_, _, err = repo.Get("https://elsewhere.example/files/x")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for foreign locator, got %v", err)
	}
}

func TestRepository_RejectsEmpty(t *testing.T) {
	repo := NewRepository("")

	if _, err := repo.PutBlob(context.Background(), storage.Blob{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	if _, err := repo.PutJSON(context.Background(), "x", nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestRepository_ServeHTTP(t *testing.T) {
	repo := NewRepository("")
	srv := httptest.NewServer(repo)
	defer srv.Close()

	// Rebind to the server address so locators are resolvable over HTTP.
	repo.baseURL = srv.URL

	locator, err := repo.PutJSON(context.Background(), "metadata", []byte(`{"a":1}`))
	if err != nil {
		t.Fatalf("PutJSON failed: %v", err)
	}

	resp, err := http.Get(locator)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"a":1}` {
		t.Errorf("body = %s", body)
	}

	missing, err := http.Get(srv.URL + "/files/nope")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", missing.StatusCode)
	}
}

func TestRepository_ConcurrentPuts(t *testing.T) {
	repo := NewRepository("http://x")
	done := make(chan string, 20)

	for i := 0; i < 20; i++ {
		go func() {
			loc, err := repo.PutBlob(context.Background(), storage.Blob{Data: []byte("x")})
			if err != nil {
				t.Errorf("PutBlob failed: %v", err)
			}
			done <- loc
		}()
	}

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		seen[<-done] = true
	}
	if len(seen) != 20 || repo.Len() != 20 {
		t.Errorf("expected 20 distinct objects, got %d locators and %d objects", len(seen), repo.Len())
	}
}
