// Package irys implements storage.Backend on an Irys (Arweave) upload service.
package irys

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"solana-token-wizard/internal/storage"
)

// DefaultGateway resolves Irys transaction ids.
const DefaultGateway = "https://gateway.irys.xyz/"

// Uploader talks to an HTTP upload service that exposes /upload/file and
// /upload/json and answers with {"uri": ...} or {"id": ...}.
type Uploader struct {
	client  *http.Client
	baseURL string
	apiKey  string
	gateway string
	logger  *log.Logger
}

// Options configures an Uploader.
type Options struct {
	BaseURL string
	APIKey  string
	Gateway string
	Timeout time.Duration
	Logger  *log.Logger
}

// NewUploader creates an Irys uploader.
func NewUploader(opts Options) *Uploader {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	gateway := opts.Gateway
	if gateway == "" {
		gateway = DefaultGateway
	}
	if !strings.HasSuffix(gateway, "/") {
		gateway += "/"
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Uploader{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		apiKey:  opts.APIKey,
		gateway: gateway,
		logger:  logger,
	}
}

// Name implements storage.Backend.
func (u *Uploader) Name() string { return "irys" }

// PutBlob uploads a file as multipart form data.
func (u *Uploader) PutBlob(ctx context.Context, b storage.Blob) (string, error) {
	if u.baseURL == "" {
		return "", storage.ErrNotConfigured
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fileName := b.FileName
	if fileName == "" {
		fileName = b.Name
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	if b.ContentType != "" {
		header.Set("Content-Type", b.ContentType)
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(b.Data); err != nil {
		return "", fmt.Errorf("write file part: %w", err)
	}
	if err := mw.WriteField("name", b.Name); err != nil {
		return "", fmt.Errorf("write name field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	u.logger.Printf("upload file start name=%s len=%d", b.Name, len(b.Data))
	return u.post(ctx, "/upload/file", mw.FormDataContentType(), &body)
}

// PutJSON uploads an encoded JSON document.
func (u *Uploader) PutJSON(ctx context.Context, name string, doc []byte) (string, error) {
	if u.baseURL == "" {
		return "", storage.ErrNotConfigured
	}
	if len(doc) == 0 {
		return "", fmt.Errorf("%w: document is empty", storage.ErrInvalidInput)
	}

	u.logger.Printf("upload json start name=%s len=%d", name, len(doc))
	return u.post(ctx, "/upload/json", "application/json", bytes.NewReader(doc))
}

func (u *Uploader) post(ctx context.Context, path, contentType string, body io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+path, body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if u.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.apiKey)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		u.logger.Printf("http request FAILED err=%v", err)
		return "", fmt.Errorf("upload to irys: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		u.logger.Printf("upload FAILED status=%d body=%s", resp.StatusCode, string(bodyBytes))
		return "", fmt.Errorf("upload failed: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var res struct {
		URI string `json:"uri"`
		ID  string `json:"id"`
	}
	if err := json.Unmarshal(bodyBytes, &res); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}

	switch {
	case res.URI != "":
		u.logger.Printf("upload OK uri=%s", res.URI)
		return res.URI, nil
	case res.ID != "":
		uri := u.gateway + res.ID
		u.logger.Printf("upload OK uri=%s", uri)
		return uri, nil
	default:
		return "", fmt.Errorf("upload response has empty uri")
	}
}

var _ storage.Backend = (*Uploader)(nil)
