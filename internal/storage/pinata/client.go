// Package pinata implements storage.Backend on the Pinata IPFS pinning API.
package pinata

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
	"strconv"
	"strings"
	"time"

	"solana-token-wizard/internal/storage"
)

// Default configuration values.
const (
	DefaultAPIURL  = "https://api.pinata.cloud"
	DefaultGateway = "https://gateway.pinata.cloud/ipfs/"
	DefaultTimeout = 60 * time.Second
)

// Tag values sent in pinataMetadata.keyvalues.type.
const (
	tagImage    = "token-image"
	tagMetadata = "token-metadata"
)

// Client uploads files and JSON documents to Pinata.
type Client struct {
	jwt     string
	apiURL  string
	gateway string
	client  *http.Client
	logger  *log.Logger
	now     func() time.Time
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithAPIURL overrides the API base URL.
func WithAPIURL(u string) ClientOption {
	return func(c *Client) {
		c.apiURL = strings.TrimRight(u, "/")
	}
}

// WithGateway overrides the gateway prefix used to build locators.
func WithGateway(g string) ClientOption {
	return func(c *Client) {
		if !strings.HasSuffix(g, "/") {
			g += "/"
		}
		c.gateway = g
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a Pinata client authenticated with a JWT.
func New(jwt string, opts ...ClientOption) *Client {
	c := &Client{
		jwt:     strings.TrimSpace(jwt),
		apiURL:  DefaultAPIURL,
		gateway: DefaultGateway,
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  log.New(io.Discard, "", 0),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements storage.Backend.
func (c *Client) Name() string { return "pinata" }

type pinMetadata struct {
	Name      string            `json:"name"`
	KeyValues map[string]string `json:"keyvalues"`
}

type pinOptions struct {
	CIDVersion        int  `json:"cidVersion"`
	WrapWithDirectory bool `json:"wrapWithDirectory"`
}

type pinJSONRequest struct {
	PinataContent  json.RawMessage `json:"pinataContent"`
	PinataMetadata pinMetadata     `json:"pinataMetadata"`
	PinataOptions  pinOptions      `json:"pinataOptions"`
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

func (c *Client) metadata(name, tag string) pinMetadata {
	return pinMetadata{
		Name: name,
		KeyValues: map[string]string{
			"type":      tag,
			"timestamp": strconv.FormatInt(c.now().UnixMilli(), 10),
		},
	}
}

// PutBlob pins a file with a multipart upload.
func (c *Client) PutBlob(ctx context.Context, b storage.Blob) (string, error) {
	if c.jwt == "" {
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

	meta, err := json.Marshal(c.metadata(b.Name, tagImage))
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	if err := mw.WriteField("pinataMetadata", string(meta)); err != nil {
		return "", fmt.Errorf("write metadata field: %w", err)
	}
	options, err := json.Marshal(pinOptions{CIDVersion: 1})
	if err != nil {
		return "", fmt.Errorf("marshal options: %w", err)
	}
	if err := mw.WriteField("pinataOptions", string(options)); err != nil {
		return "", fmt.Errorf("write options field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	return c.pin(ctx, "/pinning/pinFileToIPFS", mw.FormDataContentType(), &body)
}

// PutJSON pins a JSON document.
func (c *Client) PutJSON(ctx context.Context, name string, doc []byte) (string, error) {
	if c.jwt == "" {
		return "", storage.ErrNotConfigured
	}
	if !json.Valid(doc) {
		return "", fmt.Errorf("%w: document is not valid JSON", storage.ErrInvalidInput)
	}

	body, err := json.Marshal(pinJSONRequest{
		PinataContent:  doc,
		PinataMetadata: c.metadata(name, tagMetadata),
		PinataOptions:  pinOptions{CIDVersion: 1},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	return c.pin(ctx, "/pinning/pinJSONToIPFS", "application/json", bytes.NewReader(body))
}

func (c *Client) pin(ctx context.Context, path, contentType string, body io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.jwt)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var pr pinResponse
	if err := json.Unmarshal(respBody, &pr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if pr.IpfsHash == "" {
		return "", fmt.Errorf("response has empty IpfsHash")
	}

	c.logger.Printf("pinned %s (%d bytes)", pr.IpfsHash, pr.PinSize)
	return c.gateway + pr.IpfsHash, nil
}

// TestAuthentication checks that the JWT is accepted.
func (c *Client) TestAuthentication(ctx context.Context) error {
	if c.jwt == "" {
		return storage.ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/data/testAuthentication", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.jwt)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("authentication failed: status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

var _ storage.Backend = (*Client)(nil)
