package solana

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultPollInterval   = 500 * time.Millisecond
	DefaultConfirmTimeout = 60 * time.Second
)

// HTTPClient implements RPCClient using HTTP JSON-RPC 2.0.
// Calls are not retried.
type HTTPClient struct {
	endpoint       string
	client         *http.Client
	pollInterval   time.Duration
	confirmTimeout time.Duration
	watcher        SignatureWatcher
	observe        func(method string, seconds float64)
	requestID      atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// WithPollInterval sets the signature status polling interval.
func WithPollInterval(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.pollInterval = d
	}
}

// WithConfirmTimeout bounds ConfirmTransaction.
func WithConfirmTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.confirmTimeout = d
	}
}

// WithSignatureWatcher makes ConfirmTransaction wait on a subscription
// first. Polling is used if the subscription fails.
func WithSignatureWatcher(w SignatureWatcher) ClientOption {
	return func(c *HTTPClient) {
		c.watcher = w
	}
}

// WithObserver registers a callback receiving per-method call latency.
func WithObserver(fn func(method string, seconds float64)) ClientOption {
	return func(c *HTTPClient) {
		c.observe = fn
	}
}

// NewHTTPClient creates a new Solana RPC HTTP client.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:       endpoint,
		client:         &http.Client{Timeout: DefaultTimeout},
		pollInterval:   DefaultPollInterval,
		confirmTimeout: DefaultConfirmTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error. Preflight simulation failures
// carry the program logs in Data.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a single JSON-RPC call.
func (c *HTTPClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	if c.observe != nil {
		start := time.Now()
		defer func() { c.observe(method, time.Since(start).Seconds()) }()
	}

	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("rate limited (429)")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return nil
}

type contextValue[T any] struct {
	Context struct {
		Slot int64 `json:"slot"`
	} `json:"context"`
	Value T `json:"value"`
}

// GetBalance returns the lamport balance of an address.
func (c *HTTPClient) GetBalance(ctx context.Context, address string) (uint64, error) {
	params := []interface{}{
		address,
		map[string]interface{}{"commitment": CommitmentConfirmed},
	}

	var result contextValue[uint64]
	if err := c.call(ctx, "getBalance", params, &result); err != nil {
		return 0, err
	}
	return result.Value, nil
}

// GetLatestBlockhash returns a recent blockhash.
func (c *HTTPClient) GetLatestBlockhash(ctx context.Context) (string, error) {
	params := []interface{}{
		map[string]interface{}{"commitment": CommitmentConfirmed},
	}

	var result contextValue[struct {
		Blockhash            string `json:"blockhash"`
		LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
	}]
	if err := c.call(ctx, "getLatestBlockhash", params, &result); err != nil {
		return "", err
	}
	if result.Value.Blockhash == "" {
		return "", fmt.Errorf("empty blockhash in response")
	}
	return result.Value.Blockhash, nil
}

// GetMinimumBalanceForRentExemption returns the rent-exempt minimum for dataLen bytes.
func (c *HTTPClient) GetMinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error) {
	var result uint64
	if err := c.call(ctx, "getMinimumBalanceForRentExemption", []interface{}{dataLen}, &result); err != nil {
		return 0, err
	}
	return result, nil
}

// SendTransaction submits a signed transaction with preflight at confirmed commitment.
func (c *HTTPClient) SendTransaction(ctx context.Context, raw []byte) (string, error) {
	params := []interface{}{
		base64.StdEncoding.EncodeToString(raw),
		map[string]interface{}{
			"encoding":            "base64",
			"preflightCommitment": CommitmentConfirmed,
		},
	}

	var signature string
	if err := c.call(ctx, "sendTransaction", params, &signature); err != nil {
		return "", err
	}
	if signature == "" {
		return "", fmt.Errorf("empty signature in response")
	}
	return signature, nil
}

// GetSignatureStatus returns the status of a signature, or nil if the
// node has not seen it.
func (c *HTTPClient) GetSignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error) {
	params := []interface{}{
		[]string{signature},
		map[string]interface{}{"searchTransactionHistory": false},
	}

	var result contextValue[[]*getSignatureStatusResult]
	if err := c.call(ctx, "getSignatureStatuses", params, &result); err != nil {
		return nil, err
	}
	if len(result.Value) == 0 || result.Value[0] == nil {
		return nil, nil
	}

	r := result.Value[0]
	return &SignatureStatus{
		Slot:               r.Slot,
		Confirmations:      r.Confirmations,
		Err:                r.Err,
		ConfirmationStatus: r.ConfirmationStatus,
	}, nil
}

// getSignatureStatusResult is the raw RPC response item for getSignatureStatuses.
type getSignatureStatusResult struct {
	Slot               int64       `json:"slot"`
	Confirmations      *uint64     `json:"confirmations"`
	Err                interface{} `json:"err"`
	ConfirmationStatus Commitment  `json:"confirmationStatus"`
}

// ConfirmTransaction waits until signature reaches commitment or the
// confirmation timeout elapses.
func (c *HTTPClient) ConfirmTransaction(ctx context.Context, signature string, commitment Commitment) error {
	if c.confirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.confirmTimeout)
		defer cancel()
	}

	if c.watcher != nil {
		err := c.watcher.WaitForSignature(ctx, signature, commitment)
		var failed *TransactionFailedError
		switch {
		case err == nil, errors.As(err, &failed):
			return err
		case ctx.Err() != nil:
			return c.timeoutErr(ctx, signature)
		}
		// Subscription unavailable, poll instead.
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.GetSignatureStatus(ctx, signature)
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("get signature status: %w", err)
		}
		if status != nil {
			if status.Err != nil {
				return &TransactionFailedError{Signature: signature, Err: status.Err}
			}
			if commitment.Reached(status.ConfirmationStatus) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return c.timeoutErr(ctx, signature)
		case <-ticker.C:
		}
	}
}

func (c *HTTPClient) timeoutErr(ctx context.Context, signature string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrConfirmTimeout, signature)
	}
	return ctx.Err()
}

var _ RPCClient = (*HTTPClient)(nil)
