package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSClientConfig configures WebSocket client behavior.
type WSClientConfig struct {
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// SubscribeTimeout bounds the wait for a subscription id.
	SubscribeTimeout time.Duration
	// Logger receives connection errors. Nil discards them.
	Logger *log.Logger
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSClientConfig {
	return WSClientConfig{
		PingInterval:     30 * time.Second,
		ReadTimeout:      60 * time.Second,
		WriteTimeout:     10 * time.Second,
		SubscribeTimeout: 30 * time.Second,
	}
}

// signatureResult is delivered once per signature subscription.
type signatureResult struct {
	err interface{}
}

type pendingSub struct {
	confirm chan error
	notify  chan signatureResult
}

// WSClient implements SignatureWatcher using gorilla/websocket.
// It does not reconnect. Once the connection drops every waiter fails and
// callers fall back to polling.
type WSClient struct {
	endpoint string
	config   WSClientConfig
	logger   *log.Logger

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// subs maps subscription ID to the waiter's channel
	subs   map[int64]chan signatureResult
	subsMu sync.Mutex

	// pendingSubs maps request ID to a subscription awaiting its ID
	pendingSubs   map[uint64]*pendingSub
	pendingSubsMu sync.Mutex

	// done signals shutdown, broken signals a dead connection
	done       chan struct{}
	broken     chan struct{}
	brokenOnce sync.Once
	wg         sync.WaitGroup
}

// NewWSClient creates a new WebSocket client and connects to the endpoint.
func NewWSClient(ctx context.Context, endpoint string, config *WSClientConfig) (*WSClient, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	c := &WSClient{
		endpoint:    endpoint,
		config:      cfg,
		logger:      logger,
		subs:        make(map[int64]chan signatureResult),
		pendingSubs: make(map[uint64]*pendingSub),
		done:        make(chan struct{}),
		broken:      make(chan struct{}),
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	c.conn = conn

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// WaitForSignature subscribes to a signature and waits for its notification.
func (c *WSClient) WaitForSignature(ctx context.Context, signature string, commitment Commitment) error {
	if c.closed.Load() {
		return fmt.Errorf("client closed")
	}

	reqID := c.requestID.Add(1)
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "signatureSubscribe",
		Params: []interface{}{
			signature,
			map[string]interface{}{"commitment": commitment},
		},
	}

	pending := &pendingSub{
		confirm: make(chan error, 1),
		notify:  make(chan signatureResult, 1),
	}
	c.pendingSubsMu.Lock()
	c.pendingSubs[reqID] = pending
	c.pendingSubsMu.Unlock()

	removePending := func() {
		c.pendingSubsMu.Lock()
		delete(c.pendingSubs, reqID)
		c.pendingSubsMu.Unlock()
	}

	c.connMu.Lock()
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	err := c.conn.WriteJSON(req)
	c.connMu.Unlock()
	if err != nil {
		removePending()
		return fmt.Errorf("write subscribe: %w", err)
	}

	select {
	case err := <-pending.confirm:
		if err != nil {
			return err
		}
	case <-time.After(c.config.SubscribeTimeout):
		removePending()
		return fmt.Errorf("subscription timeout after %s", c.config.SubscribeTimeout)
	case <-c.broken:
		removePending()
		return fmt.Errorf("connection lost")
	case <-c.done:
		return fmt.Errorf("client closed")
	case <-ctx.Done():
		removePending()
		return ctx.Err()
	}

	select {
	case res := <-pending.notify:
		if res.err != nil {
			return &TransactionFailedError{Signature: signature, Err: res.err}
		}
		return nil
	case <-c.broken:
		return fmt.Errorf("connection lost")
	case <-c.done:
		return fmt.Errorf("client closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the WebSocket connection.
func (c *WSClient) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}

	close(c.done)

	c.connMu.Lock()
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.conn.Close()
	c.connMu.Unlock()

	c.wg.Wait()
	return nil
}

// readLoop reads messages until the connection fails or the client closes.
func (c *WSClient) readLoop() {
	defer c.wg.Done()

	for !c.closed.Load() {
		c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if !c.closed.Load() {
				c.logger.Printf("read failed: %v", err)
			}
			c.brokenOnce.Do(func() { close(c.broken) })
			return
		}

		c.handleMessage(message)
	}
}

// handleMessage processes incoming WebSocket message.
func (c *WSClient) handleMessage(message []byte) {
	var notif wsNotification
	if err := json.Unmarshal(message, &notif); err == nil && notif.Method == "signatureNotification" {
		c.handleSignatureNotification(&notif)
		return
	}

	var resp wsSubscribeResponse
	if err := json.Unmarshal(message, &resp); err == nil && resp.ID > 0 {
		c.handleSubscribeResponse(&resp)
	}
}

// handleSubscribeResponse registers the waiter under its subscription ID
// before releasing it, so an immediate notification is not lost.
func (c *WSClient) handleSubscribeResponse(resp *wsSubscribeResponse) {
	c.pendingSubsMu.Lock()
	pending, ok := c.pendingSubs[resp.ID]
	if ok {
		delete(c.pendingSubs, resp.ID)
	}
	c.pendingSubsMu.Unlock()

	if !ok {
		return
	}
	if resp.Error != nil {
		c.logger.Printf("subscribe error: code=%d msg=%s", resp.Error.Code, resp.Error.Message)
		pending.confirm <- resp.Error
		return
	}
	if resp.Result == nil {
		pending.confirm <- fmt.Errorf("subscribe response without id")
		return
	}

	c.subsMu.Lock()
	c.subs[*resp.Result] = pending.notify
	c.subsMu.Unlock()

	pending.confirm <- nil
}

// handleSignatureNotification dispatches the notification to its waiter.
// Signature subscriptions end after one notification.
func (c *WSClient) handleSignatureNotification(notif *wsNotification) {
	if notif.Params == nil {
		return
	}

	c.subsMu.Lock()
	ch, ok := c.subs[notif.Params.Subscription]
	delete(c.subs, notif.Params.Subscription)
	c.subsMu.Unlock()

	if ok {
		ch <- signatureResult{err: notif.Params.Result.Value.Err}
	}
}

// pingLoop sends periodic ping frames to keep connection alive.
func (c *WSClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-c.broken:
			return
		case <-ticker.C:
			c.connMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Printf("ping failed: %v", err)
			}
			c.connMu.Unlock()
		}
	}
}

// WebSocket message types

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type wsSubscribeResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      uint64    `json:"id"`
	Result  *int64    `json:"result"` // subscription ID
	Error   *RPCError `json:"error,omitempty"`
}

type wsNotification struct {
	JSONRPC string                `json:"jsonrpc"`
	Method  string                `json:"method"`
	Params  *wsNotificationParams `json:"params"`
}

type wsNotificationParams struct {
	Subscription int64                `json:"subscription"`
	Result       wsNotificationResult `json:"result"`
}

type wsNotificationResult struct {
	Context *wsContext       `json:"context"`
	Value   wsSignatureValue `json:"value"`
}

type wsContext struct {
	Slot int64 `json:"slot"`
}

type wsSignatureValue struct {
	Err interface{} `json:"err"`
}

var _ SignatureWatcher = (*WSClient)(nil)
