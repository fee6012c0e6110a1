package solana

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// signatureServer confirms one subscription and sends a notification whose
// value.err is txErr.
func signatureServer(t *testing.T, txErr interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer c.Close()

		_, msg, err := c.ReadMessage()
		if err != nil {
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			t.Errorf("unmarshal request: %v", err)
			return
		}
		if req.Method != "signatureSubscribe" {
			t.Errorf("expected signatureSubscribe, got %s", req.Method)
		}
		if req.Params[0] != "testsig" {
			t.Errorf("expected testsig, got %v", req.Params[0])
		}

		subID := int64(0) // some nodes start at zero
		if err := c.WriteJSON(wsSubscribeResponse{JSONRPC: "2.0", ID: req.ID, Result: &subID}); err != nil {
			t.Errorf("write response: %v", err)
			return
		}

		notif := wsNotification{
			JSONRPC: "2.0",
			Method:  "signatureNotification",
			Params: &wsNotificationParams{
				Subscription: subID,
				Result: wsNotificationResult{
					Context: &wsContext{Slot: 100},
					Value:   wsSignatureValue{Err: txErr},
				},
			},
		}
		if err := c.WriteJSON(notif); err != nil {
			t.Errorf("write notification: %v", err)
			return
		}

		// Keep connection open
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWSClient_WaitForSignature(t *testing.T) {
	server := signatureServer(t, nil)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := NewWSClient(ctx, wsURL(server), nil)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	if err := client.WaitForSignature(ctx, "testsig", CommitmentConfirmed); err != nil {
		t.Fatalf("WaitForSignature: %v", err)
	}
}

func TestWSClient_WaitForSignature_ExecutionError(t *testing.T) {
	server := signatureServer(t, map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}})
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := NewWSClient(ctx, wsURL(server), nil)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	err = client.WaitForSignature(ctx, "testsig", CommitmentConfirmed)
	var failed *TransactionFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected TransactionFailedError, got %v", err)
	}
}

func TestWSClient_ConnectionLost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// Read the subscribe request, then drop the connection.
		c.ReadMessage()
		c.Close()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := NewWSClient(ctx, wsURL(server), nil)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	if err := client.WaitForSignature(ctx, "testsig", CommitmentConfirmed); err == nil {
		t.Fatal("expected error after connection loss")
	}
}

func TestWSClient_Close(t *testing.T) {
	server := signatureServer(t, nil)
	defer server.Close()

	client, err := NewWSClient(context.Background(), wsURL(server), nil)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}

	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Second close is a no-op
	if err := client.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := client.WaitForSignature(context.Background(), "testsig", CommitmentConfirmed); err == nil {
		t.Error("expected error on closed client")
	}
}
