package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// rpcServer answers JSON-RPC calls with handle's result for each method.
func rpcServer(t *testing.T, handle func(req rpcRequest) (interface{}, *RPCError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		result, rpcErr := handle(req)
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
		}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func withContext(value interface{}) map[string]interface{} {
	return map[string]interface{}{
		"context": map[string]interface{}{"slot": 100},
		"value":   value,
	}
}

func TestHTTPClient_GetBalance(t *testing.T) {
	server := rpcServer(t, func(req rpcRequest) (interface{}, *RPCError) {
		if req.Method != "getBalance" {
			t.Errorf("expected method getBalance, got %s", req.Method)
		}
		if len(req.Params) != 2 || req.Params[0] != "payer" {
			t.Errorf("unexpected params: %v", req.Params)
		}
		return withContext(uint64(2_500_000_000)), nil
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	balance, err := client.GetBalance(context.Background(), "payer")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if balance != 2_500_000_000 {
		t.Errorf("expected 2500000000, got %d", balance)
	}
}

func TestHTTPClient_GetLatestBlockhash(t *testing.T) {
	server := rpcServer(t, func(req rpcRequest) (interface{}, *RPCError) {
		return withContext(map[string]interface{}{
			"blockhash":            "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N",
			"lastValidBlockHeight": 3090,
		}), nil
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	hash, err := client.GetLatestBlockhash(context.Background())
	if err != nil {
		t.Fatalf("GetLatestBlockhash: %v", err)
	}
	if hash != "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N" {
		t.Errorf("unexpected blockhash %s", hash)
	}
}

func TestHTTPClient_GetMinimumBalanceForRentExemption(t *testing.T) {
	server := rpcServer(t, func(req rpcRequest) (interface{}, *RPCError) {
		if n, ok := req.Params[0].(float64); !ok || n != 82 {
			t.Errorf("expected data length 82, got %v", req.Params[0])
		}
		return 1461600, nil
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	rent, err := client.GetMinimumBalanceForRentExemption(context.Background(), 82)
	if err != nil {
		t.Fatalf("GetMinimumBalanceForRentExemption: %v", err)
	}
	if rent != 1461600 {
		t.Errorf("expected 1461600, got %d", rent)
	}
}

func TestHTTPClient_SendTransaction(t *testing.T) {
	raw := []byte{1, 2, 3, 4}
	server := rpcServer(t, func(req rpcRequest) (interface{}, *RPCError) {
		if req.Method != "sendTransaction" {
			t.Errorf("expected method sendTransaction, got %s", req.Method)
		}
		if req.Params[0] != base64.StdEncoding.EncodeToString(raw) {
			t.Errorf("unexpected payload %v", req.Params[0])
		}
		cfg := req.Params[1].(map[string]interface{})
		if cfg["encoding"] != "base64" || cfg["preflightCommitment"] != "confirmed" {
			t.Errorf("unexpected config %v", cfg)
		}
		return "5sig", nil
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	sig, err := client.SendTransaction(context.Background(), raw)
	if err != nil {
		t.Fatalf("SendTransaction: %v", err)
	}
	if sig != "5sig" {
		t.Errorf("expected 5sig, got %s", sig)
	}
}

func TestHTTPClient_RPCError(t *testing.T) {
	server := rpcServer(t, func(req rpcRequest) (interface{}, *RPCError) {
		return nil, &RPCError{Code: -32002, Message: "Transaction simulation failed"}
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	_, err := client.SendTransaction(context.Background(), []byte{1})

	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *RPCError, got %v", err)
	}
	if rpcErr.Code != -32002 {
		t.Errorf("expected code -32002, got %d", rpcErr.Code)
	}
}

func TestHTTPClient_NoRetryOnHTTPError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	if _, err := client.GetBalance(context.Background(), "payer"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestHTTPClient_Observer(t *testing.T) {
	server := rpcServer(t, func(req rpcRequest) (interface{}, *RPCError) {
		return withContext(uint64(1)), nil
	})
	defer server.Close()

	var observed []string
	client := NewHTTPClient(server.URL, WithObserver(func(method string, _ float64) {
		observed = append(observed, method)
	}))
	if _, err := client.GetBalance(context.Background(), "x"); err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if len(observed) != 1 || observed[0] != "getBalance" {
		t.Errorf("unexpected observations %v", observed)
	}
}

func TestHTTPClient_ConfirmTransaction_Polls(t *testing.T) {
	var polls atomic.Int32
	server := rpcServer(t, func(req rpcRequest) (interface{}, *RPCError) {
		if req.Method != "getSignatureStatuses" {
			t.Errorf("unexpected method %s", req.Method)
		}
		switch polls.Add(1) {
		case 1:
			return withContext([]interface{}{nil}), nil
		case 2:
			return withContext([]interface{}{map[string]interface{}{
				"slot": 10, "confirmations": 0, "err": nil, "confirmationStatus": "processed",
			}}), nil
		default:
			return withContext([]interface{}{map[string]interface{}{
				"slot": 10, "confirmations": 1, "err": nil, "confirmationStatus": "confirmed",
			}}), nil
		}
	})
	defer server.Close()

	client := NewHTTPClient(server.URL, WithPollInterval(5*time.Millisecond))
	if err := client.ConfirmTransaction(context.Background(), "sig", CommitmentConfirmed); err != nil {
		t.Fatalf("ConfirmTransaction: %v", err)
	}
	if polls.Load() != 3 {
		t.Errorf("expected 3 polls, got %d", polls.Load())
	}
}

func TestHTTPClient_ConfirmTransaction_ExecutionError(t *testing.T) {
	server := rpcServer(t, func(req rpcRequest) (interface{}, *RPCError) {
		return withContext([]interface{}{map[string]interface{}{
			"slot":               10,
			"err":                map[string]interface{}{"InstructionError": []interface{}{0, "InvalidAccountData"}},
			"confirmationStatus": "confirmed",
		}}), nil
	})
	defer server.Close()

	client := NewHTTPClient(server.URL, WithPollInterval(5*time.Millisecond))
	err := client.ConfirmTransaction(context.Background(), "sig", CommitmentConfirmed)

	var failed *TransactionFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected TransactionFailedError, got %v", err)
	}
	if failed.Signature != "sig" {
		t.Errorf("expected signature sig, got %s", failed.Signature)
	}
}

func TestHTTPClient_ConfirmTransaction_Timeout(t *testing.T) {
	server := rpcServer(t, func(req rpcRequest) (interface{}, *RPCError) {
		return withContext([]interface{}{nil}), nil
	})
	defer server.Close()

	client := NewHTTPClient(server.URL,
		WithPollInterval(5*time.Millisecond),
		WithConfirmTimeout(30*time.Millisecond),
	)
	err := client.ConfirmTransaction(context.Background(), "sig", CommitmentConfirmed)
	if !errors.Is(err, ErrConfirmTimeout) {
		t.Fatalf("expected ErrConfirmTimeout, got %v", err)
	}
}

type fakeWatcher struct {
	err   error
	calls int
}

func (w *fakeWatcher) WaitForSignature(context.Context, string, Commitment) error {
	w.calls++
	return w.err
}

func (w *fakeWatcher) Close() error { return nil }

func TestHTTPClient_ConfirmTransaction_UsesWatcher(t *testing.T) {
	var polls atomic.Int32
	server := rpcServer(t, func(req rpcRequest) (interface{}, *RPCError) {
		polls.Add(1)
		return withContext([]interface{}{map[string]interface{}{
			"slot": 1, "err": nil, "confirmationStatus": "finalized",
		}}), nil
	})
	defer server.Close()

	watcher := &fakeWatcher{}
	client := NewHTTPClient(server.URL, WithSignatureWatcher(watcher))
	if err := client.ConfirmTransaction(context.Background(), "sig", CommitmentConfirmed); err != nil {
		t.Fatalf("ConfirmTransaction: %v", err)
	}
	if watcher.calls != 1 || polls.Load() != 0 {
		t.Errorf("expected watcher only, got watcher=%d polls=%d", watcher.calls, polls.Load())
	}

	// A broken subscription falls back to polling.
	watcher.err = errors.New("connection lost")
	if err := client.ConfirmTransaction(context.Background(), "sig", CommitmentConfirmed); err != nil {
		t.Fatalf("ConfirmTransaction: %v", err)
	}
	if polls.Load() != 1 {
		t.Errorf("expected 1 poll after fallback, got %d", polls.Load())
	}

	// An execution error from the subscription is final.
	watcher.err = &TransactionFailedError{Signature: "sig", Err: "boom"}
	err := client.ConfirmTransaction(context.Background(), "sig", CommitmentConfirmed)
	var failed *TransactionFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected TransactionFailedError, got %v", err)
	}
	if polls.Load() != 1 {
		t.Errorf("expected no further polls, got %d", polls.Load())
	}
}

func TestCommitment_Reached(t *testing.T) {
	if !CommitmentConfirmed.Reached(CommitmentFinalized) {
		t.Error("finalized should satisfy confirmed")
	}
	if CommitmentConfirmed.Reached(CommitmentProcessed) {
		t.Error("processed should not satisfy confirmed")
	}
	if CommitmentProcessed.Reached("") {
		t.Error("empty status should not satisfy anything")
	}
}
