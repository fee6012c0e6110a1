package stub

import (
	"context"
	"errors"
	"sync"

	"github.com/mr-tron/base58"

	"solana-token-wizard/internal/solana"
)

// Stub defaults.
const (
	DefaultBlockhash = "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N"
	DefaultRent      = uint64(1_461_600) // rent-exempt minimum of an 82-byte mint
)

// ErrMalformedTransaction is returned for a raw transaction without a signature.
var ErrMalformedTransaction = errors.New("malformed transaction")

// RPCClient implements solana.RPCClient for testing. It records every call
// and can inject failures per method.
type RPCClient struct {
	mu sync.Mutex

	Balances  map[string]uint64
	Blockhash string
	Rent      uint64

	// Sent holds raw transactions accepted by SendTransaction, in order.
	Sent [][]byte

	// Calls counts invocations per RPC method name.
	Calls map[string]int

	// Fail injects an error for a method name.
	Fail map[string]error

	// SendHook, when set, is consulted for every SendTransaction call before
	// it is recorded. n is one more than the number of accepted transactions.
	SendHook func(n int, raw []byte) error

	// Failed marks signatures that land with an execution error.
	Failed map[string]interface{}
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Balances:  make(map[string]uint64),
		Blockhash: DefaultBlockhash,
		Rent:      DefaultRent,
		Calls:     make(map[string]int),
		Fail:      make(map[string]error),
		Failed:    make(map[string]interface{}),
	}
}

func (c *RPCClient) enter(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls[method]++
	return c.Fail[method]
}

// CallCount returns how many times a method was invoked.
func (c *RPCClient) CallCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Calls[method]
}

// SentCount returns how many transactions were accepted.
func (c *RPCClient) SentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Sent)
}

// SetBalance sets the balance of an address.
func (c *RPCClient) SetBalance(address string, lamports uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Balances[address] = lamports
}

// GetBalance returns the stubbed balance, zero for unknown addresses.
func (c *RPCClient) GetBalance(_ context.Context, address string) (uint64, error) {
	if err := c.enter("getBalance"); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Balances[address], nil
}

// GetLatestBlockhash returns the stubbed blockhash.
func (c *RPCClient) GetLatestBlockhash(_ context.Context) (string, error) {
	if err := c.enter("getLatestBlockhash"); err != nil {
		return "", err
	}
	return c.Blockhash, nil
}

// GetMinimumBalanceForRentExemption returns the stubbed rent regardless of size.
func (c *RPCClient) GetMinimumBalanceForRentExemption(_ context.Context, _ uint64) (uint64, error) {
	if err := c.enter("getMinimumBalanceForRentExemption"); err != nil {
		return 0, err
	}
	return c.Rent, nil
}

// SendTransaction records the transaction and returns its first signature.
func (c *RPCClient) SendTransaction(_ context.Context, raw []byte) (string, error) {
	if err := c.enter("sendTransaction"); err != nil {
		return "", err
	}
	// Wire format: compact-u16 signature count, then 64-byte signatures.
	if len(raw) < 65 || raw[0] == 0 {
		return "", ErrMalformedTransaction
	}

	c.mu.Lock()
	n := len(c.Sent) + 1
	hook := c.SendHook
	c.mu.Unlock()

	if hook != nil {
		if err := hook(n, raw); err != nil {
			return "", err
		}
	}

	c.mu.Lock()
	c.Sent = append(c.Sent, append([]byte(nil), raw...))
	c.mu.Unlock()

	return base58.Encode(raw[1:65]), nil
}

// ConfirmTransaction succeeds unless the signature is marked as failed.
func (c *RPCClient) ConfirmTransaction(_ context.Context, signature string, _ solana.Commitment) error {
	if err := c.enter("confirmTransaction"); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if txErr, ok := c.Failed[signature]; ok {
		return &solana.TransactionFailedError{Signature: signature, Err: txErr}
	}
	return nil
}

var _ solana.RPCClient = (*RPCClient)(nil)
