package wallet

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"

	"solana-token-wizard/internal/solana"
)

// Keypair is a Signer holding a private key in memory.
type Keypair struct {
	account types.Account
}

// NewKeypair wraps an account.
func NewKeypair(account types.Account) *Keypair {
	return &Keypair{account: account}
}

// PublicKey implements Signer.
func (k *Keypair) PublicKey() (common.PublicKey, bool) {
	if k == nil || len(k.account.PrivateKey) == 0 {
		return common.PublicKey{}, false
	}
	return k.account.PublicKey, true
}

// SignTransaction implements Signer.
func (k *Keypair) SignTransaction(ctx context.Context, tx types.Transaction) (types.Transaction, error) {
	if _, ok := k.PublicKey(); !ok {
		return types.Transaction{}, ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return types.Transaction{}, err
	}

	msg, err := tx.Message.Serialize()
	if err != nil {
		return types.Transaction{}, fmt.Errorf("serialize message: %w", err)
	}

	signed := tx
	signed.Signatures = append([]types.Signature(nil), tx.Signatures...)
	if err := signed.AddSignature(k.account.Sign(msg)); err != nil {
		return types.Transaction{}, fmt.Errorf("add signature: %w", err)
	}
	return signed, nil
}

// SendingKeypair is a Keypair that broadcasts through a ledger client.
type SendingKeypair struct {
	*Keypair
	ledger solana.RPCClient
}

// NewSendingKeypair creates a SendingSigner.
func NewSendingKeypair(account types.Account, ledger solana.RPCClient) *SendingKeypair {
	return &SendingKeypair{Keypair: NewKeypair(account), ledger: ledger}
}

// SignAndSendTransaction implements SendingSigner.
func (k *SendingKeypair) SignAndSendTransaction(ctx context.Context, tx types.Transaction) (string, error) {
	signed, err := k.SignTransaction(ctx, tx)
	if err != nil {
		return "", err
	}
	raw, err := signed.Serialize()
	if err != nil {
		return "", fmt.Errorf("serialize transaction: %w", err)
	}
	return k.ledger.SendTransaction(ctx, raw)
}

// ParseKeypair decodes a secret key given either as a JSON array of 64
// integers (solana-keygen format) or as a base58 string.
func ParseKeypair(value string) (types.Account, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return types.Account{}, fmt.Errorf("empty keypair")
	}

	var keyBytes []byte
	if strings.HasPrefix(value, "[") {
		var err error
		keyBytes, err = decodeKeypairJSON([]byte(value))
		if err != nil {
			return types.Account{}, err
		}
	} else {
		decoded, err := base58.Decode(value)
		if err != nil {
			return types.Account{}, fmt.Errorf("decode base58 keypair: %w", err)
		}
		keyBytes = decoded
	}

	if len(keyBytes) != ed25519.PrivateKeySize {
		return types.Account{}, fmt.Errorf("unexpected secret key length: got %d, want %d", len(keyBytes), ed25519.PrivateKeySize)
	}
	acc, err := types.AccountFromBytes(keyBytes)
	if err != nil {
		return types.Account{}, fmt.Errorf("AccountFromBytes: %w", err)
	}
	return acc, nil
}

// LoadKeypair reads a keypair from a file path, or parses value directly
// when it is not an existing file.
func LoadKeypair(value string) (types.Account, error) {
	value = strings.TrimSpace(value)
	if info, err := os.Stat(value); err == nil && !info.IsDir() {
		data, err := os.ReadFile(value)
		if err != nil {
			return types.Account{}, fmt.Errorf("read keypair file: %w", err)
		}
		return ParseKeypair(string(data))
	}
	return ParseKeypair(value)
}

// decodeKeypairJSON accepts [u8;64] as written by solana-keygen.
func decodeKeypairJSON(data []byte) ([]byte, error) {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, fmt.Errorf("unmarshal keypair json: %w", err)
	}

	keyBytes := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("keypair byte %d out of range: %d", i, v)
		}
		keyBytes[i] = byte(v)
	}
	return keyBytes, nil
}

var (
	_ Signer        = (*Keypair)(nil)
	_ SendingSigner = (*SendingKeypair)(nil)
)
