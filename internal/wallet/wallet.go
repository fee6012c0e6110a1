// Package wallet defines the signing capability used to authorize
// issuance transactions, plus a keypair-backed implementation.
package wallet

import (
	"context"
	"errors"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// Wallet errors.
var (
	// ErrNotConnected is returned when no public key is available.
	ErrNotConnected = errors.New("wallet not connected")

	// ErrRejected is returned when the holder declines to sign.
	ErrRejected = errors.New("transaction rejected by wallet")
)

// Signer signs transactions on behalf of a connected address.
type Signer interface {
	// PublicKey returns the connected address, or false if none.
	PublicKey() (common.PublicKey, bool)

	// SignTransaction adds the wallet's signature and returns the result.
	// The input transaction is not modified.
	SignTransaction(ctx context.Context, tx types.Transaction) (types.Transaction, error)
}

// SendingSigner can also sign and broadcast in one step.
type SendingSigner interface {
	Signer

	// SignAndSendTransaction signs and submits the transaction, returning its signature.
	SignAndSendTransaction(ctx context.Context, tx types.Transaction) (string, error)
}
