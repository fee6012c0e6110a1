package solana

import "context"

// SignatureWatcher waits for signature confirmations over a subscription.
type SignatureWatcher interface {
	// WaitForSignature blocks until the signature reaches commitment.
	// An on-chain execution error is returned as *TransactionFailedError.
	WaitForSignature(ctx context.Context, signature string, commitment Commitment) error

	// Close closes the WebSocket connection.
	Close() error
}
