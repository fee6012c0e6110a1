package solana

import "context"

// Commitment is the ledger confirmation level.
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

func (c Commitment) rank() int {
	switch c {
	case CommitmentProcessed:
		return 1
	case CommitmentConfirmed:
		return 2
	case CommitmentFinalized:
		return 3
	}
	return 0
}

// Reached reports whether status is at least as strong as c.
func (c Commitment) Reached(status Commitment) bool {
	return status.rank() >= c.rank() && status.rank() > 0
}

// RPCClient defines the Solana RPC HTTP interface used for issuance.
type RPCClient interface {
	// GetBalance returns the lamport balance of an address at confirmed commitment.
	GetBalance(ctx context.Context, address string) (uint64, error)

	// GetLatestBlockhash returns a recent blockhash for transaction building.
	GetLatestBlockhash(ctx context.Context) (string, error)

	// GetMinimumBalanceForRentExemption returns the rent-exempt minimum for
	// an account holding dataLen bytes.
	GetMinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error)

	// SendTransaction submits a serialized signed transaction and returns its signature.
	SendTransaction(ctx context.Context, raw []byte) (string, error)

	// ConfirmTransaction blocks until the signature reaches commitment.
	// An on-chain execution error is returned as *TransactionFailedError.
	ConfirmTransaction(ctx context.Context, signature string, commitment Commitment) error
}
