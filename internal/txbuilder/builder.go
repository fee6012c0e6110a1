package txbuilder

import (
	"context"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	"solana-token-wizard/internal/solana"
)

// Quote is the lamport amount a payer must hold before submission.
type Quote struct {
	MintRent  uint64
	Fee       uint64
	Allowance uint64
}

// Total returns the sum of all components.
func (q Quote) Total() uint64 {
	return q.MintRent + q.Fee + q.Allowance
}

// Builder fetches chain state needed to assemble transactions.
type Builder struct {
	rpc        solana.RPCClient
	newAccount func() types.Account
}

// NewBuilder creates a Builder.
func NewBuilder(rpc solana.RPCClient) *Builder {
	return &Builder{rpc: rpc, newAccount: types.NewAccount}
}

// WithMintGenerator replaces the mint keypair generator.
func (b *Builder) WithMintGenerator(fn func() types.Account) *Builder {
	b.newAccount = fn
	return b
}

// Quote queries the live rent-exempt minimum for a mint account and adds
// the fee and allowance.
func (b *Builder) Quote(ctx context.Context, feeLamports, allowance uint64) (Quote, error) {
	rent, err := b.rpc.GetMinimumBalanceForRentExemption(ctx, MintAccountSize)
	if err != nil {
		return Quote{}, fmt.Errorf("get mint rent: %w", err)
	}
	return Quote{MintRent: rent, Fee: feeLamports, Allowance: allowance}, nil
}

// BuildCreation validates p, fetches a blockhash and returns the creation
// transaction co-signed by a freshly generated mint keypair.
func (b *Builder) BuildCreation(ctx context.Context, p CreationParams, mintRent uint64) (*Creation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	blockhash, err := b.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("get latest blockhash: %w", err)
	}
	return NewCreation(p, mintRent, blockhash, b.newAccount())
}

// Build wraps instructions into an unsigned transaction paid by feePayer.
func (b *Builder) Build(ctx context.Context, feePayer common.PublicKey, instructions ...types.Instruction) (types.Transaction, error) {
	blockhash, err := b.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return types.Transaction{}, fmt.Errorf("get latest blockhash: %w", err)
	}
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        feePayer,
			RecentBlockhash: blockhash,
			Instructions:    instructions,
		}),
	})
	if err != nil {
		return types.Transaction{}, fmt.Errorf("NewTransaction: %w", err)
	}
	return tx, nil
}
