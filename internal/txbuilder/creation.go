// Package txbuilder assembles issuance transactions.
package txbuilder

import (
	"fmt"
	"math/big"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"
)

// MaxDecimals is the largest decimals value accepted by the builder.
const MaxDecimals = 18

// MintAccountSize is the data length of a mint account.
const MintAccountSize = token.MintAccountSize

// CreationParams describes a new fungible token.
type CreationParams struct {
	Payer    common.PublicKey
	Decimals int
	Supply   uint64 // whole tokens

	// RevokeFreezeAtInit initializes the mint without a freeze authority.
	RevokeFreezeAtInit bool

	FeeLamports  uint64
	FeeRecipient common.PublicKey
}

// Validate checks the parameters without touching the network.
func (p CreationParams) Validate() error {
	if p.Payer == (common.PublicKey{}) {
		return ErrMissingPayer
	}
	if p.Decimals < 0 || p.Decimals > MaxDecimals {
		return fmt.Errorf("%w: got %d", ErrInvalidDecimals, p.Decimals)
	}
	if p.Supply == 0 {
		return ErrInvalidSupply
	}
	if _, err := BaseUnits(p.Supply, p.Decimals); err != nil {
		return err
	}
	if p.FeeLamports > 0 && p.FeeRecipient == (common.PublicKey{}) {
		return ErrMissingFeeRecipient
	}
	return nil
}

// BaseUnits returns supply × 10^decimals.
func BaseUnits(supply uint64, decimals int) (uint64, error) {
	if decimals < 0 || decimals > MaxDecimals {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidDecimals, decimals)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	units := new(big.Int).Mul(new(big.Int).SetUint64(supply), scale)
	if !units.IsUint64() {
		return 0, fmt.Errorf("%w: %d × 10^%d", ErrSupplyOverflow, supply, decimals)
	}
	return units.Uint64(), nil
}

// Creation is a creation transaction signed by the mint account only.
// The payer's signature slot is still empty.
type Creation struct {
	Tx                types.Transaction
	Mint              common.PublicKey
	AssociatedAccount common.PublicKey
	BaseUnits         uint64
	FreezeGranted     bool
}

// NewCreation assembles the creation transaction. Instruction order:
// create mint account, initialize mint, create the payer's associated
// token account, mint the supply into it, transfer the fee.
func NewCreation(p CreationParams, mintRent uint64, blockhash string, mint types.Account) (*Creation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	units, err := BaseUnits(p.Supply, p.Decimals)
	if err != nil {
		return nil, err
	}

	ata, _, err := common.FindAssociatedTokenAddress(p.Payer, mint.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("FindAssociatedTokenAddress: %w", err)
	}

	var freezeAuth *common.PublicKey
	if !p.RevokeFreezeAtInit {
		payer := p.Payer
		freezeAuth = &payer
	}

	instructions := []types.Instruction{
		system.CreateAccount(system.CreateAccountParam{
			From:     p.Payer,
			New:      mint.PublicKey,
			Owner:    common.TokenProgramID,
			Lamports: mintRent,
			Space:    token.MintAccountSize,
		}),
		token.InitializeMint(token.InitializeMintParam{
			Decimals:   uint8(p.Decimals),
			Mint:       mint.PublicKey,
			MintAuth:   p.Payer,
			FreezeAuth: freezeAuth,
		}),
		associated_token_account.CreateAssociatedTokenAccount(
			associated_token_account.CreateAssociatedTokenAccountParam{
				Funder:                 p.Payer,
				Owner:                  p.Payer,
				Mint:                   mint.PublicKey,
				AssociatedTokenAccount: ata,
			},
		),
		token.MintTo(token.MintToParam{
			Mint:   mint.PublicKey,
			To:     ata,
			Auth:   p.Payer,
			Amount: units,
		}),
	}
	if p.FeeLamports > 0 {
		instructions = append(instructions, system.Transfer(system.TransferParam{
			From:   p.Payer,
			To:     p.FeeRecipient,
			Amount: p.FeeLamports,
		}))
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{mint},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        p.Payer,
			RecentBlockhash: blockhash,
			Instructions:    instructions,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("NewTransaction: %w", err)
	}

	return &Creation{
		Tx:                tx,
		Mint:              mint.PublicKey,
		AssociatedAccount: ata,
		BaseUnits:         units,
		FreezeGranted:     freezeAuth != nil,
	}, nil
}
