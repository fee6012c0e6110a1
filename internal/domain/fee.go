package domain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"solana-token-wizard/internal/solana"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// Service fee parameters. They are fixed for the lifetime of the process.
const (
	ServiceFeeSOL       = "0.19"
	ServiceFeeRecipient = "GfQnxRzm9zn7dNap27FubGu1oARFiwXpSNkN8mVqxeJA"

	// NetworkFeeAllowanceLamports covers signature fees for the creation,
	// metadata and revocation transactions plus rent for the associated
	// token account. It is a conservative constant, not a live estimate.
	NetworkFeeAllowanceLamports = uint64(5_000_000)
)

// FeeSchedule is a flat service fee paid in SOL to a fixed recipient.
type FeeSchedule struct {
	Amount    decimal.Decimal // SOL
	Recipient string          // base58 address
}

// DefaultFeeSchedule returns the compiled-in fee schedule.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		Amount:    decimal.RequireFromString(ServiceFeeSOL),
		Recipient: ServiceFeeRecipient,
	}
}

// Lamports converts the fee amount to lamports. Fractions of a lamport are
// truncated.
func (f FeeSchedule) Lamports() (uint64, error) {
	if f.Amount.IsNegative() {
		return 0, fmt.Errorf("fee amount is negative: %s", f.Amount)
	}
	lamports := f.Amount.Mul(decimal.NewFromInt(LamportsPerSOL)).Truncate(0)
	if !lamports.BigInt().IsUint64() {
		return 0, fmt.Errorf("fee amount out of range: %s SOL", f.Amount)
	}
	return lamports.BigInt().Uint64(), nil
}

// Validate rejects a negative amount and a recipient that could never spend
// the fee, such as the system program address.
func (f FeeSchedule) Validate() error {
	if _, err := f.Lamports(); err != nil {
		return err
	}
	if err := solana.ValidateRecipient(f.Recipient); err != nil {
		return fmt.Errorf("fee recipient %s: %w", f.Recipient, err)
	}
	return nil
}

// FormatSOL renders a lamport amount as SOL.
func FormatSOL(lamports uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -9).String()
}
