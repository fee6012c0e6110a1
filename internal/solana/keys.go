package solana

import (
	"errors"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// SystemProgramAddress is the all-zero address. Lamports sent to it are
// unrecoverable.
const SystemProgramAddress = "11111111111111111111111111111111"

// Address validation errors.
var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrOffCurve       = errors.New("address is not on the ed25519 curve")
	ErrBurnAddress    = errors.New("address is an unspendable burn address")
)

// ParseAddress decodes a base58 address into its 32 raw bytes.
func ParseAddress(address string) ([]byte, error) {
	decoded, err := base58.Decode(strings.TrimSpace(address))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(decoded) != 32 {
		return nil, fmt.Errorf("%w: expected 32 bytes, got %d", ErrInvalidAddress, len(decoded))
	}
	return decoded, nil
}

// IsOnCurve reports whether the raw key is a valid ed25519 point, i.e.
// whether some private key controls it.
func IsOnCurve(key []byte) bool {
	if len(key) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(key)
	return err == nil
}

// ValidateRecipient checks that lamports sent to address can be spent.
// Program-derived and burn addresses are rejected.
func ValidateRecipient(address string) error {
	key, err := ParseAddress(address)
	if err != nil {
		return err
	}
	if address == SystemProgramAddress || isZero(key) {
		return ErrBurnAddress
	}
	if !IsOnCurve(key) {
		return ErrOffCurve
	}
	return nil
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// ShortAddress abbreviates an address for logs, e.g. "GfQn***xeJA".
func ShortAddress(address string) string {
	if len(address) <= 8 {
		return address
	}
	return address[:4] + "***" + address[len(address)-4:]
}
