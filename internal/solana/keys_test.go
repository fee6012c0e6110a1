package solana

import (
	"testing"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	key, err := ParseAddress("GfQnxRzm9zn7dNap27FubGu1oARFiwXpSNkN8mVqxeJA")
	require.NoError(t, err)
	assert.Len(t, key, 32)

	_, err = ParseAddress("not-base58-0OIl")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = ParseAddress("abc")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestValidateRecipient(t *testing.T) {
	wallet := types.NewAccount().PublicKey.ToBase58()
	assert.NoError(t, ValidateRecipient(wallet))

	assert.ErrorIs(t, ValidateRecipient(SystemProgramAddress), ErrBurnAddress)
	assert.ErrorIs(t, ValidateRecipient(""), ErrInvalidAddress)
}

func TestIsOnCurve(t *testing.T) {
	key, err := ParseAddress(types.NewAccount().PublicKey.ToBase58())
	require.NoError(t, err)
	assert.True(t, IsOnCurve(key))
	assert.False(t, IsOnCurve(key[:31]))
}

func TestShortAddress(t *testing.T) {
	assert.Equal(t, "GfQn***xeJA", ShortAddress("GfQnxRzm9zn7dNap27FubGu1oARFiwXpSNkN8mVqxeJA"))
	assert.Equal(t, "short", ShortAddress("short"))
}
