package txbuilder

import "errors"

// Builder errors. They are returned before any network call is made.
var (
	ErrInvalidDecimals      = errors.New("decimals must be between 0 and 18")
	ErrInvalidSupply        = errors.New("supply must be greater than 0")
	ErrSupplyOverflow       = errors.New("supply in base units exceeds u64")
	ErrMissingPayer         = errors.New("payer address is required")
	ErrMissingFeeRecipient  = errors.New("fee recipient is required when a fee is charged")
	ErrMetadataFieldTooLong = errors.New("metadata field exceeds on-chain limit")
	ErrUnknownAuthority     = errors.New("unknown authority")
)
