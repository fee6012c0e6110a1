package solana

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrConfirmTimeout is returned when a signature does not reach the
// requested commitment within the confirmation timeout.
var ErrConfirmTimeout = errors.New("transaction confirmation timed out")

// SignatureStatus from getSignatureStatuses.
type SignatureStatus struct {
	Slot               int64
	Confirmations      *uint64 // nil once rooted
	Err                interface{}
	ConfirmationStatus Commitment
}

// TransactionFailedError reports a transaction that landed with an
// execution error.
type TransactionFailedError struct {
	Signature string
	Err       interface{}
}

func (e *TransactionFailedError) Error() string {
	detail, err := json.Marshal(e.Err)
	if err != nil {
		detail = []byte(fmt.Sprint(e.Err))
	}
	return fmt.Sprintf("transaction %s failed: %s", e.Signature, detail)
}
