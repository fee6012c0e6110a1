package orchestrator

import (
	"errors"
	"fmt"

	"solana-token-wizard/internal/domain"
	"solana-token-wizard/internal/wallet"
)

// ErrInsufficientBalance is wrapped by PreconditionError.
var ErrInsufficientBalance = errors.New("insufficient balance")

// StageBuild marks a failure while assembling the creation transaction.
const StageBuild wallet.Stage = "build"

// PreconditionError reports that the payer cannot cover fee, rent and
// network fees. It is returned before anything is uploaded or sent.
type PreconditionError struct {
	Required  uint64 // lamports
	Available uint64 // lamports
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%v: need %s SOL, wallet holds %s SOL",
		ErrInsufficientBalance, domain.FormatSOL(e.Required), domain.FormatSOL(e.Available))
}

func (e *PreconditionError) Unwrap() error {
	return ErrInsufficientBalance
}

// TransactionError is a fatal failure of the creation transaction.
type TransactionError struct {
	Stage     wallet.Stage
	Signature string // set when the transaction was broadcast but not confirmed
	Err       error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("token creation failed at %s: %v", e.Stage, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

func asTransactionError(err error, sig string) *TransactionError {
	var se *wallet.SubmitError
	if errors.As(err, &se) {
		if se.Signature != "" {
			sig = se.Signature
		}
		return &TransactionError{Stage: se.Stage, Signature: sig, Err: se.Err}
	}
	return &TransactionError{Stage: wallet.StageSend, Signature: sig, Err: err}
}
