package wallet

import (
	"context"
	"fmt"

	"github.com/blocto/solana-go-sdk/types"

	"solana-token-wizard/internal/solana"
)

// Stage names the step at which a submission failed.
type Stage string

const (
	StageSign    Stage = "sign"
	StageSend    Stage = "send"
	StageConfirm Stage = "confirm"
)

// SubmitError wraps a failure with the stage it happened at.
type SubmitError struct {
	Stage     Stage
	Signature string // set once the transaction was broadcast
	Err       error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("%s transaction: %v", e.Stage, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// Submitter signs, broadcasts and confirms transactions.
type Submitter struct {
	signer     Signer
	ledger     solana.RPCClient
	commitment solana.Commitment
}

// NewSubmitter creates a submitter confirming at "confirmed" commitment.
func NewSubmitter(signer Signer, ledger solana.RPCClient) *Submitter {
	return &Submitter{
		signer:     signer,
		ledger:     ledger,
		commitment: solana.CommitmentConfirmed,
	}
}

// Signer returns the wallet used for signing.
func (s *Submitter) Signer() Signer {
	return s.signer
}

// SignThenSend asks the wallet for a signature, then broadcasts through the
// ledger client. Transactions that carry other partial signatures, such as a
// fresh mint account's, go this way.
func (s *Submitter) SignThenSend(ctx context.Context, tx types.Transaction) (string, error) {
	signed, err := s.signer.SignTransaction(ctx, tx)
	if err != nil {
		return "", &SubmitError{Stage: StageSign, Err: err}
	}
	raw, err := signed.Serialize()
	if err != nil {
		return "", &SubmitError{Stage: StageSign, Err: fmt.Errorf("serialize transaction: %w", err)}
	}
	sig, err := s.ledger.SendTransaction(ctx, raw)
	if err != nil {
		return "", &SubmitError{Stage: StageSend, Err: err}
	}
	return sig, s.confirm(ctx, sig)
}

// Submit prefers the wallet's combined sign-and-send capability and falls
// back to SignThenSend.
func (s *Submitter) Submit(ctx context.Context, tx types.Transaction) (string, error) {
	sender, ok := s.signer.(SendingSigner)
	if !ok {
		return s.SignThenSend(ctx, tx)
	}
	sig, err := sender.SignAndSendTransaction(ctx, tx)
	if err != nil {
		return "", &SubmitError{Stage: StageSend, Err: err}
	}
	return sig, s.confirm(ctx, sig)
}

func (s *Submitter) confirm(ctx context.Context, sig string) error {
	if err := s.ledger.ConfirmTransaction(ctx, sig, s.commitment); err != nil {
		return &SubmitError{Stage: StageConfirm, Signature: sig, Err: err}
	}
	return nil
}
