// Package revocation clears mint-level authorities after a token exists.
package revocation

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	"solana-token-wizard/internal/domain"
	"solana-token-wizard/internal/observability"
	"solana-token-wizard/internal/solana"
	"solana-token-wizard/internal/txbuilder"
)

// TxFactory wraps instructions into an unsigned transaction.
type TxFactory interface {
	Build(ctx context.Context, feePayer common.PublicKey, instructions ...types.Instruction) (types.Transaction, error)
}

// Submitter signs, sends and confirms a transaction.
type Submitter interface {
	Submit(ctx context.Context, tx types.Transaction) (string, error)
}

// Grants records which authorities exist on the mint.
type Grants struct {
	Mint   bool
	Freeze bool
	Update bool // a metadata account exists and is mutable
}

func (g Grants) has(a domain.Authority) bool {
	return domain.RevocationFlags(g).Requested(a)
}

// Request describes the revocations to perform.
type Request struct {
	Mint      common.PublicKey
	Authority common.PublicKey // current holder of every authority
	Flags     domain.RevocationFlags
	Granted   Grants
}

// Outcome collects per-authority results.
type Outcome struct {
	Signatures domain.RevocationSignatures
	Reports    []domain.RevocationReport
	Failed     []domain.Authority
}

// Options configures a Sequencer.
type Options struct {
	Factory   TxFactory
	Submitter Submitter
	Metrics   *observability.Metrics
	Logger    *log.Logger
}

// Sequencer revokes authorities one transaction at a time.
type Sequencer struct {
	factory   TxFactory
	submitter Submitter
	metrics   *observability.Metrics
	logger    *log.Logger
}

// NewSequencer creates a Sequencer.
func NewSequencer(opts Options) *Sequencer {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Sequencer{
		factory:   opts.Factory,
		submitter: opts.Submitter,
		metrics:   opts.Metrics,
		logger:    logger,
	}
}

// Run revokes every flagged authority in order mint, freeze, update.
// Each revocation is independent. A failure is recorded and the next one
// is still attempted. Authorities that were never granted are skipped.
func (s *Sequencer) Run(ctx context.Context, req Request) Outcome {
	var out Outcome

	for _, a := range domain.RevocationOrder {
		report := domain.RevocationReport{Authority: a}

		switch {
		case !req.Flags.Requested(a):
			report.Status = domain.RevocationNotRequested
		case !req.Granted.has(a):
			report.Status = domain.RevocationNotGranted
			s.metrics.RecordRevocation(string(a), observability.OutcomeSkipped)
		default:
			sig, err := s.revoke(ctx, a, req)
			if err != nil {
				s.logger.Printf("revoke %s authority on %s failed: %v", a, solana.ShortAddress(req.Mint.ToBase58()), err)
				s.metrics.RecordRevocation(string(a), observability.OutcomeFailure)
				report.Status = domain.RevocationIncomplete
				report.Error = err.Error()
				out.Failed = append(out.Failed, a)
				break
			}
			s.logger.Printf("revoked %s authority on %s: %s", a, solana.ShortAddress(req.Mint.ToBase58()), sig)
			s.metrics.RecordRevocation(string(a), observability.OutcomeSuccess)
			report.Status = domain.RevocationRevoked
			report.Signature = sig
			out.Signatures.Set(a, sig)
		}

		out.Reports = append(out.Reports, report)
	}
	return out
}

func (s *Sequencer) revoke(ctx context.Context, a domain.Authority, req Request) (string, error) {
	ix, err := txbuilder.RevokeInstruction(a, req.Mint, req.Authority)
	if err != nil {
		return "", err
	}
	tx, err := s.factory.Build(ctx, req.Authority, ix)
	if err != nil {
		return "", fmt.Errorf("build: %w", err)
	}
	return s.submitter.Submit(ctx, tx)
}
