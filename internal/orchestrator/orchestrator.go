// Package orchestrator runs one token issuance end to end.
// Flow: balance check → logo upload → metadata upload → creation
// transaction → metadata attach → authority revocation
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	"solana-token-wizard/internal/domain"
	"solana-token-wizard/internal/metadata"
	"solana-token-wizard/internal/observability"
	"solana-token-wizard/internal/revocation"
	"solana-token-wizard/internal/solana"
	"solana-token-wizard/internal/storage"
	"solana-token-wizard/internal/txbuilder"
	"solana-token-wizard/internal/wallet"
)

// Storage uploads logos and metadata documents.
type Storage interface {
	StoreBlob(ctx context.Context, b storage.Blob) (storage.Upload, error)
	StoreJSON(ctx context.Context, name string, doc any) (storage.Upload, error)
}

var _ Storage = (*storage.Adapter)(nil)

// Options for creating Orchestrator.
type Options struct {
	// Required
	RPC     solana.RPCClient
	Wallet  wallet.Signer
	Storage Storage

	// Fees defaults to domain.DefaultFeeSchedule when the recipient is empty.
	Fees domain.FeeSchedule
	// NetworkFeeAllowance defaults to domain.NetworkFeeAllowanceLamports.
	NetworkFeeAllowance uint64

	// DeferFreezeRevocation grants the freeze authority at initialization
	// and revokes it in a follow-up transaction instead of never granting it.
	DeferFreezeRevocation bool
	SkipMetadataAttach    bool

	// MintGenerator replaces the random mint keypair generator.
	MintGenerator func() types.Account

	Metrics *observability.Metrics
	Logger  *log.Logger
}

// Orchestrator coordinates a single submission.
type Orchestrator struct {
	rpc       solana.RPCClient
	storage   Storage
	builder   *txbuilder.Builder
	submitter *wallet.Submitter
	sequencer *revocation.Sequencer

	feeLamports  uint64
	feeRecipient common.PublicKey
	allowance    uint64

	deferFreeze bool
	skipAttach  bool

	metrics *observability.Metrics
	logger  *log.Logger
}

// New creates a new Orchestrator. It fails when a required collaborator is
// missing or the fee schedule is unusable.
func New(opts Options) (*Orchestrator, error) {
	if opts.RPC == nil || opts.Wallet == nil || opts.Storage == nil {
		return nil, errors.New("orchestrator: RPC, Wallet and Storage are required")
	}

	fees := opts.Fees
	if fees.Recipient == "" {
		fees = domain.DefaultFeeSchedule()
	}
	if err := fees.Validate(); err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	feeLamports, err := fees.Lamports()
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	allowance := opts.NetworkFeeAllowance
	if allowance == 0 {
		allowance = domain.NetworkFeeAllowanceLamports
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	builder := txbuilder.NewBuilder(opts.RPC)
	if opts.MintGenerator != nil {
		builder.WithMintGenerator(opts.MintGenerator)
	}
	submitter := wallet.NewSubmitter(opts.Wallet, opts.RPC)

	return &Orchestrator{
		rpc:       opts.RPC,
		storage:   opts.Storage,
		builder:   builder,
		submitter: submitter,
		sequencer: revocation.NewSequencer(revocation.Options{
			Factory:   builder,
			Submitter: submitter,
			Metrics:   opts.Metrics,
			Logger:    logger,
		}),
		feeLamports:  feeLamports,
		feeRecipient: common.PublicKeyFromString(fees.Recipient),
		allowance:    allowance,
		deferFreeze:  opts.DeferFreezeRevocation,
		skipAttach:   opts.SkipMetadataAttach,
		metrics:      opts.Metrics,
		logger:       logger,
	}, nil
}

// Issue creates the token described by form.
//
// Errors before the creation transaction confirms are fatal and returned as
// one of domain.ValidationErrors, wallet.ErrNotConnected, *PreconditionError,
// a storage error wrapping storage.ErrAllBackendsFailed, or
// *TransactionError. Later failures are recorded in MintResult.Warnings.
func (o *Orchestrator) Issue(ctx context.Context, form domain.FormState, progress domain.ProgressFunc) (result *domain.MintResult, err error) {
	start := time.Now()
	defer func() {
		outcome := observability.OutcomeSuccess
		if err != nil {
			outcome = observability.OutcomeFailure
		}
		o.metrics.RecordSubmission(outcome, time.Since(start).Seconds())
	}()

	form.Normalize()
	if errs := form.Validate(); errs != nil {
		return nil, errs
	}

	payer, ok := o.submitter.Signer().PublicKey()
	if !ok {
		return nil, wallet.ErrNotConnected
	}

	params := txbuilder.CreationParams{
		Payer:              payer,
		Decimals:           form.Decimals,
		Supply:             form.TokenSupply,
		RevokeFreezeAtInit: form.RevokeFreeze && !o.deferFreeze,
		FeeLamports:        o.feeLamports,
		FeeRecipient:       o.feeRecipient,
	}
	if err := params.Validate(); err != nil {
		return nil, &TransactionError{Stage: StageBuild, Err: err}
	}

	progress.Report(10, "Checking wallet balance")
	quote, err := o.checkBalance(ctx, payer)
	if err != nil {
		return nil, err
	}

	upload, warnings, err := o.upload(ctx, form, payer, progress)
	if err != nil {
		return nil, err
	}

	progress.Report(80, "Creating token")
	creation, err := o.builder.BuildCreation(ctx, params, quote.MintRent)
	if err != nil {
		return nil, &TransactionError{Stage: StageBuild, Err: err}
	}
	sig, err := o.submitter.SignThenSend(ctx, creation.Tx)
	if err != nil {
		o.logger.Printf("creation of %s failed: %v", solana.ShortAddress(creation.Mint.ToBase58()), err)
		return nil, asTransactionError(err, sig)
	}
	o.logger.Printf("created mint %s in %s", creation.Mint.ToBase58(), sig)

	result = &domain.MintResult{
		MintAddress:       creation.Mint.ToBase58(),
		AssociatedAccount: creation.AssociatedAccount.ToBase58(),
		CreationSignature: sig,
		Upload:            upload,
		Warnings:          warnings,
	}

	attached := false
	if !o.skipAttach {
		progress.Report(90, "Attaching on-chain metadata")
		msig, err := o.attachMetadata(ctx, creation.Mint, payer, form, upload.MetadataLocator)
		if err != nil {
			o.logger.Printf("metadata attach for %s failed: %v", solana.ShortAddress(result.MintAddress), err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("on-chain metadata not attached: %v", err))
		} else {
			result.MetadataSignature = msig
			attached = true
		}
	}

	progress.Report(95, "Revoking authorities")
	out := o.sequencer.Run(ctx, revocation.Request{
		Mint:      creation.Mint,
		Authority: payer,
		Flags:     form.Revocations(),
		Granted: revocation.Grants{
			Mint:   true,
			Freeze: creation.FreezeGranted,
			Update: attached,
		},
	})
	result.RevocationSignatures = out.Signatures
	result.Revocations = out.Reports
	for _, a := range out.Failed {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s authority revocation not completed", a))
	}

	progress.Report(100, "Token created")
	return result, nil
}

func (o *Orchestrator) checkBalance(ctx context.Context, payer common.PublicKey) (txbuilder.Quote, error) {
	quote, err := o.builder.Quote(ctx, o.feeLamports, o.allowance)
	if err != nil {
		return txbuilder.Quote{}, fmt.Errorf("quote creation cost: %w", err)
	}
	balance, err := o.rpc.GetBalance(ctx, payer.ToBase58())
	if err != nil {
		return txbuilder.Quote{}, fmt.Errorf("get balance: %w", err)
	}
	if balance < quote.Total() {
		return txbuilder.Quote{}, &PreconditionError{Required: quote.Total(), Available: balance}
	}
	return quote, nil
}

// upload stores the logo, which is optional, then the metadata document,
// which is not.
func (o *Orchestrator) upload(ctx context.Context, form domain.FormState, payer common.PublicKey, progress domain.ProgressFunc) (domain.UploadResult, []string, error) {
	var (
		result   domain.UploadResult
		warnings []string
	)

	if form.Logo != nil && len(form.Logo.Data) > 0 {
		progress.Report(30, "Uploading logo")
		up, err := o.storage.StoreBlob(ctx, storage.Blob{
			Name:        form.TokenSymbol + "_logo",
			FileName:    form.Logo.FileName,
			ContentType: form.Logo.ContentType,
			Data:        form.Logo.Data,
		})
		if err != nil {
			if ctx.Err() != nil {
				return result, nil, ctx.Err()
			}
			o.logger.Printf("continuing without logo: %v", err)
			warnings = append(warnings, fmt.Sprintf("logo not uploaded: %v", err))
		} else {
			result.ImageLocator = up.Locator
			result.ImageBackend = up.Kind
		}
	}

	progress.Report(60, "Uploading metadata")
	doc := metadata.Compose(form, payer.ToBase58(), result.ImageLocator)
	up, err := o.storage.StoreJSON(ctx, form.TokenSymbol+"_metadata", doc)
	if err != nil {
		return result, nil, fmt.Errorf("upload metadata: %w", err)
	}
	result.MetadataLocator = up.Locator
	result.MetadataBackend = up.Kind
	result.BackendUsed = result.ImageBackend.Worse(result.MetadataBackend)
	return result, warnings, nil
}

func (o *Orchestrator) attachMetadata(ctx context.Context, mint, payer common.PublicKey, form domain.FormState, uri string) (string, error) {
	ix, err := txbuilder.AttachMetadata(txbuilder.MetadataParams{
		Mint:      mint,
		Authority: payer,
		Name:      form.TokenName,
		Symbol:    form.TokenSymbol,
		URI:       uri,
	})
	if err != nil {
		return "", err
	}
	tx, err := o.builder.Build(ctx, payer, ix)
	if err != nil {
		return "", err
	}
	return o.submitter.Submit(ctx, tx)
}
