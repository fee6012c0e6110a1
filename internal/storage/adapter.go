package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"solana-token-wizard/internal/domain"
	"solana-token-wizard/internal/observability"
)

// Payload kinds used in logs and metrics.
const (
	kindBlob = "blob"
	kindJSON = "json"
)

// Policy is the ordered fallback chain used by the Adapter.
// Either backend may be nil, in which case its tier is skipped.
type Policy struct {
	Primary   Backend
	Secondary Backend

	// InlineBlobs embeds binary content in a data URL when both backends fail.
	InlineBlobs bool

	// InlineJSON does the same for JSON documents. Off by default because
	// most wallets and explorers do not resolve data URLs for metadata.
	InlineJSON bool
}

// DefaultPolicy returns a policy with inline fallback for blobs only.
func DefaultPolicy(primary, secondary Backend) Policy {
	return Policy{
		Primary:     primary,
		Secondary:   secondary,
		InlineBlobs: true,
	}
}

// Upload is the outcome of one store call.
type Upload struct {
	Locator string
	Kind    domain.BackendKind
	Backend string // backend name, "inline" for data URLs
}

// Degraded reports whether the upload fell back past the primary backend.
func (u Upload) Degraded() bool {
	return u.Kind == domain.BackendFallback || u.Kind == domain.BackendInline
}

// AdapterOptions configures an Adapter.
type AdapterOptions struct {
	Policy  Policy
	Metrics *observability.Metrics
	Logger  *log.Logger
}

// Adapter uploads content through the policy's fallback chain.
type Adapter struct {
	policy  Policy
	metrics *observability.Metrics
	logger  *log.Logger
}

// NewAdapter creates a storage adapter.
func NewAdapter(opts AdapterOptions) *Adapter {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Adapter{
		policy:  opts.Policy,
		metrics: opts.Metrics,
		logger:  logger,
	}
}

// StoreBlob uploads binary content. On total failure it returns an empty
// Upload and an error wrapping ErrAllBackendsFailed.
func (a *Adapter) StoreBlob(ctx context.Context, b Blob) (Upload, error) {
	if len(b.Data) == 0 {
		return Upload{}, fmt.Errorf("%w: empty blob", ErrInvalidInput)
	}
	return a.store(ctx, kindBlob, b.Name, func(ctx context.Context, be Backend) (string, error) {
		return be.PutBlob(ctx, b)
	}, a.policy.InlineBlobs, b.ContentType, b.Data)
}

// StoreJSON encodes doc and uploads it. On total failure it returns an
// empty Upload and an error wrapping ErrAllBackendsFailed.
func (a *Adapter) StoreJSON(ctx context.Context, name string, doc any) (Upload, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return Upload{}, fmt.Errorf("%w: encode %s: %w", ErrInvalidInput, name, err)
	}
	return a.store(ctx, kindJSON, name, func(ctx context.Context, be Backend) (string, error) {
		return be.PutJSON(ctx, name, data)
	}, a.policy.InlineJSON, jsonType, data)
}

type putFunc func(ctx context.Context, be Backend) (string, error)

func (a *Adapter) store(ctx context.Context, kind, name string, put putFunc, inline bool, contentType string, data []byte) (Upload, error) {
	tiers := []struct {
		backend Backend
		kind    domain.BackendKind
	}{
		{a.policy.Primary, domain.BackendPrimary},
		{a.policy.Secondary, domain.BackendFallback},
	}

	var errs []error
	for _, tier := range tiers {
		if tier.backend == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Upload{}, err
		}

		start := time.Now()
		locator, err := put(ctx, tier.backend)
		a.metrics.RecordUpload(tier.backend.Name(), kind, time.Since(start).Seconds(), err)
		if err == nil && locator == "" {
			err = errors.New("empty locator")
		}
		if err != nil {
			a.logger.Printf("%s upload %q to %s failed: %v", kind, name, tier.backend.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", tier.backend.Name(), err))
			continue
		}

		a.logger.Printf("%s upload %q stored on %s (%s)", kind, name, tier.backend.Name(), tier.kind)
		return Upload{Locator: locator, Kind: tier.kind, Backend: tier.backend.Name()}, nil
	}

	if inline {
		a.logger.Printf("%s upload %q degraded to inline encoding", kind, name)
		a.metrics.RecordUpload(string(domain.BackendInline), kind, 0, nil)
		return Upload{
			Locator: EncodeInline(contentType, data),
			Kind:    domain.BackendInline,
			Backend: string(domain.BackendInline),
		}, nil
	}

	if len(errs) == 0 {
		return Upload{}, fmt.Errorf("%w: no backends configured", ErrAllBackendsFailed)
	}
	return Upload{}, fmt.Errorf("%w: %w", ErrAllBackendsFailed, errors.Join(errs...))
}
