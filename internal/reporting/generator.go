package reporting

import (
	"fmt"
	"time"

	"solana-token-wizard/internal/domain"
	"solana-token-wizard/internal/storage"
)

// Generator produces result reports.
type Generator struct {
	explorer Explorer
	now      func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(explorer Explorer) *Generator {
	return &Generator{
		explorer: explorer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds the report for a finished submission. result is nil when
// the submission failed with failure.
func (g *Generator) Generate(form domain.FormState, result *domain.MintResult, failure error) *Report {
	form.Normalize()
	r := &Report{
		GeneratedAt: g.now(),
		Cluster:     g.cluster(),
		Token: TokenSummary{
			Name:        form.TokenName,
			Symbol:      form.TokenSymbol,
			Decimals:    form.Decimals,
			Supply:      form.TokenSupply,
			Description: form.Description,
		},
	}

	if result == nil {
		r.Status = StatusFailure
		r.Failure = "unknown error"
		if failure != nil {
			r.Failure = failure.Error()
		}
		return r
	}

	r.Status = StatusSuccess
	r.Links = g.links(result)
	r.Revocations = g.revocations(result)
	r.BackendUsed = string(result.Upload.BackendUsed)
	r.Warnings = append([]string(nil), result.Warnings...)
	return r
}

func (g *Generator) cluster() string {
	if g.explorer.Cluster == "" {
		return ClusterMainnet
	}
	return g.explorer.Cluster
}

func (g *Generator) links(result *domain.MintResult) []LinkRow {
	rows := []LinkRow{
		{Label: "Mint address", Value: result.MintAddress, URL: g.explorer.AddressURL(result.MintAddress)},
	}
	if result.AssociatedAccount != "" {
		rows = append(rows, LinkRow{Label: "Token account", Value: result.AssociatedAccount, URL: g.explorer.AddressURL(result.AssociatedAccount)})
	}
	rows = append(rows, LinkRow{Label: "Creation transaction", Value: result.CreationSignature, URL: g.explorer.TxURL(result.CreationSignature)})
	if result.MetadataSignature != "" {
		rows = append(rows, LinkRow{Label: "Metadata transaction", Value: result.MetadataSignature, URL: g.explorer.TxURL(result.MetadataSignature)})
	}
	if row, ok := locatorRow("Logo", result.Upload.ImageLocator); ok {
		rows = append(rows, row)
	}
	if row, ok := locatorRow("Metadata", result.Upload.MetadataLocator); ok {
		rows = append(rows, row)
	}
	return rows
}

// locatorRow shows inline data URLs by size only.
func locatorRow(label, locator string) (LinkRow, bool) {
	if locator == "" {
		return LinkRow{}, false
	}
	if storage.IsInline(locator) {
		return LinkRow{Label: label, Value: fmt.Sprintf("inline data URL (%d bytes)", len(locator))}, true
	}
	return LinkRow{Label: label, Value: locator, URL: locator}, true
}

func (g *Generator) revocations(result *domain.MintResult) []RevocationRow {
	if len(result.Revocations) == 0 {
		return nil
	}
	rows := make([]RevocationRow, 0, len(result.Revocations))
	for _, rev := range result.Revocations {
		rows = append(rows, RevocationRow{
			Authority: string(rev.Authority),
			Status:    string(rev.Status),
			Signature: rev.Signature,
			URL:       g.explorer.TxURL(rev.Signature),
			Error:     rev.Error,
		})
	}
	return rows
}
