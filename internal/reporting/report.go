package reporting

import "time"

// Status is the terminal outcome of a submission.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// Report is the result view of one submission.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Cluster     string

	Status  Status
	Failure string // error text, FAILURE only

	Token TokenSummary

	// Addresses, signatures and locators, in display order
	Links []LinkRow

	// One row per authority, mint, freeze, update
	Revocations []RevocationRow

	// BackendUsed is the most degraded storage tier used
	BackendUsed string

	Warnings []string
}

// TokenSummary echoes the submitted form.
type TokenSummary struct {
	Name        string
	Symbol      string
	Decimals    int
	Supply      uint64
	Description string
}

// LinkRow is a copyable value with an optional external link.
type LinkRow struct {
	Label string
	Value string
	URL   string
}

// RevocationRow reports one authority.
type RevocationRow struct {
	Authority string
	Status    string
	Signature string
	URL       string
	Error     string
}
