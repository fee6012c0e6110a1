package domain

// BackendKind tells which tier of the storage fallback chain produced a locator.
type BackendKind string

const (
	BackendNone     BackendKind = ""
	BackendPrimary  BackendKind = "primary"
	BackendFallback BackendKind = "fallback"
	BackendInline   BackendKind = "inline"
)

// degradation orders kinds from best to worst.
func (k BackendKind) degradation() int {
	switch k {
	case BackendPrimary:
		return 1
	case BackendFallback:
		return 2
	case BackendInline:
		return 3
	default:
		return 0
	}
}

// Worse returns the more degraded of two kinds.
func (k BackendKind) Worse(other BackendKind) BackendKind {
	if other.degradation() > k.degradation() {
		return other
	}
	return k
}

// UploadResult records where the logo and metadata document ended up.
type UploadResult struct {
	ImageLocator    string
	MetadataLocator string

	ImageBackend    BackendKind
	MetadataBackend BackendKind

	// BackendUsed is the most degraded tier used by either upload.
	BackendUsed BackendKind
}

// Authority is a revocable mint-level permission.
type Authority string

const (
	AuthorityMint   Authority = "mint"
	AuthorityFreeze Authority = "freeze"
	AuthorityUpdate Authority = "update"
)

// RevocationOrder is the order in which authorities are revoked.
var RevocationOrder = []Authority{AuthorityMint, AuthorityFreeze, AuthorityUpdate}

// RevocationFlags selects which authorities to revoke.
type RevocationFlags struct {
	Mint   bool
	Freeze bool
	Update bool
}

// Requested reports whether the given authority is flagged.
func (f RevocationFlags) Requested(a Authority) bool {
	switch a {
	case AuthorityMint:
		return f.Mint
	case AuthorityFreeze:
		return f.Freeze
	case AuthorityUpdate:
		return f.Update
	}
	return false
}

// RevocationSignatures holds signatures of confirmed revocation transactions.
// Absent entries are empty strings.
type RevocationSignatures struct {
	Mint   string `json:"mint,omitempty"`
	Freeze string `json:"freeze,omitempty"`
	Update string `json:"update,omitempty"`
}

// Get returns the signature recorded for an authority.
func (s RevocationSignatures) Get(a Authority) string {
	switch a {
	case AuthorityMint:
		return s.Mint
	case AuthorityFreeze:
		return s.Freeze
	case AuthorityUpdate:
		return s.Update
	}
	return ""
}

// Set records the signature for an authority.
func (s *RevocationSignatures) Set(a Authority, sig string) {
	switch a {
	case AuthorityMint:
		s.Mint = sig
	case AuthorityFreeze:
		s.Freeze = sig
	case AuthorityUpdate:
		s.Update = sig
	}
}

// RevocationStatus describes what happened to one authority.
type RevocationStatus string

const (
	RevocationNotRequested RevocationStatus = "not requested"
	RevocationRevoked      RevocationStatus = "revoked"
	RevocationNotGranted   RevocationStatus = "never granted"
	RevocationIncomplete   RevocationStatus = "not completed"
)

// RevocationReport is the per-authority outcome shown to the user.
type RevocationReport struct {
	Authority Authority
	Status    RevocationStatus
	Signature string
	Error     string
}

// MintResult is produced once the creation transaction is confirmed.
type MintResult struct {
	MintAddress       string
	AssociatedAccount string
	CreationSignature string
	MetadataSignature string

	RevocationSignatures RevocationSignatures
	Revocations          []RevocationReport

	Upload UploadResult

	// Warnings lists best-effort steps that did not complete.
	Warnings []string
}

// Progress is a coarse completion indicator for a running submission.
type Progress struct {
	Percent int
	Status  string
}

// ProgressFunc receives progress updates. It may be nil.
type ProgressFunc func(Progress)

// Report calls fn when it is set.
func (fn ProgressFunc) Report(percent int, status string) {
	if fn != nil {
		fn(Progress{Percent: percent, Status: status})
	}
}
