package domain

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Form defaults and limits.
const (
	DefaultDecimals    = 9
	DefaultTokenSupply = uint64(1_000_000_000)
	MaxDecimals        = 18
	MaxSymbolLength    = 8
)

// Form field names, used as keys in ValidationErrors.
const (
	FieldTokenName   = "tokenName"
	FieldTokenSymbol = "tokenSymbol"
	FieldDecimals    = "decimals"
	FieldTokenSupply = "tokenSupply"
	FieldDescription = "description"
)

// Step identifies one of the three editable wizard pages.
type Step int

const (
	StepDetails Step = 1 // name, symbol, logo
	StepConfig  Step = 2 // decimals, supply, description
	StepSocial  Step = 3 // links and authority revocation
)

// Logo is an image selected by the user.
type Logo struct {
	FileName    string
	ContentType string
	Data        []byte
}

// FormState holds everything the user enters across the wizard steps.
type FormState struct {
	TokenName   string
	TokenSymbol string
	Logo        *Logo
	Decimals    int
	TokenSupply uint64
	Description string

	Creator  string
	Website  string
	Twitter  string
	Telegram string
	Discord  string

	RevokeFreeze bool
	RevokeMint   bool
	RevokeUpdate bool
}

// NewFormState returns a form populated with defaults.
func NewFormState() FormState {
	return FormState{
		Decimals:     DefaultDecimals,
		TokenSupply:  DefaultTokenSupply,
		RevokeFreeze: true,
		RevokeMint:   true,
		RevokeUpdate: true,
	}
}

// Normalize trims free-text fields and upper-cases the symbol.
func (f *FormState) Normalize() {
	f.TokenName = strings.TrimSpace(f.TokenName)
	f.TokenSymbol = strings.ToUpper(strings.TrimSpace(f.TokenSymbol))
	f.Description = strings.TrimSpace(f.Description)
	f.Creator = strings.TrimSpace(f.Creator)
	f.Website = strings.TrimSpace(f.Website)
	f.Twitter = strings.TrimSpace(f.Twitter)
	f.Telegram = strings.TrimSpace(f.Telegram)
	f.Discord = strings.TrimSpace(f.Discord)
}

// ValidateStep checks the fields owned by a single step.
// Step 3 has no required fields.
func (f FormState) ValidateStep(step Step) ValidationErrors {
	errs := ValidationErrors{}

	switch step {
	case StepDetails:
		if strings.TrimSpace(f.TokenName) == "" {
			errs[FieldTokenName] = "Token name is required"
		}
		symbol := strings.TrimSpace(f.TokenSymbol)
		if symbol == "" {
			errs[FieldTokenSymbol] = "Token symbol is required"
		} else if utf8.RuneCountInString(symbol) > MaxSymbolLength {
			errs[FieldTokenSymbol] = fmt.Sprintf("Token symbol cannot exceed %d characters", MaxSymbolLength)
		}
	case StepConfig:
		if strings.TrimSpace(f.Description) == "" {
			errs[FieldDescription] = "Description is required"
		}
		if f.TokenSupply == 0 {
			errs[FieldTokenSupply] = "Token supply must be greater than 0"
		}
		if f.Decimals < 0 || f.Decimals > MaxDecimals {
			errs[FieldDecimals] = fmt.Sprintf("Decimals must be between 0 and %d", MaxDecimals)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Validate checks every step.
func (f FormState) Validate() ValidationErrors {
	var all ValidationErrors
	for _, step := range []Step{StepDetails, StepConfig, StepSocial} {
		for field, msg := range f.ValidateStep(step) {
			if all == nil {
				all = ValidationErrors{}
			}
			all[field] = msg
		}
	}
	return all
}

// Revocations returns the authority revocation flags selected on step 3.
func (f FormState) Revocations() RevocationFlags {
	return RevocationFlags{
		Mint:   f.RevokeMint,
		Freeze: f.RevokeFreeze,
		Update: f.RevokeUpdate,
	}
}

// ValidationErrors maps a form field to a user-facing message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v[field])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}
