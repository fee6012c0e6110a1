// Package wizard implements the three-step token creation form.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"solana-token-wizard/internal/domain"
	"solana-token-wizard/internal/metadata"
)

// State is the wizard's current page or terminal state.
type State int

const (
	StateDetails State = iota + 1
	StateConfig
	StateSocial
	StateSubmitting
	StateSuccess
	StateFailure
)

func (s State) String() string {
	switch s {
	case StateDetails:
		return "details"
	case StateConfig:
		return "config"
	case StateSocial:
		return "social"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Step maps an editable state to its form step. It returns 0 otherwise.
func (s State) Step() domain.Step {
	switch s {
	case StateDetails:
		return domain.StepDetails
	case StateConfig:
		return domain.StepConfig
	case StateSocial:
		return domain.StepSocial
	}
	return 0
}

func stateFor(step domain.Step) State {
	switch step {
	case domain.StepDetails:
		return StateDetails
	case domain.StepConfig:
		return StateConfig
	}
	return StateSocial
}

// Transition errors.
var (
	ErrNotEditable       = errors.New("form is not editable in this state")
	ErrInvalidTransition = errors.New("invalid wizard transition")
)

// Issuer creates the token once the form is complete.
type Issuer interface {
	Issue(ctx context.Context, form domain.FormState, progress domain.ProgressFunc) (*domain.MintResult, error)
}

// Wizard holds the form and drives it through the steps.
// It is safe for concurrent use, so progress can be read while Submit runs.
type Wizard struct {
	mu sync.Mutex

	issuer Issuer
	logger *log.Logger

	state    State
	form     domain.FormState
	errs     domain.ValidationErrors
	progress domain.Progress
	result   *domain.MintResult
	failure  error
}

// New creates a wizard on step 1 with a default form.
func New(issuer Issuer, logger *log.Logger) *Wizard {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Wizard{
		issuer: issuer,
		logger: logger,
		state:  StateDetails,
		form:   domain.NewFormState(),
	}
}

// Update edits the form. Editing after a failure returns the wizard to
// step 3.
func (w *Wizard) Update(fn func(*domain.FormState)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateDetails, StateConfig, StateSocial:
	case StateFailure:
		w.state = StateSocial
		w.failure = nil
	default:
		return fmt.Errorf("%w: %s", ErrNotEditable, w.state)
	}
	fn(&w.form)
	return nil
}

// Next validates the current step and advances. On validation failure the
// step is unchanged and the returned domain.ValidationErrors are also kept
// in Errors.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var next State
	switch w.state {
	case StateDetails:
		next = StateConfig
	case StateConfig:
		next = StateSocial
	default:
		return fmt.Errorf("%w: next from %s", ErrInvalidTransition, w.state)
	}

	if errs := w.form.ValidateStep(w.state.Step()); errs != nil {
		w.errs = errs
		return errs
	}
	w.form.Normalize()
	w.errs = nil
	w.state = next
	return nil
}

// Back returns to the previous step without validating the current one.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateConfig:
		w.state = StateDetails
	case StateSocial, StateFailure:
		w.state = StateConfig
		w.failure = nil
	default:
		return fmt.Errorf("%w: back from %s", ErrInvalidTransition, w.state)
	}
	w.errs = nil
	return nil
}

// Submit validates every step and issues the token. It blocks until the
// issuer returns. A form that no longer validates moves the wizard to the
// first invalid step instead of submitting.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	if w.state != StateSocial && w.state != StateFailure {
		state := w.state
		w.mu.Unlock()
		return fmt.Errorf("%w: submit from %s", ErrInvalidTransition, state)
	}
	if errs := w.form.Validate(); errs != nil {
		w.errs = errs
		for _, step := range []domain.Step{domain.StepDetails, domain.StepConfig} {
			if w.form.ValidateStep(step) != nil {
				w.state = stateFor(step)
				break
			}
		}
		w.mu.Unlock()
		return errs
	}

	w.form.Normalize()
	form := w.form
	w.errs = nil
	w.failure = nil
	w.result = nil
	w.progress = domain.Progress{}
	w.state = StateSubmitting
	w.mu.Unlock()

	w.logger.Printf("submitting %s (%s)", form.TokenName, form.TokenSymbol)
	result, err := w.issuer.Issue(ctx, form, w.setProgress)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.logger.Printf("submission failed: %v", err)
		w.state = StateFailure
		w.failure = err
		return err
	}
	w.state = StateSuccess
	w.result = result
	return nil
}

func (w *Wizard) setProgress(p domain.Progress) {
	w.mu.Lock()
	w.progress = p
	w.mu.Unlock()
}

// Reset discards the form and any result and starts over on step 1.
func (w *Wizard) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateSubmitting {
		return fmt.Errorf("%w: reset while submitting", ErrInvalidTransition)
	}
	w.state = StateDetails
	w.form = domain.NewFormState()
	w.errs = nil
	w.progress = domain.Progress{}
	w.result = nil
	w.failure = nil
	return nil
}

// Preview returns the metadata document the current form would produce,
// before any logo is uploaded.
func (w *Wizard) Preview(creatorAddress string) domain.MetadataDocument {
	w.mu.Lock()
	form := w.form
	w.mu.Unlock()
	return metadata.Compose(form, creatorAddress, "")
}

// State returns the current state.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Form returns a copy of the form.
func (w *Wizard) Form() domain.FormState {
	w.mu.Lock()
	defer w.mu.Unlock()
	form := w.form
	if form.Logo != nil {
		logo := *form.Logo
		logo.Data = append([]byte(nil), logo.Data...)
		form.Logo = &logo
	}
	return form
}

// Errors returns the validation errors of the last rejected transition.
func (w *Wizard) Errors() domain.ValidationErrors {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.errs == nil {
		return nil
	}
	out := make(domain.ValidationErrors, len(w.errs))
	for k, v := range w.errs {
		out[k] = v
	}
	return out
}

// Progress returns the latest progress update of the running or last
// submission.
func (w *Wizard) Progress() domain.Progress {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.progress
}

// Result returns the mint result after a successful submission.
func (w *Wizard) Result() *domain.MintResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// Failure returns the error of the last failed submission.
func (w *Wizard) Failure() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failure
}
