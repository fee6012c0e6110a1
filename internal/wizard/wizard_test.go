package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-wizard/internal/domain"
	"solana-token-wizard/internal/orchestrator"
	"solana-token-wizard/internal/solana/stub"
	"solana-token-wizard/internal/storage"
	"solana-token-wizard/internal/storage/memory"
	"solana-token-wizard/internal/wallet"
)

type fakeIssuer struct {
	calls  int
	form   domain.FormState
	err    error
	result *domain.MintResult
}

func (f *fakeIssuer) Issue(_ context.Context, form domain.FormState, progress domain.ProgressFunc) (*domain.MintResult, error) {
	f.calls++
	f.form = form
	progress.Report(50, "halfway")
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func fillDetails(f *domain.FormState) {
	f.TokenName = "Solana Doge"
	f.TokenSymbol = "soldoge"
}

func fillConfig(f *domain.FormState) {
	f.Description = "fun"
}

func toSocial(t *testing.T, w *Wizard) {
	t.Helper()
	require.NoError(t, w.Update(fillDetails))
	require.NoError(t, w.Next())
	require.NoError(t, w.Update(fillConfig))
	require.NoError(t, w.Next())
	require.Equal(t, StateSocial, w.State())
}

func TestWizard_StartsOnDetailsWithDefaults(t *testing.T) {
	w := New(&fakeIssuer{}, nil)

	assert.Equal(t, StateDetails, w.State())
	assert.Equal(t, domain.StepDetails, w.State().Step())
	assert.Equal(t, domain.NewFormState(), w.Form())
}

func TestWizard_NextRejectsLongSymbol(t *testing.T) {
	w := New(&fakeIssuer{}, nil)
	require.NoError(t, w.Update(func(f *domain.FormState) {
		f.TokenName = "Doge"
		f.TokenSymbol = "TOOLONGSYM"
	}))

	err := w.Next()

	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, domain.FieldTokenSymbol)
	assert.Equal(t, StateDetails, w.State())
	assert.Contains(t, w.Errors(), domain.FieldTokenSymbol)
}

func TestWizard_NextGatesConfig(t *testing.T) {
	w := New(&fakeIssuer{}, nil)
	require.NoError(t, w.Update(fillDetails))
	require.NoError(t, w.Next())
	assert.Equal(t, StateConfig, w.State())
	assert.Equal(t, "SOLDOGE", w.Form().TokenSymbol)

	require.Error(t, w.Next())
	assert.Equal(t, StateConfig, w.State())
	assert.Contains(t, w.Errors(), domain.FieldDescription)

	require.NoError(t, w.Update(fillConfig))
	require.NoError(t, w.Next())
	assert.Equal(t, StateSocial, w.State())
	assert.Nil(t, w.Errors())
}

func TestWizard_BackIsUnconditional(t *testing.T) {
	w := New(&fakeIssuer{}, nil)
	toSocial(t, w)

	require.NoError(t, w.Update(func(f *domain.FormState) { f.Description = "" }))
	require.NoError(t, w.Back())
	assert.Equal(t, StateConfig, w.State())

	require.NoError(t, w.Update(func(f *domain.FormState) { f.TokenName = "" }))
	require.NoError(t, w.Back())
	assert.Equal(t, StateDetails, w.State())

	assert.ErrorIs(t, w.Back(), ErrInvalidTransition)
}

func TestWizard_SubmitSuccess(t *testing.T) {
	issuer := &fakeIssuer{result: &domain.MintResult{MintAddress: "mint"}}
	w := New(issuer, nil)
	toSocial(t, w)

	require.NoError(t, w.Submit(context.Background()))

	assert.Equal(t, StateSuccess, w.State())
	assert.Equal(t, "mint", w.Result().MintAddress)
	assert.Equal(t, 50, w.Progress().Percent)
	assert.Equal(t, "SOLDOGE", issuer.form.TokenSymbol)

	assert.ErrorIs(t, w.Update(fillDetails), ErrNotEditable)
	assert.ErrorIs(t, w.Submit(context.Background()), ErrInvalidTransition)
	assert.Equal(t, 1, issuer.calls)
}

func TestWizard_SubmitFailureAllowsRetry(t *testing.T) {
	issuer := &fakeIssuer{err: errors.New("user rejected the request")}
	w := New(issuer, nil)
	toSocial(t, w)

	err := w.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateFailure, w.State())
	assert.EqualError(t, w.Failure(), "user rejected the request")
	assert.Nil(t, w.Result())

	require.NoError(t, w.Update(func(f *domain.FormState) { f.RevokeUpdate = false }))
	assert.Equal(t, StateSocial, w.State())
	assert.NoError(t, w.Failure())

	issuer.err = nil
	issuer.result = &domain.MintResult{MintAddress: "mint"}
	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, StateSuccess, w.State())
	assert.False(t, issuer.form.RevokeUpdate)
}

func TestWizard_SubmitFromFailureDirectly(t *testing.T) {
	issuer := &fakeIssuer{err: errors.New("blockhash not found")}
	w := New(issuer, nil)
	toSocial(t, w)
	require.Error(t, w.Submit(context.Background()))

	issuer.err = nil
	issuer.result = &domain.MintResult{}
	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, 2, issuer.calls)
}

func TestWizard_SubmitRevalidates(t *testing.T) {
	issuer := &fakeIssuer{}
	w := New(issuer, nil)
	toSocial(t, w)
	require.NoError(t, w.Update(func(f *domain.FormState) { f.TokenSupply = 0 }))

	err := w.Submit(context.Background())

	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, domain.FieldTokenSupply)
	assert.Equal(t, StateConfig, w.State())
	assert.Zero(t, issuer.calls)
}

func TestWizard_SubmitRequiresStepThree(t *testing.T) {
	issuer := &fakeIssuer{}
	w := New(issuer, nil)

	assert.ErrorIs(t, w.Submit(context.Background()), ErrInvalidTransition)
	assert.Zero(t, issuer.calls)
}

func TestWizard_ResetClearsEverything(t *testing.T) {
	w := New(&fakeIssuer{result: &domain.MintResult{MintAddress: "mint"}}, nil)
	toSocial(t, w)
	require.NoError(t, w.Submit(context.Background()))

	require.NoError(t, w.Reset())

	assert.Equal(t, StateDetails, w.State())
	assert.Equal(t, domain.NewFormState(), w.Form())
	assert.Nil(t, w.Result())
	assert.Equal(t, domain.Progress{}, w.Progress())
}

func TestWizard_Preview(t *testing.T) {
	w := New(&fakeIssuer{}, nil)
	require.NoError(t, w.Update(func(f *domain.FormState) {
		fillDetails(f)
		fillConfig(f)
		f.Twitter = "https://x.com/soldoge"
	}))

	doc := w.Preview("creator")
	assert.Equal(t, "SOLDOGE", doc.Symbol)
	assert.Equal(t, "", doc.Image)
	assert.Empty(t, doc.Properties.Files)
	assert.Equal(t, "https://x.com/soldoge", doc.Links.Twitter)
	assert.Equal(t, 100, doc.Properties.Creators[0].Share)
}

func TestWizard_FormIsCopied(t *testing.T) {
	w := New(&fakeIssuer{}, nil)
	require.NoError(t, w.Update(func(f *domain.FormState) {
		f.Logo = &domain.Logo{Data: []byte{1, 2, 3}}
	}))

	form := w.Form()
	form.Logo.Data[0] = 9

	assert.Equal(t, byte(1), w.Form().Logo.Data[0])
}

func TestWizard_EndToEnd(t *testing.T) {
	rpc := stub.NewRPCClient()
	payer := types.NewAccount()
	mint := types.NewAccount()
	rpc.SetBalance(payer.PublicKey.ToBase58(), 2*domain.LamportsPerSOL)

	issuer, err := orchestrator.New(orchestrator.Options{
		RPC:    rpc,
		Wallet: wallet.NewKeypair(payer),
		Storage: storage.NewAdapter(storage.AdapterOptions{
			Policy: storage.DefaultPolicy(memory.NewRepository("http://content.test"), nil),
		}),
		MintGenerator: func() types.Account { return mint },
	})
	require.NoError(t, err)

	w := New(issuer, nil)
	toSocial(t, w)
	require.NoError(t, w.Submit(context.Background()))

	require.Equal(t, StateSuccess, w.State())
	assert.Equal(t, mint.PublicKey.ToBase58(), w.Result().MintAddress)
	assert.NotEmpty(t, w.Result().CreationSignature)
	assert.Equal(t, 100, w.Progress().Percent)
	assert.Equal(t, "SOLDOGE", w.Form().TokenSymbol)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "submitting", StateSubmitting.String())
	assert.Equal(t, domain.Step(0), StateSuccess.Step())
}
