package revocation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-wizard/internal/domain"
)

type recordingFactory struct {
	built [][]types.Instruction
}

func (f *recordingFactory) Build(_ context.Context, _ common.PublicKey, ixs ...types.Instruction) (types.Transaction, error) {
	f.built = append(f.built, ixs)
	return types.Transaction{}, nil
}

type scriptedSubmitter struct {
	calls  int
	failOn map[int]error
}

func (s *scriptedSubmitter) Submit(context.Context, types.Transaction) (string, error) {
	s.calls++
	if err := s.failOn[s.calls]; err != nil {
		return "", err
	}
	return fmt.Sprintf("sig-%d", s.calls), nil
}

func newRequest(flags domain.RevocationFlags, granted Grants) Request {
	return Request{
		Mint:      types.NewAccount().PublicKey,
		Authority: types.NewAccount().PublicKey,
		Flags:     flags,
		Granted:   granted,
	}
}

func TestSequencer_RevokesInOrder(t *testing.T) {
	factory := &recordingFactory{}
	submitter := &scriptedSubmitter{}
	seq := NewSequencer(Options{Factory: factory, Submitter: submitter})

	out := seq.Run(context.Background(), newRequest(
		domain.RevocationFlags{Mint: true, Freeze: true, Update: true},
		Grants{Mint: true, Freeze: true, Update: true},
	))

	assert.Equal(t, domain.RevocationSignatures{Mint: "sig-1", Freeze: "sig-2", Update: "sig-3"}, out.Signatures)
	assert.Empty(t, out.Failed)
	require.Len(t, out.Reports, 3)
	for i, a := range domain.RevocationOrder {
		assert.Equal(t, a, out.Reports[i].Authority)
		assert.Equal(t, domain.RevocationRevoked, out.Reports[i].Status)
	}

	require.Len(t, factory.built, 3)
	assert.Equal(t, common.TokenProgramID, factory.built[0][0].ProgramID)
	assert.Equal(t, common.TokenProgramID, factory.built[1][0].ProgramID)
	assert.Equal(t, common.MetaplexTokenMetaProgramID, factory.built[2][0].ProgramID)
}

func TestSequencer_ContinuesAfterFailure(t *testing.T) {
	submitter := &scriptedSubmitter{failOn: map[int]error{2: errors.New("blockhash expired")}}
	seq := NewSequencer(Options{Factory: &recordingFactory{}, Submitter: submitter})

	out := seq.Run(context.Background(), newRequest(
		domain.RevocationFlags{Mint: true, Freeze: true, Update: true},
		Grants{Mint: true, Freeze: true, Update: true},
	))

	assert.Equal(t, 3, submitter.calls)
	assert.Equal(t, "sig-1", out.Signatures.Mint)
	assert.Empty(t, out.Signatures.Freeze)
	assert.Equal(t, "sig-3", out.Signatures.Update)
	assert.Equal(t, []domain.Authority{domain.AuthorityFreeze}, out.Failed)
	assert.Equal(t, domain.RevocationIncomplete, out.Reports[1].Status)
	assert.Contains(t, out.Reports[1].Error, "blockhash expired")
}

func TestSequencer_SkipsUnrequestedAndUngranted(t *testing.T) {
	submitter := &scriptedSubmitter{}
	seq := NewSequencer(Options{Factory: &recordingFactory{}, Submitter: submitter})

	out := seq.Run(context.Background(), newRequest(
		domain.RevocationFlags{Mint: false, Freeze: true, Update: true},
		Grants{Mint: true, Freeze: false, Update: true},
	))

	assert.Equal(t, 1, submitter.calls)
	assert.Empty(t, out.Failed)
	assert.Equal(t, domain.RevocationSignatures{Update: "sig-1"}, out.Signatures)
	assert.Equal(t, domain.RevocationNotRequested, out.Reports[0].Status)
	assert.Equal(t, domain.RevocationNotGranted, out.Reports[1].Status)
	assert.Equal(t, domain.RevocationRevoked, out.Reports[2].Status)
}

func TestSequencer_NothingRequested(t *testing.T) {
	submitter := &scriptedSubmitter{}
	seq := NewSequencer(Options{Factory: &recordingFactory{}, Submitter: submitter})

	out := seq.Run(context.Background(), newRequest(domain.RevocationFlags{}, Grants{Mint: true, Update: true}))

	assert.Zero(t, submitter.calls)
	assert.Equal(t, domain.RevocationSignatures{}, out.Signatures)
	require.Len(t, out.Reports, 3)
}
