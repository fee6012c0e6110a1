package txbuilder

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"

	"solana-token-wizard/internal/domain"
)

// RevokeInstruction clears an authority of mint held by current.
//
// Mint and freeze authorities are set to none on the mint account. The
// update authority is revoked by marking the metadata account immutable.
func RevokeInstruction(a domain.Authority, mint, current common.PublicKey) (types.Instruction, error) {
	switch a {
	case domain.AuthorityMint:
		return token.SetAuthority(token.SetAuthorityParam{
			Account:  mint,
			NewAuth:  nil,
			AuthType: token.AuthorityTypeMintTokens,
			Auth:     current,
		}), nil
	case domain.AuthorityFreeze:
		return token.SetAuthority(token.SetAuthorityParam{
			Account:  mint,
			NewAuth:  nil,
			AuthType: token.AuthorityTypeFreezeAccount,
			Auth:     current,
		}), nil
	case domain.AuthorityUpdate:
		metadata, err := token_metadata.GetTokenMetaPubkey(mint)
		if err != nil {
			return types.Instruction{}, fmt.Errorf("GetTokenMetaPubkey: %w", err)
		}
		immutable := false
		return token_metadata.UpdateMetadataAccountV2(token_metadata.UpdateMetadataAccountV2Param{
			MetadataAccount: metadata,
			UpdateAuthority: current,
			IsMutable:       &immutable,
		}), nil
	}
	return types.Instruction{}, fmt.Errorf("%w: %q", ErrUnknownAuthority, a)
}
