package txbuilder

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/types"
)

// On-chain metadata limits, in bytes.
const (
	MaxMetadataName   = 32
	MaxMetadataSymbol = 10
	MaxMetadataURI    = 200
)

// MetadataParams describes the on-chain metadata account for a mint.
type MetadataParams struct {
	Mint      common.PublicKey
	Authority common.PublicKey // mint authority, payer and update authority
	Name      string
	Symbol    string
	URI       string
}

// Validate checks the on-chain length limits.
func (p MetadataParams) Validate() error {
	switch {
	case len(p.Name) > MaxMetadataName:
		return fmt.Errorf("%w: name is %d bytes, max %d", ErrMetadataFieldTooLong, len(p.Name), MaxMetadataName)
	case len(p.Symbol) > MaxMetadataSymbol:
		return fmt.Errorf("%w: symbol is %d bytes, max %d", ErrMetadataFieldTooLong, len(p.Symbol), MaxMetadataSymbol)
	case len(p.URI) > MaxMetadataURI:
		return fmt.Errorf("%w: uri is %d bytes, max %d", ErrMetadataFieldTooLong, len(p.URI), MaxMetadataURI)
	}
	return nil
}

// AttachMetadata returns the instruction creating a mutable metadata
// account whose URI points at the uploaded document.
func AttachMetadata(p MetadataParams) (types.Instruction, error) {
	if err := p.Validate(); err != nil {
		return types.Instruction{}, err
	}
	metadata, err := token_metadata.GetTokenMetaPubkey(p.Mint)
	if err != nil {
		return types.Instruction{}, fmt.Errorf("GetTokenMetaPubkey: %w", err)
	}

	return token_metadata.CreateMetadataAccountV3(
		token_metadata.CreateMetadataAccountV3Param{
			Metadata:                metadata,
			Mint:                    p.Mint,
			MintAuthority:           p.Authority,
			UpdateAuthority:         p.Authority,
			Payer:                   p.Authority,
			UpdateAuthorityIsSigner: true,
			IsMutable:               true,
			Data: token_metadata.DataV2{
				Name:                 p.Name,
				Symbol:               p.Symbol,
				Uri:                  p.URI,
				SellerFeeBasisPoints: 0,
				Creators: &[]token_metadata.Creator{
					{
						Address:  p.Authority,
						Verified: true,
						Share:    100,
					},
				},
			},
		},
	), nil
}
