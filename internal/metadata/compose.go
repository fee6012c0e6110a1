// Package metadata builds the off-chain token metadata document.
package metadata

import (
	"encoding/json"
	"strings"

	"solana-token-wizard/internal/domain"
)

const (
	// Category is the fixed category advertised in properties.
	Category = "token"

	// DefaultFileType is used when the logo carries no content type.
	DefaultFileType = "image/png"

	// CreatorShare is the share given to the single creator entry.
	CreatorShare = 100
)

// Compose builds the metadata document for a form. It performs no I/O and
// returns the same document for the same inputs.
//
// imageLocator is empty when no logo was uploaded. In that case image is
// the empty string and files is an empty list.
func Compose(form domain.FormState, creatorAddress, imageLocator string) domain.MetadataDocument {
	files := []domain.MetadataFile{}
	if imageLocator != "" {
		files = append(files, domain.MetadataFile{
			URI:  imageLocator,
			Type: fileType(form.Logo),
		})
	}

	return domain.MetadataDocument{
		Name:        strings.TrimSpace(form.TokenName),
		Symbol:      strings.ToUpper(strings.TrimSpace(form.TokenSymbol)),
		Description: strings.TrimSpace(form.Description),
		Image:       imageLocator,
		ExternalURL: strings.TrimSpace(form.Website),
		Properties: domain.MetadataProperties{
			Files:    files,
			Category: Category,
			Creators: []domain.MetadataCreator{
				{Address: creatorAddress, Share: CreatorShare},
			},
		},
		Links: domain.MetadataLinks{
			Website:  strings.TrimSpace(form.Website),
			Twitter:  strings.TrimSpace(form.Twitter),
			Telegram: strings.TrimSpace(form.Telegram),
			Discord:  strings.TrimSpace(form.Discord),
		},
	}
}

// Encode serializes a document to JSON.
func Encode(doc domain.MetadataDocument) ([]byte, error) {
	return json.Marshal(doc)
}

// Decode parses a JSON metadata document.
func Decode(data []byte) (domain.MetadataDocument, error) {
	var doc domain.MetadataDocument
	err := json.Unmarshal(data, &doc)
	return doc, err
}

func fileType(logo *domain.Logo) string {
	if logo == nil || logo.ContentType == "" {
		return DefaultFileType
	}
	return logo.ContentType
}
