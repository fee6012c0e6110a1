package storage

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	inlinePrefix     = "data:"
	inlineBase64Mark = ";base64,"

	defaultBlobType = "application/octet-stream"
	jsonType        = "application/json"
)

// EncodeInline embeds content in a data URL.
func EncodeInline(contentType string, data []byte) string {
	if contentType == "" {
		contentType = defaultBlobType
	}
	return inlinePrefix + contentType + inlineBase64Mark + base64.StdEncoding.EncodeToString(data)
}

// DecodeInline returns the content type and payload of a data URL produced
// by EncodeInline.
func DecodeInline(locator string) (string, []byte, error) {
	if !IsInline(locator) {
		return "", nil, ErrInvalidLocator
	}
	rest := strings.TrimPrefix(locator, inlinePrefix)
	idx := strings.Index(rest, inlineBase64Mark)
	if idx < 0 {
		return "", nil, ErrInvalidLocator
	}
	data, err := base64.StdEncoding.DecodeString(rest[idx+len(inlineBase64Mark):])
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidLocator, err)
	}
	return rest[:idx], data, nil
}

// IsInline reports whether a locator carries its content inline.
func IsInline(locator string) bool {
	return strings.HasPrefix(locator, inlinePrefix)
}
