// Package codec converts image bytes to and from the text form sent to the probed services.
package codec

import (
	"encoding/base64"
	"fmt"
)

// Encode returns the standard, padded Base64 form of b as a single token.
func Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// Decode reverses Encode.
func Decode(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return b, nil
}
