// Package checksum fingerprints persisted documents so unchanged saves can
// be skipped.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Document encodes v as JSON and returns the encoding with its digest.
// encoding/json sorts map keys, so equal values hash equally.
func Document(v any) ([]byte, string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, "", fmt.Errorf("checksum: encode: %w", err)
	}
	return raw, Sum(raw), nil
}
