// Package secrets generates shared secrets such as JWT signing keys and
// service-to-service API keys.
package secrets

import (
	"crypto/rand"
	"encoding/base64"

	dErrors "zkid/pkg/domain-errors"
)

// DefaultSize is the number of random bytes in a generated secret.
const DefaultSize = 32

// minSize keeps generated HS256 keys and API keys out of brute-force range.
const minSize = 16

// Generate returns size random bytes encoded as unpadded base64url.
func Generate(size int) (string, error) {
	if size < minSize {
		return "", dErrors.New(dErrors.CodeValidation, "secret size must be at least 16 bytes")
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate secret")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
