// Package validation bounds untrusted input before it reaches services or
// cryptography.
package validation

import (
	"fmt"

	dErrors "zkid/pkg/domain-errors"
)

const MaxBodySize = 64 << 10

// Byte limits apply after base64 decoding.
const (
	MaxVerificationKeySize = 8 << 10
	MaxProofSize           = 16 << 10
)

const (
	MaxRegistryNameLength   = 100
	MaxRegistrySymbolLength = 16
	MaxBaseURILength        = 2048
)

// CheckStringLength fails when value is longer than max bytes.
func CheckStringLength(field, value string, max int) error {
	if len(value) <= max {
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", field, max))
}

// CheckBytes fails when value is empty or longer than max.
func CheckBytes(field string, value []byte, max int) error {
	switch {
	case len(value) == 0:
		return dErrors.New(dErrors.CodeValidation, field+" is required")
	case len(value) > max:
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max size of %d bytes", field, max))
	}
	return nil
}
