// Package domain provides typed identifiers shared by the issuance and credential modules.
package domain

import (
	"regexp"
	"strconv"
	"strings"

	dErrors "zkid/pkg/domain-errors"
)

// MaxIdentifierLength bounds principals and references at trust boundaries.
const MaxIdentifierLength = 128

var validIdentifier = regexp.MustCompile(`^[A-Za-z0-9._:@/-]+$`)

// Distinct types - compiler prevents passing a Reference where a Principal is expected.
type (
	// Principal is an authenticated account address (administrator, subject, registry owner).
	Principal string
	// Reference names a capability (verifier or credential store) registered at startup.
	Reference string
	// TokenID identifies a minted credential. Assigned sequentially from 0.
	TokenID uint64
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParsePrincipal(s string) (Principal, error) {
	v, err := parseIdentifier(s, "principal")
	return Principal(v), err
}

func ParseReference(s string) (Reference, error) {
	v, err := parseIdentifier(s, "reference")
	return Reference(v), err
}

func ParseTokenID(s string) (TokenID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "token ID cannot be empty")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid token ID format")
	}
	return TokenID(v), nil
}

// String methods - for logging and debugging.

func (p Principal) String() string { return string(p) }
func (r Reference) String() string { return string(r) }
func (t TokenID) String() string   { return strconv.FormatUint(uint64(t), 10) }

// IsNil checks - used for service-layer validation.

func (p Principal) IsNil() bool { return p == "" }
func (r Reference) IsNil() bool { return r == "" }

func parseIdentifier(s, label string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	if len(s) > MaxIdentifierLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, label+" is too long")
	}
	if !validIdentifier.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return s, nil
}
