// Package models defines the credential registry domain types.
package models

import (
	"errors"
	"strconv"
	"strings"
	"time"

	id "zkid/pkg/domain"
	dErrors "zkid/pkg/domain-errors"
	"zkid/pkg/platform/validation"
)

// Registry is the single credential registry: its metadata, the principal
// allowed to mint and the number of credentials minted so far.
type Registry struct {
	Owner       id.Principal
	Name        string
	Symbol      string
	BaseURI     string
	TotalSupply uint64
	CreatedAt   time.Time
}

// TokenURI joins the base URI with the decimal token id.
func (r *Registry) TokenURI(tokenID id.TokenID) string {
	return r.BaseURI + tokenID.String()
}

// Credential is one minted token and its expiration ledger entry.
type Credential struct {
	TokenID id.TokenID
	Owner   id.Principal
	// Expiration is unix seconds; 0 means the credential never expires.
	Expiration uint64
	IssuedAt   time.Time
}

// ExpiredAt reports whether the credential is past its expiration at now.
// The comparison is strict: a credential is still valid at its expiration second.
func (c *Credential) ExpiredAt(now time.Time) bool {
	return IsExpired(c.Expiration, now)
}

// IsExpired applies the expiration rule to a raw ledger value.
func IsExpired(expiration uint64, now time.Time) bool {
	if expiration == 0 {
		return false
	}
	secs := now.Unix()
	if secs < 0 {
		return false
	}
	return uint64(secs) > expiration
}

// InitializeRequest sets up the registry. Caller is the authenticated principal.
type InitializeRequest struct {
	Caller  id.Principal `json:"-"`
	Owner   id.Principal `json:"owner"`
	Name    string       `json:"name"`
	Symbol  string       `json:"symbol"`
	BaseURI string       `json:"base_uri"`
}

func (r *InitializeRequest) Normalize() {
	r.Owner = id.Principal(strings.TrimSpace(string(r.Owner)))
	r.Name = strings.TrimSpace(r.Name)
	r.Symbol = strings.TrimSpace(r.Symbol)
	r.BaseURI = strings.TrimSpace(r.BaseURI)
}

func (r *InitializeRequest) Validate() error {
	var errs []error
	if _, err := id.ParsePrincipal(string(r.Owner)); err != nil {
		errs = append(errs, dErrors.Reclassify(err, dErrors.CodeValidation, "owner: invalid principal"))
	}
	if r.Name == "" {
		errs = append(errs, dErrors.New(dErrors.CodeValidation, "name is required"))
	}
	if r.Symbol == "" {
		errs = append(errs, dErrors.New(dErrors.CodeValidation, "symbol is required"))
	}
	errs = append(errs,
		validation.CheckStringLength("name", r.Name, validation.MaxRegistryNameLength),
		validation.CheckStringLength("symbol", r.Symbol, validation.MaxRegistrySymbolLength),
		validation.CheckStringLength("base_uri", r.BaseURI, validation.MaxBaseURILength),
	)
	return errors.Join(errs...)
}

// ParseIndex parses a zero-based enumeration index.
func ParseIndex(s string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid index format")
	}
	return v, nil
}
