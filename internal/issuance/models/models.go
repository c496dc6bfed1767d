// Package models defines the issuance orchestrator's settings, requests and results.
package models

import (
	"errors"
	"strings"

	"zkid/internal/verifier"
	id "zkid/pkg/domain"
	dErrors "zkid/pkg/domain-errors"
	"zkid/pkg/platform/validation"
)

// DataKey tags one persisted orchestrator setting. The set is closed.
type DataKey string

const (
	DataKeyAdmin       DataKey = "Admin"
	DataKeyVerifierRef DataKey = "VerifierRef"
	DataKeyStoreRef    DataKey = "StoreRef"
)

// DataKeys lists every setting written by Initialize.
var DataKeys = []DataKey{DataKeyAdmin, DataKeyVerifierRef, DataKeyStoreRef}

func (k DataKey) String() string { return string(k) }

// IsValid reports whether k belongs to the closed set.
func (k DataKey) IsValid() bool {
	switch k {
	case DataKeyAdmin, DataKeyVerifierRef, DataKeyStoreRef:
		return true
	default:
		return false
	}
}

// InitializeRequest registers the administrator and the two capabilities.
// Caller is the authenticated principal and must equal Admin.
type InitializeRequest struct {
	Caller      id.Principal `json:"-"`
	Admin       id.Principal `json:"admin"`
	VerifierRef id.Reference `json:"verifier_ref"`
	StoreRef    id.Reference `json:"store_ref"`
}

func (r *InitializeRequest) Normalize() {
	r.Admin = id.Principal(strings.TrimSpace(string(r.Admin)))
	r.VerifierRef = id.Reference(strings.TrimSpace(string(r.VerifierRef)))
	r.StoreRef = id.Reference(strings.TrimSpace(string(r.StoreRef)))
}

func (r *InitializeRequest) Validate() error {
	var errs []error
	if _, err := id.ParsePrincipal(string(r.Admin)); err != nil {
		errs = append(errs, dErrors.Reclassify(err, dErrors.CodeValidation, "admin: "+err.Error()))
	}
	if _, err := id.ParseReference(string(r.VerifierRef)); err != nil {
		errs = append(errs, dErrors.Reclassify(err, dErrors.CodeValidation, "verifier_ref: "+err.Error()))
	}
	if _, err := id.ParseReference(string(r.StoreRef)); err != nil {
		errs = append(errs, dErrors.Reclassify(err, dErrors.CodeValidation, "store_ref: "+err.Error()))
	}
	return errors.Join(errs...)
}

// Values maps the request onto the tagged settings.
func (r *InitializeRequest) Values() map[DataKey]string {
	return map[DataKey]string{
		DataKeyAdmin:       r.Admin.String(),
		DataKeyVerifierRef: r.VerifierRef.String(),
		DataKeyStoreRef:    r.StoreRef.String(),
	}
}

// MintRequest asks for a credential for Subject, gated on a proof.
// VerificationKey and Proof are base64 in JSON and forwarded unchanged.
type MintRequest struct {
	Caller          id.Principal `json:"-"`
	Subject         id.Principal `json:"subject"`
	Expiration      uint64       `json:"expiration"`
	VerificationKey []byte       `json:"verification_key"`
	Proof           []byte       `json:"proof"`
}

func (r *MintRequest) Normalize() {
	r.Subject = id.Principal(strings.TrimSpace(string(r.Subject)))
}

func (r *MintRequest) Validate() error {
	var errs []error
	if _, err := id.ParsePrincipal(string(r.Subject)); err != nil {
		errs = append(errs, dErrors.Reclassify(err, dErrors.CodeValidation, "subject: "+err.Error()))
	}
	errs = append(errs,
		validation.CheckBytes("verification_key", r.VerificationKey, validation.MaxVerificationKeySize),
		validation.CheckBytes("proof", r.Proof, validation.MaxProofSize),
	)
	return errors.Join(errs...)
}

// IssuanceResult describes a minted credential.
type IssuanceResult struct {
	TokenID    id.TokenID
	Subject    id.Principal
	Expiration uint64
	ProofID    verifier.ProofID
}
