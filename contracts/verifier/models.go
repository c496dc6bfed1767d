// Package verifier holds the wire DTOs shared by the issuance server and the
// standalone verifier service. Keep these versioned independently from the
// internal verifier types.
package verifier

// ContractVersion identifies the schema of the /verify exchange.
const ContractVersion = "v0.1.0"

// VerifyRequest is the body of POST /verify. Byte fields are base64 in JSON.
type VerifyRequest struct {
	VerificationKey []byte `json:"verification_key"`
	Proof           []byte `json:"proof"`
}

// VerifyResponse is the verdict. ProofID is the hex BLAKE2b-256 fingerprint.
type VerifyResponse struct {
	Accepted bool   `json:"accepted"`
	ProofID  string `json:"proof_id"`
	Reason   string `json:"reason,omitempty"`
}
