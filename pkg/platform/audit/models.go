package audit

import (
	"context"
	"time"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Subject   string    `json:"subject,omitempty"`
	// TokenID is the decimal credential id; empty when no credential was minted.
	TokenID  string `json:"token_id,omitempty"`
	Decision string `json:"decision,omitempty"`
	Reason   string `json:"reason,omitempty"`
	// ProofFingerprint is a BLAKE2b digest of the verification key and proof.
	// Raw proof bytes never reach the audit trail.
	ProofFingerprint string `json:"proof_fingerprint,omitempty"`
	RequestID        string `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventIssuanceInitialized AuditEvent = "issuance_initialized"
	EventRegistryInitialized AuditEvent = "registry_initialized"
	EventCredentialIssued    AuditEvent = "credential_issued"
	EventIssuanceRejected    AuditEvent = "credential_issuance_rejected"
)

// Decisions recorded on issuance events.
const (
	DecisionGranted = "granted"
	DecisionDenied  = "denied"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Emitter is the interface for audit event emission.
// Satisfied by publisher.Publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
