// Package schnorr verifies non-interactive Schnorr proofs of knowledge of a
// discrete logarithm (RFC 8235) over the Ristretto255 group.
//
// A verification key names the prover's public key together with the user
// and context strings bound into the Fiat-Shamir challenge. A proof is the
// 64-byte concatenation V || R.
package schnorr

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/cloudflare/circl/group"
	"github.com/cloudflare/circl/zk/dl"

	"zkid/internal/verifier"
	dErrors "zkid/pkg/domain-errors"
	"zkid/pkg/platform/validation"
)

// Scheme is the verification key scheme identifier.
const Scheme = "schnorr-ristretto255"

const (
	elementSize = 32
	scalarSize  = 32
	// ProofSize is the encoded proof length.
	ProofSize = elementSize + scalarSize
)

// Rejection reasons reported in Outcome.Reason.
const (
	ReasonMalformedKey     = "malformed verification key"
	ReasonUnsupportedKey   = "unsupported verification key scheme"
	ReasonInvalidPublicKey = "invalid public key"
	ReasonMalformedProof   = "malformed proof"
	ReasonProofInvalid     = "proof does not verify"
)

var g = group.Ristretto255

var (
	errSecretMismatch = errors.New("secret does not match verification key")
	errInvalidSecret  = errors.New("invalid secret scalar")
)

// VerificationKey is the JSON document a prover publishes.
// PublicKey is base64 in JSON.
type VerificationKey struct {
	Scheme    string `json:"scheme"`
	PublicKey []byte `json:"public_key"`
	UserID    string `json:"user_id"`
	Context   string `json:"context"`
}

// Marshal encodes the key as JSON.
func (k VerificationKey) Marshal() ([]byte, error) {
	return json.Marshal(k)
}

// ParseVerificationKey decodes and checks a verification key document.
func ParseVerificationKey(raw []byte) (VerificationKey, group.Element, string) {
	var vk VerificationKey
	if err := json.Unmarshal(raw, &vk); err != nil {
		return VerificationKey{}, nil, ReasonMalformedKey
	}
	if vk.Scheme != Scheme {
		return VerificationKey{}, nil, ReasonUnsupportedKey
	}
	if len(vk.PublicKey) != elementSize {
		return VerificationKey{}, nil, ReasonInvalidPublicKey
	}
	pub := g.NewElement()
	if err := pub.UnmarshalBinary(vk.PublicKey); err != nil || pub.IsIdentity() {
		return VerificationKey{}, nil, ReasonInvalidPublicKey
	}
	return vk, pub, ""
}

// KeyPair is a secret scalar with its verification key.
type KeyPair struct {
	Secret []byte
	Key    VerificationKey
}

// GenerateKey draws a fresh secret and derives the verification key bound to
// userID and proofContext.
func GenerateKey(rnd io.Reader, userID, proofContext string) (*KeyPair, error) {
	x := g.RandomScalar(rnd)
	secret, err := x.MarshalBinary()
	if err != nil {
		return nil, err
	}
	pub, err := g.NewElement().Mul(g.Generator(), x).MarshalBinary()
	if err != nil {
		return nil, err
	}
	return &KeyPair{
		Secret: secret,
		Key: VerificationKey{
			Scheme:    Scheme,
			PublicKey: pub,
			UserID:    userID,
			Context:   proofContext,
		},
	}, nil
}

// Prove produces a proof of knowledge of secret for vk.
func Prove(secret []byte, vk VerificationKey, rnd io.Reader) ([]byte, error) {
	raw, err := vk.Marshal()
	if err != nil {
		return nil, err
	}
	_, pub, reason := ParseVerificationKey(raw)
	if reason != "" {
		return nil, errors.New(reason)
	}

	x := g.NewScalar()
	if err := x.UnmarshalBinary(secret); err != nil {
		return nil, errInvalidSecret
	}
	if !g.NewElement().Mul(g.Generator(), x).IsEqual(pub) {
		return nil, errSecretMismatch
	}

	proof := dl.Prove(g, g.Generator(), pub, x, []byte(vk.UserID), []byte(vk.Context), rnd)
	v, err := proof.V.MarshalBinary()
	if err != nil {
		return nil, err
	}
	r, err := proof.R.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(v, r...), nil
}

// Verifier checks Schnorr proofs locally.
type Verifier struct {
	logger *slog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithLogger sets the logger for rejected proofs.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// New creates a local Schnorr verifier.
func New(opts ...Option) *Verifier {
	v := &Verifier{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VerifyProof implements verifier.Verifier.
//
// Errors: returns a timeout error only when ctx is already done. Every
// malformed or invalid input yields a rejecting Outcome.
func (v *Verifier) VerifyProof(ctx context.Context, verificationKey, proof []byte) (verifier.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return verifier.Outcome{}, dErrors.Wrap(err, dErrors.CodeTimeout, "verification cancelled")
	}

	proofID := verifier.Fingerprint(verificationKey, proof)
	reject := func(reason string) (verifier.Outcome, error) {
		if v.logger != nil {
			v.logger.DebugContext(ctx, "schnorr proof rejected",
				"proof_id", proofID.String(),
				"reason", reason,
			)
		}
		return verifier.Reject(proofID, reason), nil
	}

	if len(verificationKey) == 0 || len(verificationKey) > validation.MaxVerificationKeySize {
		return reject(ReasonMalformedKey)
	}
	vk, pub, reason := ParseVerificationKey(verificationKey)
	if reason != "" {
		return reject(reason)
	}

	p, ok := decodeProof(proof)
	if !ok {
		return reject(ReasonMalformedProof)
	}
	if !dl.Verify(g, g.Generator(), pub, p, []byte(vk.UserID), []byte(vk.Context)) {
		return reject(ReasonProofInvalid)
	}
	return verifier.Accept(proofID), nil
}

func decodeProof(b []byte) (dl.Proof, bool) {
	if len(b) != ProofSize {
		return dl.Proof{}, false
	}
	v := g.NewElement()
	if err := v.UnmarshalBinary(b[:elementSize]); err != nil {
		return dl.Proof{}, false
	}
	r := g.NewScalar()
	if err := r.UnmarshalBinary(b[elementSize:]); err != nil {
		return dl.Proof{}, false
	}
	return dl.Proof{V: v, R: r}, true
}
