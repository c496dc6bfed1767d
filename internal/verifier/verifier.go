// Package verifier defines the proof verification capability used by issuance.
//
// A Verifier is deterministic and side-effect free: the same verification key
// and proof always yield the same Outcome. The error return is reserved for
// calls that could not reach a verdict (transport failure, open circuit,
// cancelled context). A malformed or invalid proof is a rejection, not an error.
package verifier

//go:generate mockgen -source=verifier.go -destination=mocks/mocks.go -package=mocks Verifier

import (
	"context"
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Verifier checks a zero-knowledge proof against a verification key.
type Verifier interface {
	VerifyProof(ctx context.Context, verificationKey, proof []byte) (Outcome, error)
}

// ProofID identifies a (verification key, proof) pair.
type ProofID [32]byte

func (p ProofID) String() string { return hex.EncodeToString(p[:]) }

// IsZero reports whether the id was never set.
func (p ProofID) IsZero() bool { return p == ProofID{} }

// ParseProofID decodes the hex form produced by String.
func ParseProofID(s string) (ProofID, bool) {
	var out ProofID
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(out) {
		return ProofID{}, false
	}
	copy(out[:], b)
	return out, true
}

// Outcome is the verdict for one verification call.
type Outcome struct {
	Accepted bool
	ProofID  ProofID
	// Reason explains a rejection. Empty when accepted.
	Reason string
}

// Accept builds an accepting outcome.
func Accept(id ProofID) Outcome {
	return Outcome{Accepted: true, ProofID: id}
}

// Reject builds a rejecting outcome.
func Reject(id ProofID, reason string) Outcome {
	return Outcome{Accepted: false, ProofID: id, Reason: reason}
}

// Fingerprint derives the ProofID: BLAKE2b-256 over the length-prefixed key
// followed by the proof. The prefix keeps (vk, proof) splits unambiguous.
func Fingerprint(verificationKey, proof []byte) ProofID {
	h, _ := blake2b.New256(nil)
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(verificationKey)))
	h.Write(n[:])
	h.Write(verificationKey)
	h.Write(proof)
	var out ProofID
	copy(out[:], h.Sum(nil))
	return out
}

// Func adapts a function to the Verifier interface.
type Func func(ctx context.Context, verificationKey, proof []byte) (Outcome, error)

func (f Func) VerifyProof(ctx context.Context, verificationKey, proof []byte) (Outcome, error) {
	return f(ctx, verificationKey, proof)
}
