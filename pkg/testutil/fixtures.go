package testutil

import (
	"context"
	"crypto/rand"
	"testing"

	"zkid/internal/verifier"
	"zkid/internal/verifier/schnorr"
	id "zkid/pkg/domain"
)

// Principals used across test suites.
var Principals = struct {
	Admin   id.Principal
	Alice   id.Principal
	Bob     id.Principal
	Mallory id.Principal
}{
	Admin:   "issuer@zkid",
	Alice:   "alice",
	Bob:     "bob",
	Mallory: "mallory",
}

// ProofContext is the context string proofs are bound to in tests.
const ProofContext = "zkid-test"

// Proof is a Schnorr key pair with a valid proof for it.
type Proof struct {
	Secret          []byte
	Key             schnorr.VerificationKey
	VerificationKey []byte
	Proof           []byte
}

// NewProof generates a fresh key pair for userID and proves knowledge of it.
func NewProof(t testing.TB, userID id.Principal) Proof {
	t.Helper()

	kp, err := schnorr.GenerateKey(rand.Reader, userID.String(), ProofContext)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	vk, err := kp.Key.Marshal()
	if err != nil {
		t.Fatalf("marshal verification key: %v", err)
	}
	proof, err := schnorr.Prove(kp.Secret, kp.Key, rand.Reader)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	return Proof{Secret: kp.Secret, Key: kp.Key, VerificationKey: vk, Proof: proof}
}

// AcceptingVerifier accepts every proof.
func AcceptingVerifier() verifier.Verifier {
	return verifier.Func(func(_ context.Context, vk, proof []byte) (verifier.Outcome, error) {
		return verifier.Accept(verifier.Fingerprint(vk, proof)), nil
	})
}

// RejectingVerifier rejects every proof with reason.
func RejectingVerifier(reason string) verifier.Verifier {
	return verifier.Func(func(_ context.Context, vk, proof []byte) (verifier.Outcome, error) {
		return verifier.Reject(verifier.Fingerprint(vk, proof), reason), nil
	})
}
