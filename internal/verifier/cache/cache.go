// Package cache memoizes verification verdicts per verifier and proof id.
//
// A verifier is deterministic, so its verdict for a (key, proof) pair never
// changes. Different verifiers may disagree, so entries never cross
// verifiers. Only definitive outcomes are cached; aborted calls are not.
package cache

import (
	"context"
	"log/slog"
	"time"

	"zkid/internal/verifier"
)

// Key names one verdict: the verifier reference that produced it and the
// proof id it covers.
type Key struct {
	Verifier string
	ProofID  verifier.ProofID
}

func (k Key) String() string {
	return k.Verifier + ":" + k.ProofID.String()
}

// Store persists verdicts by Key.
type Store interface {
	// Load returns the cached verdict, or ok=false on a miss.
	Load(ctx context.Context, key Key) (out verifier.Outcome, ok bool, err error)
	Save(ctx context.Context, key Key, out verifier.Outcome) error
}

// Verifier wraps another Verifier with a verdict cache.
type Verifier struct {
	ref     string
	next    verifier.Verifier
	store   Store
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures the caching verifier.
type Option func(*Verifier)

func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) { v.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(v *Verifier) { v.metrics = m }
}

// New decorates next, registered under ref, with store. Decorators sharing a
// store must use distinct refs.
func New(ref string, next verifier.Verifier, store Store, opts ...Option) *Verifier {
	v := &Verifier{ref: ref, next: next, store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VerifyProof serves cached verdicts and records fresh ones. Cache failures
// are logged and never change the verdict.
func (v *Verifier) VerifyProof(ctx context.Context, verificationKey, proof []byte) (verifier.Outcome, error) {
	start := time.Now()
	id := verifier.Fingerprint(verificationKey, proof)
	key := Key{Verifier: v.ref, ProofID: id}

	out, ok, err := v.store.Load(ctx, key)
	switch {
	case err != nil:
		v.logger.WarnContext(ctx, "verdict cache read failed", "verifier", v.ref, "proof_id", id.String(), "error", err)
	case ok:
		v.metrics.recordHit(time.Since(start))
		return out, nil
	default:
		v.metrics.recordMiss(time.Since(start))
	}

	out, err = v.next.VerifyProof(ctx, verificationKey, proof)
	if err != nil {
		return out, err
	}
	if out.ProofID != id {
		// Different id scheme upstream; caching under our key would be wrong.
		return out, nil
	}
	if err := v.store.Save(ctx, key, out); err != nil {
		v.logger.WarnContext(ctx, "verdict cache write failed", "verifier", v.ref, "proof_id", id.String(), "error", err)
	}
	return out, nil
}
