// Package resolver maps capability references to the verifiers and
// credential stores registered at startup.
package resolver

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"zkid/internal/verifier"
	id "zkid/pkg/domain"
	"zkid/pkg/platform/sentinel"
)

// CredentialStore mints credentials on behalf of an authorized caller.
type CredentialStore interface {
	Mint(ctx context.Context, caller, owner id.Principal, expiration uint64) (id.TokenID, error)
}

// Resolver is a registry of named capabilities. Safe for concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	verifiers map[id.Reference]verifier.Verifier
	stores    map[id.Reference]CredentialStore
}

func New() *Resolver {
	return &Resolver{
		verifiers: make(map[id.Reference]verifier.Verifier),
		stores:    make(map[id.Reference]CredentialStore),
	}
}

// RegisterVerifier names v. A reference can be registered once.
func (r *Resolver) RegisterVerifier(ref id.Reference, v verifier.Verifier) error {
	if ref.IsNil() || v == nil {
		return fmt.Errorf("verifier reference and implementation are required: %w", sentinel.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.verifiers[ref]; exists {
		return fmt.Errorf("verifier %s already registered: %w", ref, sentinel.ErrAlreadyUsed)
	}
	r.verifiers[ref] = v
	return nil
}

// RegisterStore names s. A reference can be registered once.
func (r *Resolver) RegisterStore(ref id.Reference, s CredentialStore) error {
	if ref.IsNil() || s == nil {
		return fmt.Errorf("store reference and implementation are required: %w", sentinel.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.stores[ref]; exists {
		return fmt.Errorf("store %s already registered: %w", ref, sentinel.ErrAlreadyUsed)
	}
	r.stores[ref] = s
	return nil
}

// Verifier resolves ref, or returns sentinel.ErrNotFound.
func (r *Resolver) Verifier(ref id.Reference) (verifier.Verifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.verifiers[ref]
	if !ok {
		return nil, fmt.Errorf("verifier %s: %w", ref, sentinel.ErrNotFound)
	}
	return v, nil
}

// Store resolves ref, or returns sentinel.ErrNotFound.
func (r *Resolver) Store(ref id.Reference) (CredentialStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[ref]
	if !ok {
		return nil, fmt.Errorf("store %s: %w", ref, sentinel.ErrNotFound)
	}
	return s, nil
}

// References lists registered verifier and store references, sorted.
func (r *Resolver) References() (verifiers, stores []id.Reference) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for ref := range r.verifiers {
		verifiers = append(verifiers, ref)
	}
	for ref := range r.stores {
		stores = append(stores, ref)
	}
	sort.Slice(verifiers, func(i, j int) bool { return verifiers[i] < verifiers[j] })
	sort.Slice(stores, func(i, j int) bool { return stores[i] < stores[j] })
	return verifiers, stores
}
