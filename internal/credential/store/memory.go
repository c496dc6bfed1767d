// Package store persists the credential registry, the ownership index and
// the expiration ledger.
package store

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"zkid/internal/credential/models"
	id "zkid/pkg/domain"
	"zkid/pkg/platform/sentinel"
)

// InMemory keeps the registry in process memory.
type InMemory struct {
	mu          sync.RWMutex
	registry    *models.Registry
	credentials []models.Credential
	byOwner     map[id.Principal][]id.TokenID
}

// NewInMemory creates an empty in-memory credential store.
func NewInMemory() *InMemory {
	return &InMemory{byOwner: make(map[id.Principal][]id.TokenID)}
}

// CreateRegistry stores the registry unless one already exists.
func (s *InMemory) CreateRegistry(_ context.Context, r *models.Registry) error {
	if r == nil {
		return fmt.Errorf("registry is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registry != nil {
		return fmt.Errorf("registry already initialized: %w", sentinel.ErrAlreadyUsed)
	}
	stored := *r
	stored.TotalSupply = 0
	s.registry = &stored
	return nil
}

// FindRegistry returns a copy of the registry with the current supply.
func (s *InMemory) FindRegistry(_ context.Context) (*models.Registry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.registry == nil {
		return nil, sentinel.ErrNotFound
	}
	r := *s.registry
	return &r, nil
}

// Append mints the next credential. The id equals the supply before the mint.
// All checks run before any mutation so a failure leaves no partial state.
func (s *InMemory) Append(_ context.Context, owner id.Principal, expiration uint64, issuedAt time.Time) (*models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registry == nil {
		return nil, sentinel.ErrNotFound
	}
	if s.registry.TotalSupply == math.MaxUint64 {
		return nil, fmt.Errorf("token id space exhausted: %w", sentinel.ErrInvalidState)
	}

	c := models.Credential{
		TokenID:    id.TokenID(s.registry.TotalSupply),
		Owner:      owner,
		Expiration: expiration,
		IssuedAt:   issuedAt,
	}
	s.credentials = append(s.credentials, c)
	s.byOwner[owner] = append(s.byOwner[owner], c.TokenID)
	s.registry.TotalSupply++
	return &c, nil
}

// FindCredential returns the credential with tokenID.
func (s *InMemory) FindCredential(_ context.Context, tokenID id.TokenID) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if uint64(tokenID) >= uint64(len(s.credentials)) {
		return nil, sentinel.ErrNotFound
	}
	c := s.credentials[tokenID]
	return &c, nil
}

// CountByOwner returns how many credentials owner holds.
func (s *InMemory) CountByOwner(_ context.Context, owner id.Principal) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.byOwner[owner])), nil
}

// FindByOwnerIndex returns the index-th credential of owner in mint order.
func (s *InMemory) FindByOwnerIndex(_ context.Context, owner id.Principal, index uint64) (id.TokenID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tokens := s.byOwner[owner]
	if index >= uint64(len(tokens)) {
		return 0, sentinel.ErrNotFound
	}
	return tokens[index], nil
}
