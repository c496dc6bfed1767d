// Package store persists the orchestrator's tagged settings.
package store

import (
	"context"
	"fmt"
	"sync"

	"zkid/internal/issuance/models"
	"zkid/pkg/platform/sentinel"
)

// InMemory keeps settings in process memory.
type InMemory struct {
	mu     sync.RWMutex
	values map[models.DataKey]string
}

func NewInMemory() *InMemory {
	return &InMemory{values: make(map[models.DataKey]string)}
}

// Get returns the value stored under key.
func (s *InMemory) Get(_ context.Context, key models.DataKey) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return v, nil
}

// InsertAll writes every value, or none if any key is already set.
func (s *InMemory) InsertAll(_ context.Context, values map[models.DataKey]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range values {
		if !key.IsValid() {
			return fmt.Errorf("unknown setting %q: %w", key, sentinel.ErrInvalidInput)
		}
		if _, exists := s.values[key]; exists {
			return fmt.Errorf("setting %s already set: %w", key, sentinel.ErrAlreadyUsed)
		}
	}
	for key, v := range values {
		s.values[key] = v
	}
	return nil
}
