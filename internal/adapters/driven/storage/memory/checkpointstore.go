package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driven"
)

// Ensure CheckpointStore implements the interface.
var _ driven.CheckpointStore = (*CheckpointStore)(nil)

// CheckpointStore is an in-memory implementation of driven.CheckpointStore.
type CheckpointStore struct {
	mu      sync.RWMutex
	cps     domain.Checkpoints
	present bool
	saves   int
}

// NewCheckpointStore creates a store. A nil initial mapping behaves like
// a missing checkpoint file until the first Save.
func NewCheckpointStore(initial domain.Checkpoints) *CheckpointStore {
	s := &CheckpointStore{}
	if initial != nil {
		s.cps = initial.Clone()
		s.present = true
	}
	return s
}

// Load returns a copy of the stored checkpoints.
func (s *CheckpointStore) Load(_ context.Context) (domain.Checkpoints, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.present {
		return nil, &domain.ConfigError{Op: "load checkpoints", Path: s.Path(), Err: domain.ErrCheckpointMissing}
	}
	return s.cps.Clone(), nil
}

// Save replaces the stored checkpoints.
func (s *CheckpointStore) Save(_ context.Context, cps domain.Checkpoints) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cps = cps.Clone()
	s.present = true
	s.saves++
	return nil
}

// Path identifies the store in error messages.
func (s *CheckpointStore) Path() string {
	return "memory://checkpoints"
}

// Saves returns how many times Save was called.
func (s *CheckpointStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
