package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driven"
)

// Ensure RunHistoryStore implements the interface.
var _ driven.RunHistoryStore = (*RunHistoryStore)(nil)

// RunHistoryStore is an in-memory implementation of driven.RunHistoryStore.
type RunHistoryStore struct {
	mu   sync.RWMutex
	runs []domain.RunSummary
}

// NewRunHistoryStore creates a new in-memory run history.
func NewRunHistoryStore() *RunHistoryStore {
	return &RunHistoryStore{}
}

// Record appends a summary.
func (s *RunHistoryStore) Record(_ context.Context, summary domain.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, summary)
	return nil
}

// List returns summaries newest first.
func (s *RunHistoryStore) List(_ context.Context, limit int) ([]domain.RunSummary, error) {
	s.mu.RLock()
	out := make([]domain.RunSummary, len(s.runs))
	copy(out, s.runs)
	s.mu.RUnlock()

	// Reverse first so equal start times list the latest insert first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// LastSuccessful returns the newest successful summary of source.
func (s *RunHistoryStore) LastSuccessful(ctx context.Context, source string) (*domain.RunSummary, error) {
	runs, err := s.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	for i := range runs {
		if runs[i].Source == source && runs[i].Succeeded() {
			return &runs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}
