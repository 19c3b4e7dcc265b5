package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driven"
)

// CheckpointFile is the checkpoint file name inside the output directory.
const CheckpointFile = "checkpoints.json"

// Ensure CheckpointStore implements the interface.
var _ driven.CheckpointStore = (*CheckpointStore)(nil)

// CheckpointStore keeps checkpoints as a flat JSON object of integers.
type CheckpointStore struct {
	mu   sync.Mutex
	path string
}

// NewCheckpointStore creates a store for <dir>/checkpoints.json.
func NewCheckpointStore(dir string) *CheckpointStore {
	return &CheckpointStore{path: filepath.Join(dir, CheckpointFile)}
}

// Path returns the checkpoint file path.
func (s *CheckpointStore) Path() string {
	return s.path
}

// Load reads the checkpoint file.
func (s *CheckpointStore) Load(_ context.Context) (domain.Checkpoints, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.ConfigError{Op: "load checkpoints", Path: s.path, Err: domain.ErrCheckpointMissing}
		}
		return nil, &domain.ConfigError{Op: "load checkpoints", Path: s.path, Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, &domain.ConfigError{Op: "parse checkpoints", Path: s.path, Err: err}
	}

	cps := make(domain.Checkpoints, len(raw))
	for name, v := range raw {
		c, err := domain.ParseCursor(v)
		if err != nil {
			return nil, &domain.ConfigError{
				Op:   "parse checkpoints",
				Path: s.path,
				Err:  fmt.Errorf("%w: source %q: %v", domain.ErrInvalidInput, name, err),
			}
		}
		cps[name] = c
	}
	return cps, nil
}

// Save atomically replaces the checkpoint file.
func (s *CheckpointStore) Save(_ context.Context, cps domain.Checkpoints) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cps == nil {
		cps = domain.Checkpoints{}
	}
	data, err := json.MarshalIndent(cps, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checkpoints: %w", err)
	}
	if err := writeAtomic(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("save checkpoints %s: %w", s.path, err)
	}
	return nil
}
