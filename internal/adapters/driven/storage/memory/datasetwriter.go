package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driven"
)

// Ensure DatasetWriter implements the interface.
var _ driven.DatasetWriter = (*DatasetWriter)(nil)

// DatasetWriter keeps encoded artifacts in memory.
type DatasetWriter struct {
	mu        sync.RWMutex
	artifacts map[string][]byte
}

// NewDatasetWriter creates an empty writer.
func NewDatasetWriter() *DatasetWriter {
	return &DatasetWriter{artifacts: make(map[string][]byte)}
}

// WriteJSON encodes value and stores it under name.
func (w *DatasetWriter) WriteJSON(_ context.Context, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.artifacts[name] = data
	return nil
}

// Root returns a pseudo root for messages.
func (w *DatasetWriter) Root() string {
	return "memory://"
}

// Decode unmarshals the artifact stored under name into v.
func (w *DatasetWriter) Decode(name string, v any) error {
	w.mu.RLock()
	data, ok := w.artifacts[name]
	w.mu.RUnlock()
	if !ok {
		return fmt.Errorf("artifact %s: %w", name, domain.ErrNotFound)
	}
	return json.Unmarshal(data, v)
}

// Names returns the stored artifact names in sorted order.
func (w *DatasetWriter) Names() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	names := make([]string, 0, len(w.artifacts))
	for k := range w.artifacts {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
