package file

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driven"
)

// Ensure DatasetWriter implements the interface.
var _ driven.DatasetWriter = (*DatasetWriter)(nil)

// DatasetWriter writes artifacts as <root>/<name>.json.
type DatasetWriter struct {
	root   string
	indent bool
}

// NewDatasetWriter creates a writer rooted at dir.
func NewDatasetWriter(dir string) *DatasetWriter {
	return &DatasetWriter{root: dir}
}

// SetIndent toggles pretty-printed output.
func (w *DatasetWriter) SetIndent(indent bool) {
	w.indent = indent
}

// Root returns the output directory.
func (w *DatasetWriter) Root() string {
	return w.root
}

// PathFor returns the file path an artifact name maps to.
func (w *DatasetWriter) PathFor(name string) (string, error) {
	clean := path.Clean(name)
	if name == "" || clean == "." || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: artifact name %q escapes the output directory", domain.ErrInvalidInput, name)
	}
	return filepath.Join(w.root, filepath.FromSlash(clean)+".json"), nil
}

// WriteJSON encodes value and atomically writes it.
func (w *DatasetWriter) WriteJSON(ctx context.Context, name string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := w.PathFor(name)
	if err != nil {
		return err
	}

	var data []byte
	if w.indent {
		data, err = json.MarshalIndent(value, "", "  ")
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := writeAtomic(target, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}
