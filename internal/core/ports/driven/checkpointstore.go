package driven

import (
	"context"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
)

// CheckpointStore persists the last consumed cursor per source.
// It is the sole reader and writer of its backing storage.
type CheckpointStore interface {
	// Load returns the stored checkpoints.
	// Returns a *domain.ConfigError wrapping domain.ErrCheckpointMissing
	// when nothing has been saved yet.
	Load(ctx context.Context) (domain.Checkpoints, error)

	// Save replaces the stored checkpoints. The write is all-or-nothing.
	Save(ctx context.Context, checkpoints domain.Checkpoints) error

	// Path returns a human-readable location for messages.
	Path() string
}
