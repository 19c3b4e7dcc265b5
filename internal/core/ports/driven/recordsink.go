package driven

import (
	"context"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
)

// RecordSink receives merged datasets in addition to the JSON artifact.
// Sinks are optional; a nil sink disables the copy.
type RecordSink interface {
	// WriteDataset stores all records of the dataset.
	WriteDataset(ctx context.Context, dataset domain.Dataset) error

	// Close releases resources.
	Close() error
}
