package driven

import (
	"context"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
)

// RunHistoryStore keeps one summary per crawled source per run.
type RunHistoryStore interface {
	// Record stores a summary.
	Record(ctx context.Context, summary domain.RunSummary) error

	// List returns the most recent summaries, newest first.
	// A limit of zero or less returns all summaries.
	List(ctx context.Context, limit int) ([]domain.RunSummary, error)

	// LastSuccessful returns the latest successful summary for a source.
	// Returns domain.ErrNotFound if none exists.
	LastSuccessful(ctx context.Context, source string) (*domain.RunSummary, error)
}
