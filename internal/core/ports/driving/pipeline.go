package driving

import (
	"context"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
)

// RunOptions controls one pipeline invocation.
type RunOptions struct {
	// UseCheckpoints starts each source from its stored cursor instead of 0.
	UseCheckpoints bool

	// Spaces restricts the governance pipeline to the given space IDs.
	// Empty means crawl all spaces.
	Spaces []string

	// SkipEvents disables the one-shot event export of the token pipeline.
	SkipEvents bool
}

// RunResult reports what a pipeline invocation did.
type RunResult struct {
	// RunID identifies the invocation in the run history.
	RunID string

	// Summaries holds one entry per crawled source.
	Summaries []domain.RunSummary

	// Checkpoints is the checkpoint mapping that was persisted.
	Checkpoints domain.Checkpoints
}

// Records returns the total number of records fetched.
func (r *RunResult) Records() int {
	n := 0
	for i := range r.Summaries {
		n += r.Summaries[i].Records
	}
	return n
}

// Partial reports whether any source ended on an exhausted retry budget.
func (r *RunResult) Partial() bool {
	for i := range r.Summaries {
		if r.Summaries[i].Partial {
			return true
		}
	}
	return false
}

// Pipeline runs an end-to-end extraction.
type Pipeline interface {
	// Name identifies the pipeline ("tokens", "snapshot").
	Name() string

	// Run executes the pipeline.
	Run(ctx context.Context, opts RunOptions) (*RunResult, error)
}

// EventExporter performs the one-shot event export.
type EventExporter interface {
	// Export fetches the resource at url and writes it as artifact name.
	Export(ctx context.Context, name, url string) error
}
