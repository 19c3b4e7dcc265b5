package domain

import "time"

// RunSummary records the outcome of crawling one source within a pipeline run.
type RunSummary struct {
	// RunID groups the summaries of one pipeline invocation.
	RunID string

	// Pipeline names the pipeline ("tokens", "snapshot").
	Pipeline string

	// Source is the logical source name.
	Source string

	// Records is the number of records fetched.
	Records int

	// Pages is the number of non-empty pages consumed.
	Pages int

	// StartCursor is the cursor the crawl started from.
	StartCursor Cursor

	// EndCursor is the checkpoint value persisted after the crawl.
	EndCursor Cursor

	// Partial is true when a retry budget ran out.
	Partial bool

	// Error holds the failure message, empty on success.
	Error string

	// StartedAt is when the crawl began.
	StartedAt time.Time

	// FinishedAt is when the crawl ended.
	FinishedAt time.Time
}

// Duration returns how long the crawl took.
func (r *RunSummary) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded reports whether the crawl ended without error.
func (r *RunSummary) Succeeded() bool {
	return r.Error == ""
}
