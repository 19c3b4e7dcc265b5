package driving

import (
	"context"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driven"
)

// Extractor crawls one source page by page.
type Extractor interface {
	// Extract walks the source from startCursor until an empty page.
	// The fetcher is supplied per call; the extractor owns no connection.
	// A returned collection may be Partial when a bounded retry budget ran
	// out; that is not an error. On cancellation the collection holds the
	// fully consumed pages and the error is the context error.
	Extract(ctx context.Context, fetcher driven.PageFetcher, source domain.Source, startCursor domain.Cursor) (*domain.Collection, error)
}

// PageProgress is reported after every consumed page.
type PageProgress struct {
	Source  string
	Page    int
	Records int
	Total   int
	Cursor  domain.Cursor
}
