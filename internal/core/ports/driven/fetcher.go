package driven

import (
	"context"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
)

// PageRequest asks for the records of one page.
type PageRequest struct {
	// Source describes the collection, query and extra variables.
	Source *domain.Source

	// Cursor is the exclusive lower bound on the cursor field.
	Cursor domain.Cursor

	// PageSize is the maximum number of records to return.
	PageSize int
}

// PageFetcher performs one page request against a remote collection.
// It is the only way the extractor reaches the network.
type PageFetcher interface {
	// FetchPage returns 0..PageSize raw records in ascending cursor order.
	// Failures must be a *domain.TransportError (network or non-2xx) or a
	// *domain.ShapeError (body lacks the expected data field) so the
	// extractor can apply the right retry policy.
	FetchPage(ctx context.Context, req PageRequest) ([]domain.RawRecord, error)
}

// ResourceFetcher performs a one-shot GET of a JSON resource.
type ResourceFetcher interface {
	// FetchResource returns the decoded JSON body.
	// Non-2xx statuses are returned as *domain.TransportError.
	FetchResource(ctx context.Context, url string) (any, error)
}
