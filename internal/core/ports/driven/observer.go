package driven

import (
	"time"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
)

// RetryKind labels why a page fetch was retried.
type RetryKind string

const (
	// RetryTransport is a network failure or non-success status.
	RetryTransport RetryKind = "transport"

	// RetryShape is a response missing the expected structure.
	RetryShape RetryKind = "shape"
)

// ExtractionObserver receives crawl telemetry. Implementations must be cheap;
// they are called inline from the crawl loop.
type ExtractionObserver interface {
	// PageFetched is called after a non-empty page was consumed.
	PageFetched(source string, records int, elapsed time.Duration)

	// Retried is called before waiting to retry a page.
	Retried(source string, kind RetryKind)

	// Finished is called once per crawl with the final collection.
	Finished(source string, collection *domain.Collection)
}
