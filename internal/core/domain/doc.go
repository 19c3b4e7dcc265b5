// Package domain defines the core entities of the extractor.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Source: A remote collection crawled with a monotonic cursor
//   - RawRecord / FlatRecord: Records before and after flattening
//   - Collection: The ordered result of crawling one source
//   - Checkpoints: Last consumed cursor per source, persisted between runs
//   - RunSummary: Outcome of one crawl, kept in the run history
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
