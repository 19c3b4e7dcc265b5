// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - PageFetcher: Fetches one page of a cursor-ordered remote collection
//   - ResourceFetcher: One-shot GET of a JSON resource
//   - CheckpointStore: Last consumed cursor per source
//   - DatasetWriter: JSON artifacts in the output directory
//   - ParametersLoader: Deployment parameters (endpoints, tuning)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunHistoryStore: Per-run crawl summaries (SQLite)
//   - ExtractionObserver: Crawl telemetry (Prometheus)
//   - RecordSink: Extra copy of merged datasets (PostgreSQL)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
