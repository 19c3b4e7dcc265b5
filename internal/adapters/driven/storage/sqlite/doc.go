// Package sqlite keeps the run history in a SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Each pipeline run appends one row per crawled source so
// operators can see when a source last completed and how far it got.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
package sqlite
