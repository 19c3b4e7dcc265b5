package domain

import (
	"fmt"
	"strings"
)

// Source identifies one remote collection to crawl.
type Source struct {
	// Name is the logical name used for checkpoint keys and output tagging
	// (e.g. "ethereum", "proposals:yam.eth").
	Name string

	// Endpoint is the GraphQL URL serving the collection.
	Endpoint string

	// Collection is the top-level field under "data" holding the page records
	// (e.g. "tokens", "proposals").
	Collection string

	// Query is the GraphQL document. It must accept $cursor and $pageSize
	// variables, filter on CursorField strictly greater than $cursor and
	// order ascending by CursorField.
	Query string

	// CursorField is the record field whose value advances the cursor.
	CursorField string

	// PageSize is the number of records requested per page.
	PageSize int

	// Prefix is prepended to non-nested keys when flattening (e.g. "token").
	Prefix string

	// Nested lists the fields holding one level of nested objects.
	Nested []string

	// Variables are extra GraphQL variables sent with every page.
	Variables map[string]any
}

// Validate checks the source is usable by the extractor.
func (s *Source) Validate() error {
	var missing []string
	if s.Name == "" {
		missing = append(missing, "name")
	}
	if s.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if s.Collection == "" {
		missing = append(missing, "collection")
	}
	if s.Query == "" {
		missing = append(missing, "query")
	}
	if s.CursorField == "" {
		missing = append(missing, "cursor field")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: source %q missing %s", ErrInvalidInput, s.Name, strings.Join(missing, ", "))
	}
	if s.PageSize <= 0 {
		return fmt.Errorf("%w: source %q page size must be positive", ErrInvalidInput, s.Name)
	}
	return nil
}

// CursorKey returns the flattened key carrying the cursor field.
func (s *Source) CursorKey() string {
	if s.Prefix == "" {
		return s.CursorField
	}
	return s.Prefix + "_" + s.CursorField
}
