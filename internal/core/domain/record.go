package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// RawRecord is one source-native record as decoded from a response.
// Object-valued fields may need flattening.
type RawRecord map[string]any

// FlatRecord maps string keys to scalar or array values.
type FlatRecord map[string]any

// Cursor is the last consumed position in a monotonically ordered collection.
type Cursor int64

// ParseCursor converts a decoded JSON value into a Cursor.
// GraphQL services return integers as numbers or as decimal strings
// (BigInt scalars), both are accepted.
func ParseCursor(v any) (Cursor, error) {
	n, err := Int64Value(v)
	if err != nil {
		return 0, fmt.Errorf("cursor: %w", err)
	}
	return Cursor(n), nil
}

// Int64Value converts a decoded JSON integer into an int64.
func Int64Value(v any) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, fmt.Errorf("%w: value is null", ErrUnexpectedShape)
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: value %v is not an integer", ErrUnexpectedShape, n)
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: value %q: %v", ErrUnexpectedShape, n, err)
		}
		return i, nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: value %q: %v", ErrUnexpectedShape, n, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: value has type %T", ErrUnexpectedShape, v)
	}
}

// Collection is the ordered result of crawling one source.
type Collection struct {
	// Source is the logical name of the crawled source.
	Source string

	// Records holds the flattened records in fetch order.
	Records []FlatRecord

	// Pages counts non-empty pages consumed.
	Pages int

	// Fetches counts every fetch attempt including retries and the final empty page.
	Fetches int

	// StartCursor is the cursor the crawl started from.
	StartCursor Cursor

	// EndCursor is the cursor after the last fully consumed page.
	EndCursor Cursor

	// MaxCursor is the largest cursor value seen among the records.
	// Zero when Records is empty.
	MaxCursor Cursor

	// Partial is set when a bounded retry budget ran out before the
	// terminating empty page was seen.
	Partial bool
}

// Len returns the number of records.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}

// Dataset is the merged, source-tagged output of one pipeline step.
type Dataset struct {
	// Name is the artifact name without extension (e.g. "token_data").
	Name string

	// Records holds the tagged records of all sources in source order.
	Records []FlatRecord
}
