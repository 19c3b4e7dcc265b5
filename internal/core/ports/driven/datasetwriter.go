package driven

import "context"

// DatasetWriter persists JSON-serialisable values as artifacts.
type DatasetWriter interface {
	// WriteJSON serialises value to the artifact at name.
	// Name is a slash-separated path relative to the output root, without
	// the ".json" extension (e.g. "token_data", "results/spaces").
	WriteJSON(ctx context.Context, name string, value any) error

	// Root returns the output root directory.
	Root() string
}
