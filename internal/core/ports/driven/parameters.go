package driven

import "github.com/custodia-labs/ledgerscrape/internal/core/domain"

// ParametersLoader reads the deployment parameters document.
type ParametersLoader interface {
	// Load parses the document at path.
	// Returns a *domain.ConfigError wrapping domain.ErrParametersMissing
	// when the file does not exist.
	Load(path string) (*domain.Parameters, error)
}
