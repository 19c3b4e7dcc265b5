package file

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driven"
)

// DefaultParametersFile is read when no path is given.
const DefaultParametersFile = "parameters.yaml"

// Parameter keys. Nested keys use dot notation.
const (
	KeyPoapAPI             = "poap_api"
	KeyEthSubgraph         = "eth_subgraph"
	KeyGnosisSubgraph      = "gchain_subgraph"
	KeySnapshotHub         = "snapshot_hub"
	KeyPageSize            = "extraction.page_size"
	KeySnapshotPageSize    = "extraction.snapshot_page_size"
	KeyVotesPageSize       = "extraction.votes_page_size"
	KeyRetryDelay          = "extraction.retry_delay"
	KeyPageDelay           = "extraction.page_delay"
	KeyMaxShapeRetries     = "extraction.max_shape_retries"
	KeyMaxTransportRetries = "extraction.max_transport_retries"
	KeyRequestsPerSecond   = "extraction.requests_per_second"
	KeyTimeout             = "extraction.timeout"
)

// Ensure ParametersLoader implements the interface.
var _ driven.ParametersLoader = (*ParametersLoader)(nil)

// ParametersLoader reads deployment parameters from a YAML or TOML file.
// The format follows the extension: ".toml" is TOML, anything else YAML.
type ParametersLoader struct{}

// NewParametersLoader creates a loader.
func NewParametersLoader() *ParametersLoader {
	return &ParametersLoader{}
}

// Load reads path, or DefaultParametersFile when path is empty.
// Keys absent from the file keep the reference tuning.
func (l *ParametersLoader) Load(path string) (*domain.Parameters, error) {
	if path == "" {
		path = DefaultParametersFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.ConfigError{Op: "read parameters", Path: path, Err: domain.ErrParametersMissing}
		}
		return nil, &domain.ConfigError{Op: "read parameters", Path: path, Err: err}
	}

	var loaded map[string]any
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &loaded)
	} else {
		err = yaml.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, &domain.ConfigError{Op: "parse parameters", Path: path, Err: err}
	}

	v := values(flattenMap(loaded, ""))
	params := &domain.Parameters{
		PoapAPI:        v.endpoint(KeyPoapAPI),
		EthSubgraph:    v.endpoint(KeyEthSubgraph),
		GnosisSubgraph: v.endpoint(KeyGnosisSubgraph),
		SnapshotHub:    v.endpoint(KeySnapshotHub),
		Extraction:     domain.DefaultExtractionParameters(),
	}

	e := &params.Extraction
	v.integer(KeyPageSize, &e.TokenPageSize)
	v.integer(KeySnapshotPageSize, &e.SnapshotPageSize)
	v.integer(KeyVotesPageSize, &e.VotesPageSize)
	v.integer(KeyMaxShapeRetries, &e.MaxShapeRetries)
	v.integer(KeyMaxTransportRetries, &e.MaxTransportRetries)
	v.duration(KeyRetryDelay, &e.RetryDelay)
	v.duration(KeyPageDelay, &e.PageDelay)
	v.duration(KeyTimeout, &e.RequestTimeout)
	v.float(KeyRequestsPerSecond, &e.RequestsPerSecond)

	if len(v.errs) > 0 {
		return nil, &domain.ConfigError{Op: "parse parameters", Path: path, Err: errors.Join(v.errs...)}
	}
	e.ApplyDefaults()
	return params, nil
}

// valueReader reads typed settings out of a flattened map and collects
// type errors instead of failing on the first one.
type valueReader struct {
	data map[string]any
	errs []error
}

func values(data map[string]any) *valueReader {
	return &valueReader{data: data}
}

func (r *valueReader) invalid(key, want string, got any) {
	r.errs = append(r.errs, fmt.Errorf("%w: %s must be %s, got %T", domain.ErrInvalidInput, key, want, got))
}

func (r *valueReader) str(key string) string {
	val, ok := r.data[key]
	if !ok || val == nil {
		return ""
	}
	s, ok := val.(string)
	if !ok {
		r.invalid(key, "a string", val)
		return ""
	}
	return strings.TrimSpace(s)
}

// endpoint reads an optional URL. Presence is checked by the pipelines.
func (r *valueReader) endpoint(key string) string {
	s := r.str(key)
	if s == "" {
		return ""
	}
	if err := domain.ValidateEndpoint(s); err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return ""
	}
	return s
}

func (r *valueReader) integer(key string, dst *int) {
	val, ok := r.data[key]
	if !ok || val == nil {
		return
	}
	// YAML integers decode as int, TOML integers as int64.
	switch n := val.(type) {
	case int:
		*dst = n
	case int64:
		*dst = int(n)
	case float64:
		if n != math.Trunc(n) {
			r.invalid(key, "an integer", val)
			return
		}
		*dst = int(n)
	default:
		r.invalid(key, "an integer", val)
	}
}

func (r *valueReader) float(key string, dst *float64) {
	val, ok := r.data[key]
	if !ok || val == nil {
		return
	}
	switch n := val.(type) {
	case float64:
		*dst = n
	case int:
		*dst = float64(n)
	case int64:
		*dst = float64(n)
	default:
		r.invalid(key, "a number", val)
	}
}

// duration accepts Go duration strings ("500ms") or a number of seconds.
func (r *valueReader) duration(key string, dst *time.Duration) {
	val, ok := r.data[key]
	if !ok || val == nil {
		return
	}
	switch d := val.(type) {
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			r.errs = append(r.errs, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err))
			return
		}
		*dst = parsed
	case int:
		*dst = time.Duration(d) * time.Second
	case int64:
		*dst = time.Duration(d) * time.Second
	case float64:
		*dst = time.Duration(d * float64(time.Second))
	default:
		r.invalid(key, "a duration", val)
	}
}

// flattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}

	return result
}
