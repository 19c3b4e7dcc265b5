package domain

import (
	"fmt"
	"net/url"
	"time"
)

// Default extraction tuning.
const (
	DefaultTokenPageSize       = 900
	DefaultSnapshotPageSize    = 100
	DefaultVotesPageSize       = 1000
	DefaultRetryDelay          = 5 * time.Second
	DefaultPageDelay           = 500 * time.Millisecond
	DefaultMaxShapeRetries     = 10
	DefaultRequestsPerSecond   = 2.0
	DefaultRequestTimeout      = 30 * time.Second
	DefaultMaxTransportRetries = 0 // unbounded
)

// Parameters is the per-deployment configuration read at startup.
type Parameters struct {
	// PoapAPI is the POAP event API URL exported as-is.
	PoapAPI string

	// EthSubgraph is the POAP subgraph on Ethereum mainnet.
	EthSubgraph string

	// GnosisSubgraph is the POAP subgraph on Gnosis Chain.
	GnosisSubgraph string

	// SnapshotHub is the Snapshot GraphQL hub URL.
	SnapshotHub string

	// Extraction tunes paging, pacing and retries.
	Extraction ExtractionParameters
}

// ExtractionParameters tunes the crawl.
type ExtractionParameters struct {
	TokenPageSize       int
	SnapshotPageSize    int
	VotesPageSize       int
	RetryDelay          time.Duration
	PageDelay           time.Duration
	MaxShapeRetries     int
	MaxTransportRetries int
	RequestsPerSecond   float64
	RequestTimeout      time.Duration
}

// DefaultExtractionParameters returns the reference tuning.
func DefaultExtractionParameters() ExtractionParameters {
	return ExtractionParameters{
		TokenPageSize:       DefaultTokenPageSize,
		SnapshotPageSize:    DefaultSnapshotPageSize,
		VotesPageSize:       DefaultVotesPageSize,
		RetryDelay:          DefaultRetryDelay,
		PageDelay:           DefaultPageDelay,
		MaxShapeRetries:     DefaultMaxShapeRetries,
		MaxTransportRetries: DefaultMaxTransportRetries,
		RequestsPerSecond:   DefaultRequestsPerSecond,
		RequestTimeout:      DefaultRequestTimeout,
	}
}

// ApplyDefaults fills zero values with the reference tuning.
func (e *ExtractionParameters) ApplyDefaults() {
	d := DefaultExtractionParameters()
	if e.TokenPageSize <= 0 {
		e.TokenPageSize = d.TokenPageSize
	}
	if e.SnapshotPageSize <= 0 {
		e.SnapshotPageSize = d.SnapshotPageSize
	}
	if e.VotesPageSize <= 0 {
		e.VotesPageSize = d.VotesPageSize
	}
	if e.RetryDelay <= 0 {
		e.RetryDelay = d.RetryDelay
	}
	if e.PageDelay < 0 {
		e.PageDelay = d.PageDelay
	}
	if e.MaxShapeRetries <= 0 {
		e.MaxShapeRetries = d.MaxShapeRetries
	}
	if e.MaxTransportRetries < 0 {
		e.MaxTransportRetries = d.MaxTransportRetries
	}
	if e.RequestsPerSecond <= 0 {
		e.RequestsPerSecond = d.RequestsPerSecond
	}
	if e.RequestTimeout <= 0 {
		e.RequestTimeout = d.RequestTimeout
	}
}

// RequireTokenEndpoints checks the endpoints used by the token pipeline.
func (p *Parameters) RequireTokenEndpoints() error {
	return requireKeys(map[string]string{
		"poap_api":        p.PoapAPI,
		"eth_subgraph":    p.EthSubgraph,
		"gchain_subgraph": p.GnosisSubgraph,
	})
}

// RequireEventEndpoint checks the endpoint used by the event export.
func (p *Parameters) RequireEventEndpoint() error {
	return requireKeys(map[string]string{"poap_api": p.PoapAPI})
}

// RequireSnapshotEndpoint checks the endpoint used by the governance pipeline.
func (p *Parameters) RequireSnapshotEndpoint() error {
	return requireKeys(map[string]string{"snapshot_hub": p.SnapshotHub})
}

func requireKeys(keys map[string]string) error {
	for _, k := range []string{"poap_api", "eth_subgraph", "gchain_subgraph", "snapshot_hub"} {
		v, ok := keys[k]
		if !ok {
			continue
		}
		if v == "" {
			return fmt.Errorf("%w: parameter %q is required", ErrInvalidInput, k)
		}
		if err := ValidateEndpoint(v); err != nil {
			return fmt.Errorf("parameter %q: %w", k, err)
		}
	}
	return nil
}

// ValidateEndpoint checks that raw is an absolute http or https URL with a host.
func ValidateEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: endpoint %q: %v", ErrInvalidInput, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: endpoint %q must use http or https", ErrInvalidInput, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: endpoint %q has no host", ErrInvalidInput, raw)
	}
	return nil
}
