package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driven"
)

// routedFetcher serves one in-memory collection per source name.
type routedFetcher struct {
	mu       sync.Mutex
	sources  map[string]*remoteCollection
	requests []string
	// failures makes every fetch of a source return the error.
	failures map[string]error
	// onFetch runs before each fetch; used to cancel mid-run.
	onFetch func(call int)
}

func newRoutedFetcher(sources map[string][]domain.RawRecord) *routedFetcher {
	f := &routedFetcher{sources: make(map[string]*remoteCollection)}
	for name, records := range sources {
		f.sources[name] = &remoteCollection{records: records}
	}
	return f
}

func (f *routedFetcher) FetchPage(ctx context.Context, req driven.PageRequest) ([]domain.RawRecord, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req.Source.Name)
	call := len(f.requests)
	remote := f.sources[req.Source.Name]
	failure := f.failures[req.Source.Name]
	f.mu.Unlock()

	if f.onFetch != nil {
		f.onFetch(call)
	}
	if failure != nil {
		return nil, failure
	}
	if remote == nil {
		return nil, nil
	}
	return remote.FetchPage(ctx, req)
}

func (f *routedFetcher) fail(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures == nil {
		f.failures = make(map[string]error)
	}
	f.failures[name] = err
}

func (f *routedFetcher) requested(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r == name {
			n++
		}
	}
	return n
}

func (f *routedFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// stubResourceFetcher returns a fixed value for every URL.
type stubResourceFetcher struct {
	mu    sync.Mutex
	value any
	err   error
	urls  []string
}

func (s *stubResourceFetcher) FetchResource(_ context.Context, url string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls = append(s.urls, url)
	return s.value, s.err
}

var errStub = errors.New("stub failure")

func testParameters() *domain.Parameters {
	extraction := domain.DefaultExtractionParameters()
	extraction.TokenPageSize = 2
	extraction.SnapshotPageSize = 2
	extraction.VotesPageSize = 2
	extraction.PageDelay = 0
	return &domain.Parameters{
		PoapAPI:        "https://api.example.org/events",
		EthSubgraph:    "https://eth.example.org/subgraph",
		GnosisSubgraph: "https://gnosis.example.org/subgraph",
		SnapshotHub:    "https://hub.example.org/graphql",
		Extraction:     extraction,
	}
}
