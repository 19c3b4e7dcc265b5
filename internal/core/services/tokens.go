package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driven"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driving"
	"github.com/custodia-labs/ledgerscrape/internal/logger"
)

// Artifact names written by the token pipeline.
const (
	EventDataArtifact = "poap_event_data"
	TokenDataArtifact = "token_data"
	ChainTag          = "chain"
)

// Ensure TokenPipeline implements the interface.
var _ driving.Pipeline = (*TokenPipeline)(nil)

// TokenPipeline exports POAP events and crawls token ownership on every chain.
type TokenPipeline struct {
	crawler
	params      *domain.Parameters
	events      driving.EventExporter
	writer      driven.DatasetWriter
	checkpoints driven.CheckpointStore
}

// NewTokenPipeline creates the token pipeline.
func NewTokenPipeline(
	params *domain.Parameters,
	extractor driving.Extractor,
	fetcher driven.PageFetcher,
	events driving.EventExporter,
	writer driven.DatasetWriter,
	checkpoints driven.CheckpointStore,
) *TokenPipeline {
	return &TokenPipeline{
		crawler:     newCrawler("tokens", extractor, fetcher),
		params:      params,
		events:      events,
		writer:      writer,
		checkpoints: checkpoints,
	}
}

// SetRunHistory enables run history recording. Nil disables it.
func (p *TokenPipeline) SetRunHistory(h driven.RunHistoryStore) {
	p.history = h
}

// SetRecordSink enables copying the merged dataset to a sink. Nil disables it.
func (p *TokenPipeline) SetRecordSink(s driven.RecordSink) {
	p.sink = s
}

// Name returns the pipeline name.
func (p *TokenPipeline) Name() string {
	return p.pipeline
}

// Run executes the token pipeline.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (p *TokenPipeline) Run(ctx context.Context, opts driving.RunOptions) (*driving.RunResult, error) {
	// 1. Validate configuration before any network call
	if err := p.params.RequireTokenEndpoints(); err != nil {
		return nil, &domain.ConfigError{Op: "validate parameters", Err: err}
	}
	existing, starts, err := loadCheckpoints(ctx, p.checkpoints, opts.UseCheckpoints)
	if err != nil {
		return nil, err
	}

	result := &driving.RunResult{RunID: p.newRunID()}
	logger.Section("POAP tokens")
	logger.Info("run started", "run", result.RunID, "checkpoints", opts.UseCheckpoints)

	// 2. Export event metadata
	if !opts.SkipEvents {
		if err := p.events.Export(ctx, EventDataArtifact, p.params.PoapAPI); err != nil {
			return nil, err
		}
	}

	// 3. Crawl each chain in order
	var collections []*domain.Collection
	var crawlErr error
	for _, source := range TokenSources(p.params) {
		collection, summary, err := p.crawl(ctx, result.RunID, source,
			starts.Get(source.Name), existing.Get(source.Name))
		result.Summaries = append(result.Summaries, summary)
		if err != nil {
			if !interrupted(err) {
				return result, fmt.Errorf("crawl %s: %w", source.Name, err)
			}
			// Pages consumed before the interrupt are still persisted below.
			if collection != nil {
				collections = append(collections, collection)
			}
			crawlErr = err
			break
		}
		collections = append(collections, collection)
	}

	// 4. Merge and write; survives cancellation so checkpoints match the artifact
	persistCtx := context.WithoutCancel(ctx)
	dataset := Merge(TokenDataArtifact, ChainTag, collections...)
	if err := p.writer.WriteJSON(persistCtx, dataset.Name, dataset.Records); err != nil {
		return result, fmt.Errorf("write %s: %w", dataset.Name, err)
	}
	if err := p.copyToSink(persistCtx, dataset); err != nil {
		return result, err
	}

	// 5. Advance checkpoints of the crawled chains only
	next := existing.Clone()
	for i := range result.Summaries {
		next.Set(result.Summaries[i].Source, result.Summaries[i].EndCursor)
	}
	if err := p.checkpoints.Save(persistCtx, next); err != nil {
		return result, fmt.Errorf("save checkpoints: %w", err)
	}
	result.Checkpoints = next

	logger.Info("run finished",
		"run", result.RunID, "records", len(dataset.Records), "partial", result.Partial())
	return result, crawlErr
}
