package services

import (
	"context"
	"fmt"
	"path"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driven"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driving"
	"github.com/custodia-labs/ledgerscrape/internal/logger"
)

// Artifact names written by the governance pipeline.
const (
	SpacesArtifact    = "results/spaces"
	ProposalsDataset  = "snapshot_proposals"
	VotesDataField    = "votes_data"
	proposalsDir      = "results/spaces"
	proposalSourceTag = "source"
)

// Ensure GovernancePipeline implements the interface.
var _ driving.Pipeline = (*GovernancePipeline)(nil)

// GovernancePipeline crawls Snapshot spaces, their closed proposals and
// the votes of every proposal that received any.
type GovernancePipeline struct {
	crawler
	params      *domain.Parameters
	writer      driven.DatasetWriter
	checkpoints driven.CheckpointStore
}

// NewGovernancePipeline creates the governance pipeline.
func NewGovernancePipeline(
	params *domain.Parameters,
	extractor driving.Extractor,
	fetcher driven.PageFetcher,
	writer driven.DatasetWriter,
	checkpoints driven.CheckpointStore,
) *GovernancePipeline {
	return &GovernancePipeline{
		crawler:     newCrawler("snapshot", extractor, fetcher),
		params:      params,
		writer:      writer,
		checkpoints: checkpoints,
	}
}

// SetRunHistory enables run history recording. Nil disables it.
func (p *GovernancePipeline) SetRunHistory(h driven.RunHistoryStore) {
	p.history = h
}

// SetRecordSink enables copying the merged proposals to a sink. Nil disables it.
func (p *GovernancePipeline) SetRecordSink(s driven.RecordSink) {
	p.sink = s
}

// Name returns the pipeline name.
func (p *GovernancePipeline) Name() string {
	return p.pipeline
}

// Run executes the governance pipeline.
//
//nolint:gocyclo,gocognit // Orchestration function with necessary sequential steps
func (p *GovernancePipeline) Run(ctx context.Context, opts driving.RunOptions) (*driving.RunResult, error) {
	// 1. Validate configuration before any network call
	if err := p.params.RequireSnapshotEndpoint(); err != nil {
		return nil, &domain.ConfigError{Op: "validate parameters", Err: err}
	}
	existing, starts, err := loadCheckpoints(ctx, p.checkpoints, opts.UseCheckpoints)
	if err != nil {
		return nil, err
	}

	result := &driving.RunResult{RunID: p.newRunID()}
	next := existing.Clone()
	persistCtx := context.WithoutCancel(ctx)
	logger.Section("Snapshot governance")
	logger.Info("run started", "run", result.RunID, "checkpoints", opts.UseCheckpoints)

	// 2. Resolve the spaces to crawl
	spaces := opts.Spaces
	if len(spaces) == 0 {
		collection, summary, err := p.crawl(ctx, result.RunID, SpacesSource(p.params), 0, 0)
		result.Summaries = append(result.Summaries, summary)
		if err != nil {
			return result, fmt.Errorf("crawl spaces: %w", err)
		}
		if err := p.writer.WriteJSON(persistCtx, SpacesArtifact, collection.Records); err != nil {
			return result, fmt.Errorf("write %s: %w", SpacesArtifact, err)
		}
		spaces = stringValues(collection.Records, "space_id")
	} else {
		listed := make([]domain.FlatRecord, 0, len(spaces))
		for _, id := range spaces {
			listed = append(listed, domain.FlatRecord{"space_id": id})
		}
		if err := p.writer.WriteJSON(persistCtx, SpacesArtifact, listed); err != nil {
			return result, fmt.Errorf("write %s: %w", SpacesArtifact, err)
		}
	}
	logger.Info("spaces resolved", "count", len(spaces))

	// 3. Crawl proposals and votes space by space
	var proposals []*domain.Collection
	var crawlErr error
	for _, space := range spaces {
		source := ProposalsSource(p.params, space)
		collection, summary, err := p.crawl(ctx, result.RunID, source,
			starts.Get(source.Name), existing.Get(source.Name))
		result.Summaries = append(result.Summaries, summary)
		if err != nil && !interrupted(err) {
			return result, fmt.Errorf("crawl %s: %w", source.Name, err)
		}
		if err != nil {
			crawlErr = err
		}
		if collection == nil {
			collection = &domain.Collection{Source: source.Name}
		}

		written, truncated, err := p.writeProposals(ctx, space, collection)
		if err != nil && !interrupted(err) {
			return result, err
		}
		if err != nil {
			crawlErr = err
		}
		if len(truncated) > 0 {
			logger.Warn("votes incomplete, keeping space checkpoint",
				"space", space, "proposals", truncated)
			result.Summaries[len(result.Summaries)-1].Partial = true
		}

		// Advance only when every proposal of the crawl was written with all its votes.
		if crawlErr == nil && written == collection.Len() && len(truncated) == 0 {
			next.Set(source.Name, summary.EndCursor)
		}
		if collection.Len() > 0 {
			proposals = append(proposals, collection)
		}
		if crawlErr != nil {
			break
		}
	}

	// 4. Copy proposals to the sink and persist checkpoints
	if err := p.copyToSink(persistCtx, Merge(ProposalsDataset, proposalSourceTag, proposals...)); err != nil {
		return result, err
	}
	if err := p.checkpoints.Save(persistCtx, next); err != nil {
		return result, fmt.Errorf("save checkpoints: %w", err)
	}
	result.Checkpoints = next

	logger.Info("run finished", "run", result.RunID, "spaces", len(spaces), "partial", result.Partial())
	return result, crawlErr
}

// writeProposals fetches the votes of each proposal and writes one artifact
// per proposal. It returns how many proposals were written and the IDs of
// those whose vote crawl stopped early.
func (p *GovernancePipeline) writeProposals(
	ctx context.Context,
	space string,
	collection *domain.Collection,
) (written int, truncated []string, err error) {
	for _, proposal := range collection.Records {
		id, _ := proposal["proposal_id"].(string)
		if id == "" {
			logger.Warn("skipping proposal without id", "space", space)
			written++
			continue
		}

		votes, complete, err := p.fetchVotes(ctx, id, proposal)
		if err != nil {
			return written, truncated, err
		}
		if !complete {
			truncated = append(truncated, id)
		}

		out := make(domain.FlatRecord, len(proposal)+1)
		for k, v := range proposal {
			out[k] = v
		}
		out[VotesDataField] = votes

		name := path.Join(proposalsDir, space, id)
		if err := p.writer.WriteJSON(context.WithoutCancel(ctx), name, out); err != nil {
			return written, truncated, fmt.Errorf("write %s: %w", name, err)
		}
		written++
	}
	return written, truncated, nil
}

// fetchVotes crawls the votes of one proposal. Proposals that report zero
// votes are not queried. complete is false when the crawl ran out of retries.
func (p *GovernancePipeline) fetchVotes(
	ctx context.Context,
	id string,
	proposal domain.FlatRecord,
) (votes []domain.FlatRecord, complete bool, err error) {
	if n, err := domain.Int64Value(proposal["proposal_votes"]); err == nil && n == 0 {
		return []domain.FlatRecord{}, true, nil
	}

	collection, err := p.extractor.Extract(ctx, p.fetcher, VotesSource(p.params, id), 0)
	if err != nil {
		return nil, false, fmt.Errorf("crawl votes of %s: %w", id, err)
	}
	if collection.Len() == 0 && !collection.Partial {
		logger.Warn("proposal reports votes but none were fetched", "proposal", id)
	}
	return collection.Records, !collection.Partial, nil
}

// stringValues collects the non-empty string values of key.
func stringValues(records []domain.FlatRecord, key string) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		if s, ok := r[key].(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
