package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ledgerscrape/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driving"
)

type governanceHarness struct {
	pipeline    *GovernancePipeline
	fetcher     *routedFetcher
	writer      *memory.DatasetWriter
	checkpoints *memory.CheckpointStore
}

func snapshotFixtures() map[string][]domain.RawRecord {
	space := func(id string) map[string]any { return map[string]any{"id": id, "name": id} }
	return map[string][]domain.RawRecord{
		SourceSpaces: {
			{"id": "a.eth", "name": "A", "created": 1},
			{"id": "b.eth", "name": "B", "created": 2},
		},
		"proposals:a.eth": {
			{"id": "p1", "title": "first", "created": 10, "votes": 3, "space": space("a.eth")},
			{"id": "p2", "title": "second", "created": 11, "votes": 0, "space": space("a.eth")},
		},
		"votes:p1": {
			{"id": "v1", "voter": "0x1", "created": 20, "space": map[string]any{"id": "a.eth"}},
			{"id": "v2", "voter": "0x2", "created": 21, "space": map[string]any{"id": "a.eth"}},
			{"id": "v3", "voter": "0x3", "created": 22, "space": map[string]any{"id": "a.eth"}},
		},
	}
}

func newGovernanceHarness(params *domain.Parameters, initial domain.Checkpoints) *governanceHarness {
	h := &governanceHarness{
		fetcher:     newRoutedFetcher(snapshotFixtures()),
		writer:      memory.NewDatasetWriter(),
		checkpoints: memory.NewCheckpointStore(initial),
	}
	extractor, _ := newTestExtractor(ExtractorOptions{})
	h.pipeline = NewGovernancePipeline(params, extractor, h.fetcher, h.writer, h.checkpoints)
	return h
}

func (h *governanceHarness) proposal(t *testing.T, space, id string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, h.writer.Decode("results/spaces/"+space+"/"+id, &out))
	return out
}

func TestGovernancePipeline_FullRun(t *testing.T) {
	h := newGovernanceHarness(testParameters(), nil)
	sink := &recordingSink{}
	h.pipeline.SetRecordSink(sink)

	result, err := h.pipeline.Run(context.Background(), driving.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, "snapshot", h.pipeline.Name())

	var spaces []map[string]any
	require.NoError(t, h.writer.Decode(SpacesArtifact, &spaces))
	require.Len(t, spaces, 2)
	assert.Equal(t, "a.eth", spaces[0]["space_id"])

	p1 := h.proposal(t, "a.eth", "p1")
	assert.Equal(t, "first", p1["proposal_title"])
	assert.Equal(t, "a.eth", p1["space_id"])
	votes, ok := p1[VotesDataField].([]any)
	require.True(t, ok)
	assert.Len(t, votes, 3)
	assert.Equal(t, "0x1", votes[0].(map[string]any)["vote_voter"])

	p2 := h.proposal(t, "a.eth", "p2")
	assert.Empty(t, p2[VotesDataField])
	assert.Zero(t, h.fetcher.requested("votes:p2"))

	assert.Equal(t, domain.Checkpoints{"proposals:a.eth": 11, "proposals:b.eth": 0}, result.Checkpoints)

	// spaces + one entry per space
	assert.Len(t, result.Summaries, 3)
	require.Len(t, sink.datasets, 1)
	assert.Equal(t, ProposalsDataset, sink.datasets[0].Name)
	assert.Len(t, sink.datasets[0].Records, 2)
	assert.Equal(t, "proposals:a.eth", sink.datasets[0].Records[0]["source"])
}

func TestGovernancePipeline_ExplicitSpaces(t *testing.T) {
	h := newGovernanceHarness(testParameters(), nil)

	result, err := h.pipeline.Run(context.Background(), driving.RunOptions{Spaces: []string{"a.eth"}})
	require.NoError(t, err)

	assert.Zero(t, h.fetcher.requested(SourceSpaces))
	var spaces []map[string]any
	require.NoError(t, h.writer.Decode(SpacesArtifact, &spaces))
	assert.Equal(t, []map[string]any{{"space_id": "a.eth"}}, spaces)
	assert.Len(t, result.Summaries, 1)
	assert.Equal(t, domain.Checkpoints{"proposals:a.eth": 11}, result.Checkpoints)
}

func TestGovernancePipeline_ResumesPerSpace(t *testing.T) {
	h := newGovernanceHarness(testParameters(), domain.Checkpoints{
		"proposals:a.eth": 10,
		SourceEthereum:    99,
	})

	result, err := h.pipeline.Run(context.Background(), driving.RunOptions{
		UseCheckpoints: true,
		Spaces:         []string{"a.eth"},
	})
	require.NoError(t, err)

	assert.NotContains(t, h.writer.Names(), "results/spaces/a.eth/p1")
	assert.Contains(t, h.writer.Names(), "results/spaces/a.eth/p2")
	assert.Equal(t, domain.Checkpoints{"proposals:a.eth": 11, SourceEthereum: 99}, result.Checkpoints)
}

func TestGovernancePipeline_MissingHub(t *testing.T) {
	params := testParameters()
	params.SnapshotHub = ""
	h := newGovernanceHarness(params, nil)

	_, err := h.pipeline.Run(context.Background(), driving.RunOptions{})
	require.Error(t, err)
	assert.True(t, domain.IsConfig(err))
	assert.Zero(t, h.fetcher.total())
}

func TestGovernancePipeline_CancelKeepsSpaceCheckpoint(t *testing.T) {
	h := newGovernanceHarness(testParameters(), domain.Checkpoints{"proposals:a.eth": 5})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.fetcher.onFetch = func(_ int) {
		if h.fetcher.requested("votes:p1") > 0 {
			cancel()
		}
	}

	result, err := h.pipeline.Run(ctx, driving.RunOptions{Spaces: []string{"a.eth"}})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Equal(t, domain.Cursor(5), result.Checkpoints.Get("proposals:a.eth"))
}

func TestGovernancePipeline_FreshRunKeepsStoredCursorOfEmptySpace(t *testing.T) {
	h := newGovernanceHarness(testParameters(), domain.Checkpoints{
		"proposals:a.eth": 7,
		"proposals:b.eth": 4,
	})
	h.fetcher.fail("proposals:b.eth", &domain.ShapeError{Field: "proposals", Err: domain.ErrUnexpectedShape})

	result, err := h.pipeline.Run(context.Background(), driving.RunOptions{Spaces: []string{"a.eth", "b.eth"}})
	require.NoError(t, err)
	assert.True(t, result.Partial())

	saved, err := h.checkpoints.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Checkpoints{"proposals:a.eth": 11, "proposals:b.eth": 4}, saved)
}

func TestGovernancePipeline_TruncatedVotesHoldBackCheckpoint(t *testing.T) {
	h := newGovernanceHarness(testParameters(), domain.Checkpoints{"proposals:a.eth": 5})
	h.fetcher.fail("votes:p1", &domain.ShapeError{Field: "votes", Err: domain.ErrUnexpectedShape})

	result, err := h.pipeline.Run(context.Background(), driving.RunOptions{Spaces: []string{"a.eth"}})
	require.NoError(t, err)

	// Both proposals are still written; the cursor waits for a complete vote crawl.
	assert.Contains(t, h.writer.Names(), "results/spaces/a.eth/p1")
	assert.Contains(t, h.writer.Names(), "results/spaces/a.eth/p2")
	assert.Equal(t, domain.DefaultMaxShapeRetries, h.fetcher.requested("votes:p1"))

	assert.True(t, result.Partial())
	assert.Equal(t, domain.Cursor(5), result.Checkpoints.Get("proposals:a.eth"))
}
