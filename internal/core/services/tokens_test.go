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

type tokenHarness struct {
	pipeline    *TokenPipeline
	fetcher     *routedFetcher
	events      *stubResourceFetcher
	writer      *memory.DatasetWriter
	checkpoints *memory.CheckpointStore
	history     *memory.RunHistoryStore
}

func newTokenHarness(params *domain.Parameters, initial domain.Checkpoints) *tokenHarness {
	h := &tokenHarness{
		fetcher: newRoutedFetcher(map[string][]domain.RawRecord{
			SourceEthereum: tokenRecords(1, 5),
			SourceGnosis:   tokenRecords(10, 3),
		}),
		events:      &stubResourceFetcher{value: map[string]any{"events": []any{}}},
		writer:      memory.NewDatasetWriter(),
		checkpoints: memory.NewCheckpointStore(initial),
		history:     memory.NewRunHistoryStore(),
	}
	extractor, _ := newTestExtractor(ExtractorOptions{})
	h.pipeline = NewTokenPipeline(params, extractor, h.fetcher,
		NewResourceExporter(h.events, h.writer), h.writer, h.checkpoints)
	h.pipeline.SetRunHistory(h.history)
	return h
}

func (h *tokenHarness) tokens(t *testing.T) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, h.writer.Decode(TokenDataArtifact, &out))
	return out
}

func TestTokenPipeline_FullRun(t *testing.T) {
	h := newTokenHarness(testParameters(), nil)

	result, err := h.pipeline.Run(context.Background(), driving.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, "tokens", h.pipeline.Name())
	assert.Equal(t, 8, result.Records())
	assert.False(t, result.Partial())
	assert.NotEmpty(t, result.RunID)

	tokens := h.tokens(t)
	require.Len(t, tokens, 8)
	for i, tok := range tokens {
		if i < 5 {
			assert.Equal(t, SourceEthereum, tok[ChainTag])
		} else {
			assert.Equal(t, SourceGnosis, tok[ChainTag])
		}
		assert.Contains(t, tok, "token_id")
		assert.Contains(t, tok, "owner_id")
		assert.Contains(t, tok, "event_id")
	}

	assert.Equal(t, domain.Checkpoints{SourceEthereum: 5, SourceGnosis: 12}, result.Checkpoints)
	saved, err := h.checkpoints.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.Checkpoints, saved)

	assert.Contains(t, h.writer.Names(), EventDataArtifact)
	assert.Equal(t, []string{testParameters().PoapAPI}, h.events.urls)

	runs, err := h.history.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, r := range runs {
		assert.Equal(t, result.RunID, r.RunID)
		assert.Equal(t, "tokens", r.Pipeline)
		assert.True(t, r.Succeeded())
	}
}

func TestTokenPipeline_ResumesFromCheckpoints(t *testing.T) {
	h := newTokenHarness(testParameters(), domain.Checkpoints{
		SourceEthereum:      3,
		SourceGnosis:        12,
		"proposals:yam.eth": 7,
	})

	result, err := h.pipeline.Run(context.Background(), driving.RunOptions{UseCheckpoints: true})
	require.NoError(t, err)

	tokens := h.tokens(t)
	require.Len(t, tokens, 2)
	assert.Equal(t, "4", tokens[0]["token_created"])
	assert.Equal(t, "5", tokens[1]["token_created"])

	// Gnosis produced nothing and keeps its value; unrelated keys survive.
	assert.Equal(t, domain.Checkpoints{
		SourceEthereum:      5,
		SourceGnosis:        12,
		"proposals:yam.eth": 7,
	}, result.Checkpoints)
}

func TestTokenPipeline_FreshRunKeepsStoredCursorOfEmptySource(t *testing.T) {
	h := newTokenHarness(testParameters(), domain.Checkpoints{
		SourceEthereum: 3,
		SourceGnosis:   12,
	})
	h.fetcher.fail(SourceGnosis, &domain.ShapeError{Field: "tokens", Err: domain.ErrUnexpectedShape})

	result, err := h.pipeline.Run(context.Background(), driving.RunOptions{SkipEvents: true})
	require.NoError(t, err)

	assert.True(t, result.Partial())
	assert.Equal(t, domain.DefaultMaxShapeRetries, h.fetcher.requested(SourceGnosis))
	assert.Len(t, h.tokens(t), 5)

	saved, err := h.checkpoints.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Checkpoints{SourceEthereum: 5, SourceGnosis: 12}, saved)
}

func TestTokenPipeline_MissingCheckpointFileAbortsBeforeNetwork(t *testing.T) {
	h := newTokenHarness(testParameters(), nil)

	_, err := h.pipeline.Run(context.Background(), driving.RunOptions{UseCheckpoints: true})
	require.Error(t, err)
	assert.True(t, domain.IsConfig(err))
	assert.ErrorIs(t, err, domain.ErrCheckpointMissing)

	assert.Zero(t, h.fetcher.total())
	assert.Empty(t, h.events.urls)
	assert.Empty(t, h.writer.Names())
	assert.Zero(t, h.checkpoints.Saves())
}

func TestTokenPipeline_MissingEndpoint(t *testing.T) {
	params := testParameters()
	params.GnosisSubgraph = ""
	h := newTokenHarness(params, nil)

	_, err := h.pipeline.Run(context.Background(), driving.RunOptions{})
	require.Error(t, err)
	assert.True(t, domain.IsConfig(err))
	assert.Contains(t, err.Error(), "gchain_subgraph")
	assert.Zero(t, h.fetcher.total())
}

func TestTokenPipeline_SkipEvents(t *testing.T) {
	h := newTokenHarness(testParameters(), nil)

	_, err := h.pipeline.Run(context.Background(), driving.RunOptions{SkipEvents: true})
	require.NoError(t, err)
	assert.Empty(t, h.events.urls)
	assert.NotContains(t, h.writer.Names(), EventDataArtifact)
}

func TestTokenPipeline_EventExportFailure(t *testing.T) {
	h := newTokenHarness(testParameters(), nil)
	h.events.err = &domain.TransportError{URL: "events", StatusCode: 503}

	_, err := h.pipeline.Run(context.Background(), driving.RunOptions{})
	require.Error(t, err)
	assert.True(t, domain.IsTransport(err))
	assert.Zero(t, h.fetcher.total())
	assert.Zero(t, h.checkpoints.Saves())
}

func TestTokenPipeline_MalformedRecordFailsWithoutSaving(t *testing.T) {
	h := newTokenHarness(testParameters(), nil)
	bad := tokenRecords(1, 1)
	bad[0]["owner"] = "0xnot-an-object"
	h.fetcher.sources[SourceEthereum] = &remoteCollection{records: bad}

	result, err := h.pipeline.Run(context.Background(), driving.RunOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	assert.Zero(t, h.checkpoints.Saves())
	require.NotNil(t, result)
	require.Len(t, result.Summaries, 1)
	assert.False(t, result.Summaries[0].Succeeded())
}

func TestTokenPipeline_CancelPersistsConsumedPages(t *testing.T) {
	h := newTokenHarness(testParameters(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.fetcher.onFetch = func(call int) {
		if call == 1 {
			cancel()
		}
	}

	result, err := h.pipeline.Run(ctx, driving.RunOptions{SkipEvents: true})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)

	tokens := h.tokens(t)
	assert.Len(t, tokens, 2)
	assert.Equal(t, domain.Checkpoints{SourceEthereum: 2}, result.Checkpoints)
	assert.Zero(t, h.fetcher.requested(SourceGnosis))
}

func TestTokenPipeline_RecordSink(t *testing.T) {
	h := newTokenHarness(testParameters(), nil)
	sink := &recordingSink{}
	h.pipeline.SetRecordSink(sink)

	_, err := h.pipeline.Run(context.Background(), driving.RunOptions{SkipEvents: true})
	require.NoError(t, err)
	require.Len(t, sink.datasets, 1)
	assert.Equal(t, TokenDataArtifact, sink.datasets[0].Name)
	assert.Len(t, sink.datasets[0].Records, 8)
}

type recordingSink struct {
	datasets []domain.Dataset
	err      error
}

func (s *recordingSink) WriteDataset(_ context.Context, ds domain.Dataset) error {
	if s.err != nil {
		return s.err
	}
	s.datasets = append(s.datasets, ds)
	return nil
}

func (s *recordingSink) Close() error { return nil }
