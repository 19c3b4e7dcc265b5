package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	return store
}

func summary(runID, source string, started time.Time, errMsg string) domain.RunSummary {
	return domain.RunSummary{
		RunID:       runID,
		Pipeline:    "tokens",
		Source:      source,
		Records:     42,
		Pages:       3,
		StartCursor: 100,
		EndCursor:   200,
		Partial:     errMsg == "" && source == "gnosis_chain",
		Error:       errMsg,
		StartedAt:   started,
		FinishedAt:  started.Add(time.Minute),
	}
}

func TestNewStore_DirectoryUsesDefaultFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DefaultFile), store.Path())
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.RunHistoryStore().Record(ctx, summary("r1", "ethereum", time.Now(), "")))
	require.NoError(t, store.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	runs, err := reopened.RunHistoryStore().List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestNewStore_EmptyPath(t *testing.T) {
	_, err := NewStore("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRunStore_RecordAndList(t *testing.T) {
	runs := setupTestStore(t).RunHistoryStore()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, runs.Record(ctx, summary("r1", "ethereum", base, "")))
	require.NoError(t, runs.Record(ctx, summary("r1", "gnosis_chain", base.Add(time.Minute), "")))
	require.NoError(t, runs.Record(ctx, summary("r2", "ethereum", base.Add(time.Hour), "boom")))

	all, err := runs.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "r2", all[0].RunID)
	assert.Equal(t, "boom", all[0].Error)
	assert.Equal(t, "gnosis_chain", all[1].Source)
	assert.True(t, all[1].Partial)
	assert.Equal(t, domain.Cursor(100), all[2].StartCursor)
	assert.Equal(t, domain.Cursor(200), all[2].EndCursor)
	assert.Equal(t, 42, all[2].Records)
	assert.Equal(t, 3, all[2].Pages)
	assert.True(t, base.Equal(all[2].StartedAt))
	assert.Equal(t, time.Minute, all[2].Duration())

	limited, err := runs.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRunStore_LastSuccessful(t *testing.T) {
	runs := setupTestStore(t).RunHistoryStore()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, runs.Record(ctx, summary("r1", "ethereum", base, "")))
	require.NoError(t, runs.Record(ctx, summary("r2", "ethereum", base.Add(time.Hour), "transport: down")))

	last, err := runs.LastSuccessful(ctx, "ethereum")
	require.NoError(t, err)
	assert.Equal(t, "r1", last.RunID)

	_, err = runs.LastSuccessful(ctx, "gnosis_chain")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
