package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ledgerscrape/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
)

func TestResourceExporter_Export(t *testing.T) {
	fetcher := &stubResourceFetcher{value: []any{map[string]any{"id": float64(1)}}}
	writer := memory.NewDatasetWriter()
	exporter := NewResourceExporter(fetcher, writer)

	err := exporter.Export(context.Background(), "poap_event_data", "https://api.example.org/events")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, writer.Decode("poap_event_data", &got))
	assert.Equal(t, float64(1), got[0]["id"])
	assert.Equal(t, []string{"https://api.example.org/events"}, fetcher.urls)
}

func TestResourceExporter_FetchFailureWritesNothing(t *testing.T) {
	fetcher := &stubResourceFetcher{err: &domain.TransportError{URL: "u", StatusCode: 500}}
	writer := memory.NewDatasetWriter()
	exporter := NewResourceExporter(fetcher, writer)

	err := exporter.Export(context.Background(), "poap_event_data", "u")
	require.Error(t, err)
	assert.True(t, domain.IsTransport(err))
	assert.Empty(t, writer.Names())
}

func TestResourceExporter_EmptyURL(t *testing.T) {
	exporter := NewResourceExporter(&stubResourceFetcher{}, memory.NewDatasetWriter())
	err := exporter.Export(context.Background(), "poap_event_data", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
