package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driven"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driving"
	"github.com/custodia-labs/ledgerscrape/internal/logger"
)

// Ensure ResourceExporter implements the interface.
var _ driving.EventExporter = (*ResourceExporter)(nil)

// ResourceExporter fetches a single JSON resource and writes it unchanged.
type ResourceExporter struct {
	fetcher driven.ResourceFetcher
	writer  driven.DatasetWriter
}

// NewResourceExporter creates an exporter.
func NewResourceExporter(fetcher driven.ResourceFetcher, writer driven.DatasetWriter) *ResourceExporter {
	return &ResourceExporter{fetcher: fetcher, writer: writer}
}

// Export fetches url and writes the decoded body as artifact name.
// Nothing is written when the fetch fails.
func (e *ResourceExporter) Export(ctx context.Context, name, url string) error {
	if url == "" {
		return fmt.Errorf("%w: export %s: empty url", domain.ErrInvalidInput, name)
	}

	logger.Info("exporting resource", "name", name, "url", url)
	value, err := e.fetcher.FetchResource(ctx, url)
	if err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	if err := e.writer.WriteJSON(ctx, name, value); err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	logger.Debug("resource exported", "name", name)
	return nil
}
