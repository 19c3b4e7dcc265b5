package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driven"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driving"
	"github.com/custodia-labs/ledgerscrape/internal/logger"
)

// crawler runs single-source crawls and records their summaries.
// It is shared by the token and governance pipelines.
type crawler struct {
	pipeline  string
	extractor driving.Extractor
	fetcher   driven.PageFetcher
	history   driven.RunHistoryStore
	sink      driven.RecordSink
	now       func() time.Time
	newRunID  func() string
}

func newCrawler(pipeline string, extractor driving.Extractor, fetcher driven.PageFetcher) crawler {
	return crawler{
		pipeline:  pipeline,
		extractor: extractor,
		fetcher:   fetcher,
		now:       time.Now,
		newRunID:  func() string { return uuid.New().String() },
	}
}

// crawl extracts one source from start and records the outcome in the run
// history. The summary's EndCursor is the checkpoint value for the source;
// stored is the saved checkpoint and is kept when the crawl fetched nothing.
func (c *crawler) crawl(
	ctx context.Context,
	runID string,
	source domain.Source,
	start, stored domain.Cursor,
) (*domain.Collection, domain.RunSummary, error) {
	summary := domain.RunSummary{
		RunID:       runID,
		Pipeline:    c.pipeline,
		Source:      source.Name,
		StartCursor: start,
		StartedAt:   c.now(),
	}

	collection, err := c.extractor.Extract(ctx, c.fetcher, source, start)

	summary.FinishedAt = c.now()
	summary.EndCursor = domain.NextCursor(stored, collection)
	if collection != nil {
		summary.Records = collection.Len()
		summary.Pages = collection.Pages
		summary.Partial = collection.Partial
	}
	if err != nil {
		summary.Error = err.Error()
	}
	if summary.Partial {
		logger.Warn("source crawled partially", "source", source.Name, "records", summary.Records)
	}

	c.record(ctx, summary)
	return collection, summary, err
}

// record stores a summary. History failures never fail the run.
func (c *crawler) record(ctx context.Context, summary domain.RunSummary) {
	if c.history == nil {
		return
	}
	if err := c.history.Record(context.WithoutCancel(ctx), summary); err != nil {
		logger.Warn("failed to record run summary", "source", summary.Source, "err", err)
	}
}

// copyToSink hands a dataset to the optional record sink.
func (c *crawler) copyToSink(ctx context.Context, dataset domain.Dataset) error {
	if c.sink == nil || len(dataset.Records) == 0 {
		return nil
	}
	if err := c.sink.WriteDataset(ctx, dataset); err != nil {
		return fmt.Errorf("sink %s: %w", dataset.Name, err)
	}
	return nil
}

// loadCheckpoints returns the stored checkpoints and the start cursors.
// When checkpoints are requested a missing file is fatal. Otherwise the
// stored mapping is only kept so that keys of other sources survive the save.
func loadCheckpoints(
	ctx context.Context,
	store driven.CheckpointStore,
	useCheckpoints bool,
) (existing, starts domain.Checkpoints, err error) {
	existing, err = store.Load(ctx)
	if err != nil {
		if useCheckpoints || !errors.Is(err, domain.ErrCheckpointMissing) {
			return nil, nil, fmt.Errorf("load checkpoints: %w", err)
		}
		existing = domain.Checkpoints{}
	}
	if useCheckpoints {
		return existing, existing.Clone(), nil
	}
	return existing, domain.Checkpoints{}, nil
}

// interrupted reports whether err is a context cancellation or deadline.
func interrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
