package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driven"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driving"
	"github.com/custodia-labs/ledgerscrape/internal/logger"
)

// Ensure PaginatedExtractor implements the interface.
var _ driving.Extractor = (*PaginatedExtractor)(nil)

// ExtractorOptions tunes retries and pacing.
type ExtractorOptions struct {
	// RetryDelay is the fixed wait before retrying a failed page.
	RetryDelay time.Duration

	// PageDelay is the pacing wait between consecutive page fetches.
	PageDelay time.Duration

	// MaxShapeRetries bounds consecutive data-shape failures on one cursor.
	// When reached the crawl returns what it has as a partial collection.
	MaxShapeRetries int

	// MaxTransportRetries bounds consecutive transport failures.
	// Zero retries forever.
	MaxTransportRetries int

	// Observer receives telemetry. Optional.
	Observer driven.ExtractionObserver

	// OnPage is called after each consumed page. Optional.
	OnPage func(driving.PageProgress)
}

// ExtractorOptionsFrom builds options from the deployment tuning.
func ExtractorOptionsFrom(p domain.ExtractionParameters) ExtractorOptions {
	return ExtractorOptions{
		RetryDelay:          p.RetryDelay,
		PageDelay:           p.PageDelay,
		MaxShapeRetries:     p.MaxShapeRetries,
		MaxTransportRetries: p.MaxTransportRetries,
	}
}

// PaginatedExtractor crawls a cursor-ordered collection page by page.
//
// Each page asks for records with the cursor field strictly greater than
// the current cursor. The cursor then moves to the cursor value of the
// last record of the page. Only an empty page ends the crawl.
type PaginatedExtractor struct {
	opts  ExtractorOptions
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewExtractor creates an extractor.
func NewExtractor(opts ExtractorOptions) *PaginatedExtractor {
	if opts.MaxShapeRetries <= 0 {
		opts.MaxShapeRetries = domain.DefaultMaxShapeRetries
	}
	return &PaginatedExtractor{
		opts:  opts,
		sleep: sleepContext,
		now:   time.Now,
	}
}

// Extract walks source from startCursor until the remote returns an empty page.
//
//nolint:gocognit // Single crawl loop carrying cursor, accumulator and retry state
func (e *PaginatedExtractor) Extract(
	ctx context.Context,
	fetcher driven.PageFetcher,
	source domain.Source,
	startCursor domain.Cursor,
) (*domain.Collection, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("%w: nil page fetcher", domain.ErrInvalidInput)
	}
	if err := source.Validate(); err != nil {
		return nil, err
	}

	flattener := NewFlattener(source.Prefix, source.Nested...)
	collection := &domain.Collection{
		Source:      source.Name,
		Records:     []domain.FlatRecord{},
		StartCursor: startCursor,
		EndCursor:   startCursor,
	}

	cursor := startCursor
	shapeFailures := 0
	transportFailures := 0

	logger.Info("crawl started", "source", source.Name, "cursor", cursor, "page_size", source.PageSize)

	for {
		// Stop between pages; everything accumulated so far is fully consumed.
		if err := ctx.Err(); err != nil {
			return e.finish(collection), err
		}

		started := e.now()
		raw, err := fetcher.FetchPage(ctx, driven.PageRequest{
			Source:   &source,
			Cursor:   cursor,
			PageSize: source.PageSize,
		})
		collection.Fetches++

		var page []domain.FlatRecord
		var last, highest domain.Cursor
		if err == nil && len(raw) > 0 {
			page, last, highest, err = e.consume(flattener, &source, raw)
			if errors.Is(err, domain.ErrMalformedRecord) {
				return e.finish(collection), fmt.Errorf("source %s at cursor %d: %w", source.Name, cursor, err)
			}
		}

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return e.finish(collection), ctxErr
			}
			// A request that cannot be built fails the same way on every attempt.
			if errors.Is(err, domain.ErrInvalidInput) || domain.IsConfig(err) {
				return e.finish(collection), fmt.Errorf("source %s at cursor %d: %w", source.Name, cursor, err)
			}

			kind := driven.RetryShape
			attempts, budget := 0, e.opts.MaxShapeRetries
			if domain.IsTransport(err) {
				kind = driven.RetryTransport
				transportFailures++
				attempts, budget = transportFailures, e.opts.MaxTransportRetries
			} else {
				shapeFailures++
				attempts = shapeFailures
			}

			if budget > 0 && attempts >= budget {
				logger.Error("retry budget exhausted, returning partial result",
					"source", source.Name, "kind", kind, "attempts", attempts,
					"cursor", cursor, "records", len(collection.Records), "err", err)
				collection.Partial = true
				return e.finish(collection), nil
			}

			logger.Warn("page failed, retrying",
				"source", source.Name, "kind", kind, "attempt", attempts,
				"cursor", cursor, "retry_in", e.opts.RetryDelay, "err", err)
			if e.opts.Observer != nil {
				e.opts.Observer.Retried(source.Name, kind)
			}
			if err := e.sleep(ctx, e.opts.RetryDelay); err != nil {
				return e.finish(collection), err
			}
			continue
		}

		if len(raw) == 0 {
			logger.Info("crawl complete",
				"source", source.Name, "records", len(collection.Records),
				"pages", collection.Pages, "cursor", cursor)
			return e.finish(collection), nil
		}

		shapeFailures = 0
		transportFailures = 0

		collection.Records = append(collection.Records, page...)
		collection.Pages++
		if collection.Pages == 1 || highest > collection.MaxCursor {
			collection.MaxCursor = highest
		}
		cursor = last
		collection.EndCursor = cursor

		logger.Debug("page consumed",
			"source", source.Name, "page", collection.Pages, "records", len(page),
			"total", len(collection.Records), "cursor", cursor)
		if e.opts.Observer != nil {
			e.opts.Observer.PageFetched(source.Name, len(page), e.now().Sub(started))
		}
		if e.opts.OnPage != nil {
			e.opts.OnPage(driving.PageProgress{
				Source:  source.Name,
				Page:    collection.Pages,
				Records: len(page),
				Total:   len(collection.Records),
				Cursor:  cursor,
			})
		}

		if err := e.sleep(ctx, e.opts.PageDelay); err != nil {
			return e.finish(collection), err
		}
	}
}

// consume flattens one page and reads its cursor values.
// It returns the flattened records, the cursor of the last record and the
// largest cursor in the page. Nothing is kept if any record fails.
func (e *PaginatedExtractor) consume(
	flattener *Flattener,
	source *domain.Source,
	raw []domain.RawRecord,
) (page []domain.FlatRecord, last, highest domain.Cursor, err error) {
	page = make([]domain.FlatRecord, 0, len(raw))
	for i, record := range raw {
		value, ok := record[source.CursorField]
		if !ok {
			return nil, 0, 0, &domain.ShapeError{
				Field: source.CursorField,
				Err:   fmt.Errorf("%w: record %d has no cursor field", domain.ErrUnexpectedShape, i),
			}
		}
		c, err := domain.ParseCursor(value)
		if err != nil {
			return nil, 0, 0, &domain.ShapeError{Field: source.CursorField, Err: err}
		}

		flat, err := flattener.Flatten(record)
		if err != nil {
			return nil, 0, 0, err
		}

		page = append(page, flat)
		last = c
		if i == 0 || c > highest {
			highest = c
		}
	}
	return page, last, highest, nil
}

func (e *PaginatedExtractor) finish(c *domain.Collection) *domain.Collection {
	if e.opts.Observer != nil {
		e.opts.Observer.Finished(c.Source, c)
	}
	return c
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
