package main

import (
	"context"
	"errors"

	configfile "github.com/custodia-labs/ledgerscrape/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ledgerscrape/internal/adapters/driven/graphql"
	"github.com/custodia-labs/ledgerscrape/internal/adapters/driven/metrics"
	storagefile "github.com/custodia-labs/ledgerscrape/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/ledgerscrape/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ledgerscrape/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/ledgerscrape/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ledgerscrape/internal/adapters/driving/cli"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driven"
	"github.com/custodia-labs/ledgerscrape/internal/core/services"
	"github.com/custodia-labs/ledgerscrape/internal/logger"
)

// newServices wires adapters and services for one command.
//
//nolint:gocyclo // Composition root with one branch per optional adapter
func newServices(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	fail := func(err error) (*cli.Services, error) {
		if cerr := closeAll(); cerr != nil {
			logger.Warn("cleanup failed", "err", cerr)
		}
		return nil, err
	}

	svc := &cli.Services{Close: closeAll}

	// 1. Stores
	if opts.Out != "" {
		svc.Checkpoints = storagefile.NewCheckpointStore(opts.Out)
	} else {
		svc.Checkpoints = memory.NewCheckpointStore(nil)
	}
	if opts.HistoryPath != "" {
		store, err := sqlite.NewStore(opts.HistoryPath)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, store.Close)
		svc.History = store.RunHistoryStore()
		logger.Debug("run history enabled", "path", store.Path())
	}
	if opts.SkipParams {
		return svc, nil
	}

	// 2. Parameters
	params, err := configfile.NewParametersLoader().Load(opts.ParamsPath)
	if err != nil {
		return fail(err)
	}
	svc.Params = params

	// 3. Telemetry
	var observer driven.ExtractionObserver
	if opts.MetricsFile != "" {
		m := metrics.New()
		observer = m
		closers = append(closers, func() error { return m.WriteTextfile(opts.MetricsFile) })
	}

	// 4. Transport and core services
	client := graphql.NewClient(graphql.Options{
		RequestsPerSecond: params.Extraction.RequestsPerSecond,
		Timeout:           params.Extraction.RequestTimeout,
		UserAgent:         "ledgerscrape/" + cli.Version(),
	})
	writer := storagefile.NewDatasetWriter(opts.Out)

	extractorOpts := services.ExtractorOptionsFrom(params.Extraction)
	extractorOpts.Observer = observer
	extractorOpts.OnPage = opts.OnPage
	extractor := services.NewExtractor(extractorOpts)

	events := services.NewResourceExporter(client, writer)
	tokens := services.NewTokenPipeline(params, extractor, client, events, writer, svc.Checkpoints)
	governance := services.NewGovernancePipeline(params, extractor, client, writer, svc.Checkpoints)

	if svc.History != nil {
		tokens.SetRunHistory(svc.History)
		governance.SetRunHistory(svc.History)
	}

	// 5. Optional sink
	if opts.PostgresDSN != "" {
		sink, err := postgres.NewSink(ctx, opts.PostgresDSN)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, sink.Close)
		tokens.SetRecordSink(sink)
		governance.SetRecordSink(sink)
	}

	svc.Events = events
	svc.Tokens = tokens
	svc.Governance = governance
	return svc, nil
}
