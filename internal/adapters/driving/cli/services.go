package cli

import (
	"context"
	"errors"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driven"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driving"
	"github.com/custodia-labs/ledgerscrape/internal/logger"
)

// Options carries the flag values the services are built from.
type Options struct {
	Out         string
	ParamsPath  string
	HistoryPath string
	MetricsFile string
	PostgresDSN string

	// SkipParams builds only the stores; Params and the pipelines stay nil.
	SkipParams bool

	// OnPage receives crawl progress. Optional.
	OnPage func(driving.PageProgress)
}

// Services are the wired application services for one command.
type Services struct {
	Params      *domain.Parameters
	Tokens      driving.Pipeline
	Governance  driving.Pipeline
	Events      driving.EventExporter
	Checkpoints driven.CheckpointStore

	// History is nil when no run history is configured.
	History driven.RunHistoryStore

	// Close flushes metrics and releases stores. Optional.
	Close func() error
}

// ServiceFactory builds the services once flags are parsed.
type ServiceFactory func(ctx context.Context, opts Options) (*Services, error)

var serviceFactory ServiceFactory

// SetServiceFactory installs the factory used by every command.
func SetServiceFactory(f ServiceFactory) {
	serviceFactory = f
}

// buildServices runs the factory and returns a cleanup that closes them.
func buildServices(ctx context.Context, opts Options) (*Services, func() error, error) {
	if serviceFactory == nil {
		return nil, nil, errors.New("services not configured")
	}
	svc, err := serviceFactory(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() error {
		if svc.Close == nil {
			return nil
		}
		return svc.Close()
	}
	return svc, cleanup, nil
}

// closeServices runs cleanup, which also flushes metrics, and logs a failure.
func closeServices(cleanup func() error) {
	if err := cleanup(); err != nil {
		logger.Warn("cleanup failed", "err", err)
	}
}
