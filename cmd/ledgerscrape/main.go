// Command ledgerscrape extracts POAP and Snapshot data from public indexers.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/ledgerscrape/internal/adapters/driving/cli"
	"github.com/custodia-labs/ledgerscrape/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetServiceFactory(newServices)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}
