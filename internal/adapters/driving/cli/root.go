// Package cli implements the ledgerscrape command line.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ledgerscrape/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// flags holds the persistent flag values.
var flags struct {
	out         string
	params      string
	checkpoints bool
	verbose     bool
	history     string
	metricsFile string
	postgresDSN string
}

var rootCmd = &cobra.Command{
	Use:   "ledgerscrape",
	Short: "Extract POAP and Snapshot data from public indexers",
	Long: `ledgerscrape crawls paginated GraphQL indexes (POAP subgraphs, the
Snapshot hub) page by page, flattens the records and writes them as JSON
files. Progress is checkpointed so later runs only fetch new records.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flags.verbose)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.out, "out", "o", "", "output directory for artifacts and checkpoints")
	pf.StringVarP(&flags.params, "params", "p", "parameters.yaml", "parameters file (YAML, or TOML by .toml extension)")
	pf.BoolVarP(&flags.checkpoints, "checkpoints", "c", false, "resume every source from <out>/checkpoints.json")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log every page and request")
	pf.StringVar(&flags.history, "history", "", "SQLite file or directory for the run history")
	pf.StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")
	pf.StringVar(&flags.postgresDSN, "postgres-dsn", "", "also copy merged datasets to this PostgreSQL database")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// errOutRequired is returned by commands that write or read the output directory.
var errOutRequired = errors.New(`required flag "out" not set`)

// options converts the parsed flags for the service factory.
func options() Options {
	return Options{
		Out:         flags.out,
		ParamsPath:  flags.params,
		HistoryPath: flags.history,
		MetricsFile: flags.metricsFile,
		PostgresDSN: flags.postgresDSN,
	}
}

// commandContext returns the command's context, falling back to Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Version returns the build version.
func Version() string {
	return version
}
