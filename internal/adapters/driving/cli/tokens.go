package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driving"
)

var tokensSkipEvents bool

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Export POAP events and crawl token ownership",
	Long: `Exports the POAP event API response to poap_event_data.json, then crawls
POAP tokens on Ethereum and Gnosis Chain and writes them, tagged with their
chain, to token_data.json. Checkpoints are saved after the crawl; with
--checkpoints each chain resumes after its last saved mint time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPipeline(cmd,
			func(s *Services) driving.Pipeline { return s.Tokens },
			driving.RunOptions{SkipEvents: tokensSkipEvents},
		)
	},
}

func init() {
	tokensCmd.Flags().BoolVar(&tokensSkipEvents, "skip-events", false, "do not export the event API response")
	rootCmd.AddCommand(tokensCmd)
}
