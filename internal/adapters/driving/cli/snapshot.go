package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driving"
)

var snapshotSpaces []string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Crawl Snapshot spaces, proposals and votes",
	Long: `Crawls Snapshot governance data. Without --space every space on the hub is
listed first (results/spaces.json). For each space the closed proposals are
crawled, and each proposal with votes is written together with its votes to
results/spaces/<space>/<proposal>.json.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPipeline(cmd,
			func(s *Services) driving.Pipeline { return s.Governance },
			driving.RunOptions{Spaces: snapshotSpaces},
		)
	},
}

func init() {
	snapshotCmd.Flags().StringSliceVar(&snapshotSpaces, "space", nil, "space ID to crawl (repeatable)")
	rootCmd.AddCommand(snapshotCmd)
}
