package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
	"github.com/custodia-labs/ledgerscrape/internal/core/services"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Export the POAP event API response",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if flags.out == "" {
			return errOutRequired
		}
		ctx := commandContext(cmd)

		svc, cleanup, err := buildServices(ctx, options())
		if err != nil {
			return err
		}
		defer closeServices(cleanup)

		if svc.Params == nil {
			return errors.New("parameters not loaded")
		}
		if err := svc.Params.RequireEventEndpoint(); err != nil {
			return &domain.ConfigError{Op: "validate parameters", Err: err}
		}
		if err := svc.Events.Export(ctx, services.EventDataArtifact, svc.Params.PoapAPI); err != nil {
			return err
		}
		cmd.Printf("Events written to %s\n", flags.out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
