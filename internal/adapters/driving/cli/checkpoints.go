package cli

import (
	"github.com/spf13/cobra"
)

var checkpointsCmd = &cobra.Command{
	Use:   "checkpoints",
	Short: "Print the saved checkpoints",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if flags.out == "" {
			return errOutRequired
		}
		ctx := commandContext(cmd)

		opts := options()
		opts.SkipParams = true
		svc, cleanup, err := buildServices(ctx, opts)
		if err != nil {
			return err
		}
		defer closeServices(cleanup)

		cps, err := svc.Checkpoints.Load(ctx)
		if err != nil {
			return err
		}
		if len(cps) == 0 {
			cmd.Println("No checkpoints saved.")
			return nil
		}
		for _, name := range cps.Names() {
			cmd.Printf("%-28s %d\n", name, cps[name])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkpointsCmd)
}
