package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driving"
)

// runPipeline builds the services, runs the selected pipeline and prints
// a per-source summary. A partial crawl is reported but is not an error.
func runPipeline(
	cmd *cobra.Command,
	pick func(*Services) driving.Pipeline,
	runOpts driving.RunOptions,
) error {
	if flags.out == "" {
		return errOutRequired
	}
	ctx := commandContext(cmd)

	prog := newProgress(cmd.ErrOrStderr())
	defer prog.stop()

	opts := options()
	opts.OnPage = prog.onPage
	svc, cleanup, err := buildServices(ctx, opts)
	if err != nil {
		return err
	}
	defer closeServices(cleanup)

	pipeline := pick(svc)
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}

	runOpts.UseCheckpoints = flags.checkpoints
	result, err := pipeline.Run(ctx, runOpts)
	prog.stop()

	if result != nil {
		printResult(cmd, result)
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", pipeline.Name(), err)
	}
	return nil
}

func printResult(cmd *cobra.Command, result *driving.RunResult) {
	for _, s := range result.Summaries {
		marker := ""
		switch {
		case !s.Succeeded():
			marker = "  (failed)"
		case s.Partial:
			marker = "  (partial)"
		}
		cmd.Printf("%-28s %8d records  cursor %d -> %d%s\n",
			s.Source, s.Records, s.StartCursor, s.EndCursor, marker)
	}
	cmd.Printf("Run %s: %d records from %d sources written to %s\n",
		result.RunID, result.Records(), len(result.Summaries), flags.out)
	if result.Partial() {
		cmd.Println("Some sources stopped early; the next run resumes from the saved checkpoints.")
	}
}
