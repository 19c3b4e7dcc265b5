package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
)

var (
	runsLimit  int
	runsSource string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	Long: `Lists the run history kept in the --history database, newest first.
With --source only the last successful run of that source is shown.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if flags.history == "" {
			return errors.New(`required flag "history" not set`)
		}
		ctx := commandContext(cmd)

		opts := options()
		opts.SkipParams = true
		svc, cleanup, err := buildServices(ctx, opts)
		if err != nil {
			return err
		}
		defer closeServices(cleanup)

		if svc.History == nil {
			return errors.New("run history not configured")
		}

		var runs []domain.RunSummary
		if runsSource != "" {
			last, err := svc.History.LastSuccessful(ctx, runsSource)
			if errors.Is(err, domain.ErrNotFound) {
				cmd.Printf("No successful run of %s recorded.\n", runsSource)
				return nil
			}
			if err != nil {
				return fmt.Errorf("last run: %w", err)
			}
			runs = append(runs, *last)
		} else {
			runs, err = svc.History.List(ctx, runsLimit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
		}

		if len(runs) == 0 {
			cmd.Println("No runs recorded.")
			return nil
		}
		cmd.Println(renderRuns(runs))
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum number of runs to list (0 for all)")
	runsCmd.Flags().StringVar(&runsSource, "source", "", "show the last successful run of this source")
	rootCmd.AddCommand(runsCmd)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func renderRuns(runs []domain.RunSummary) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("STARTED", "PIPELINE", "SOURCE", "RECORDS", "CURSOR", "DURATION", "STATUS")

	for i := range runs {
		r := &runs[i]
		t.Row(
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Pipeline,
			r.Source,
			strconv.Itoa(r.Records),
			fmt.Sprintf("%d -> %d", r.StartCursor, r.EndCursor),
			r.Duration().Round(time.Millisecond).String(),
			runStatus(r),
		)
	}
	return t.String()
}

func runStatus(r *domain.RunSummary) string {
	switch {
	case !r.Succeeded():
		return "failed: " + r.Error
	case r.Partial:
		return "partial"
	default:
		return "ok"
	}
}
