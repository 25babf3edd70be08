// Package report handles the spending summary command
package report

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fjacquet/budget-cli/cmd/root"
	"fjacquet/budget-cli/internal/report"
)

var (
	period string
	avg    int
	format string
	output string
)

// Cmd represents the report command
var Cmd = &cobra.Command{
	Use:   "report [category]...",
	Short: "Summarize spending per category and period",
	Long: `Builds a table of per-category sums bucketed by reporting period. With no
arguments every category is included. A moving average window smooths the
values over trailing periods.`,
	RunE: reportFunc,
}

func init() {
	Cmd.Flags().StringVarP(&period, "period", "p", "", "Reporting period: day, week, month, or year (default from config)")
	Cmd.Flags().IntVarP(&avg, "avg", "a", -1, "Moving average window in periods (default from config)")
	Cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: csv or json (default from config)")
	Cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to a file instead of stdout")
}

func reportFunc(cmd *cobra.Command, args []string) error {
	b, err := root.OpenBudget()
	if err != nil {
		return err
	}

	if period == "" {
		period = root.Cfg.Report.Period
	}
	if avg < 0 {
		avg = root.Cfg.Report.MovingAverage
	}
	if format == "" {
		format = root.Cfg.Report.Format
	}

	categories := args
	if len(categories) == 0 {
		categories, err = b.Categories()
		if err != nil {
			return err
		}
	}

	summary, err := b.Report(categories, period, avg)
	if err != nil {
		return err
	}
	rendered, err := report.NewGenerator().Generate(summary, format)
	if err != nil {
		return err
	}

	if output != "" {
		return os.WriteFile(output, rendered, 0600)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s", rendered)
	return nil
}
