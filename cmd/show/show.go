// Package show handles listing rendered transactions
package show

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/budget-cli/cmd/common"
	"fjacquet/budget-cli/cmd/root"
	"fjacquet/budget-cli/internal/importer"
	"fjacquet/budget-cli/internal/models"
)

var (
	unselected bool
	output     string
	from       string
	to         string
)

// Cmd represents the show command
var Cmd = &cobra.Command{
	Use:   "show [category]",
	Short: "Show rendered transactions",
	Long: `Shows transactions with all notes applied: manual categorizations pulled
in, linked transactions folded together, and splits resolved. With a
category argument only that category's transactions are shown; with
--unselected only the transactions no rule or note categorized.`,
	Args: cobra.MaximumNArgs(1),
	RunE: showFunc,
}

func init() {
	Cmd.Flags().BoolVarP(&unselected, "unselected", "u", false, "Show only uncategorized transactions")
	Cmd.Flags().StringVarP(&output, "output", "o", "", "Write the transactions to a CSV file instead of stdout")
	Cmd.Flags().StringVar(&from, "from", "", "Only show transactions on or after this date")
	Cmd.Flags().StringVar(&to, "to", "", "Only show transactions on or before this date")
}

func showFunc(cmd *cobra.Command, args []string) error {
	b, err := root.OpenBudget()
	if err != nil {
		return err
	}

	var transactions []models.Transaction
	switch {
	case unselected && len(args) > 0:
		return fmt.Errorf("--unselected cannot be combined with a category")
	case unselected:
		transactions, err = b.Unselected()
	case len(args) == 1:
		transactions, err = b.Select(args[0])
	case from != "" || to != "":
		transactions, err = b.Between(from, to)
	default:
		transactions = b.All()
	}
	if err != nil {
		return err
	}

	if output != "" {
		return importer.ExportTransactions(transactions, output)
	}
	return common.PrintTransactions(cmd.OutOrStdout(), transactions, b.Notes())
}
