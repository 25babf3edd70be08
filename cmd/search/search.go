// Package search handles searching transactions and notes
package search

import (
	"github.com/spf13/cobra"

	"fjacquet/budget-cli/cmd/common"
	"fjacquet/budget-cli/cmd/root"
	"fjacquet/budget-cli/internal/importer"
	"fjacquet/budget-cli/internal/models"
)

var (
	anyTerm bool
	inNotes bool
	output  string
)

// Cmd represents the search command
var Cmd = &cobra.Command{
	Use:   "search <term>...",
	Short: "Search transactions by description or note text",
	Long: `Searches transaction descriptions with case-insensitive regular
expressions. Multiple terms all have to match unless --any is given.
With --notes the note text is searched instead of the description.`,
	Args: cobra.MinimumNArgs(1),
	RunE: searchFunc,
}

func init() {
	Cmd.Flags().BoolVarP(&anyTerm, "any", "a", false, "Match transactions containing any term instead of all")
	Cmd.Flags().BoolVarP(&inNotes, "notes", "n", false, "Search note text instead of descriptions")
	Cmd.Flags().StringVarP(&output, "output", "o", "", "Write the matches to a CSV file instead of stdout")
}

func searchFunc(cmd *cobra.Command, args []string) error {
	b, err := root.OpenBudget()
	if err != nil {
		return err
	}

	var transactions []models.Transaction
	switch {
	case inNotes:
		// Note search takes a single pattern; join loosely.
		pattern := args[0]
		for _, term := range args[1:] {
			pattern += ".*" + term
		}
		transactions, err = b.SearchNotes(pattern)
	case anyTerm:
		transactions, err = b.SearchAny(args...)
	default:
		transactions, err = b.Search(args...)
	}
	if err != nil {
		return err
	}

	if output != "" {
		return importer.ExportTransactions(transactions, output)
	}
	return common.PrintTransactions(cmd.OutOrStdout(), transactions, b.Notes())
}
