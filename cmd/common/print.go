// Package common provides output helpers shared by the commands
package common

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"fjacquet/budget-cli/internal/dateutils"
	"fjacquet/budget-cli/internal/models"
	"fjacquet/budget-cli/internal/notes"
)

// PrintTransactions writes a transaction table with any attached notes and
// a total line.
func PrintTransactions(w io.Writer, transactions []models.Transaction, noteStore *notes.Store) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tAMOUNT\tDESCRIPTION\tACCOUNT\tNOTES\tID")

	var total decimal.Decimal
	for _, tx := range transactions {
		noteText := ""
		if noteStore != nil {
			for i, n := range noteStore.ByID(tx.ID) {
				if i > 0 {
					noteText += "; "
				}
				noteText += n.Text
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			dateutils.ToISODate(tx.Date), tx.Amount.StringFixed(2),
			tx.Description, tx.Account, noteText, shortID(tx.ID))
		total = total.Add(tx.Amount)
	}
	fmt.Fprintf(tw, "\t%s\ttotal (%d transactions)\t\t\t\n", total.StringFixed(2), len(transactions))
	return tw.Flush()
}

// shortID truncates a transaction hash for display. The full hash is only
// needed when adding notes, and any unique prefix is easier to read.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
