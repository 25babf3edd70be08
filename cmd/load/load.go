// Package load handles rebuilding the ledger from the account exports
package load

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/budget-cli/cmd/root"
	"fjacquet/budget-cli/internal/budget"
)

// Cmd represents the load command
var Cmd = &cobra.Command{
	Use:   "load",
	Short: "Import account exports and rebuild the ledger",
	Long: `Reads every configured account's CSV exports, resolves duplicates,
matches the category rules, and saves the result to the database. Notes
already attached to transactions are kept.`,
	RunE: loadFunc,
}

func loadFunc(cmd *cobra.Command, args []string) error {
	b := budget.New(root.Cfg)
	if err := b.Refresh(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d transactions into %s\n", b.Ledger().Len(), root.Cfg.Store.Path)
	return nil
}
