// Package note handles attaching, removing, and listing transaction notes
package note

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fjacquet/budget-cli/cmd/root"
)

// Cmd represents the note command
var Cmd = &cobra.Command{
	Use:   "note",
	Short: "Manage transaction notes",
	Long: `Notes attach free text to a transaction by its ID. Three prefixes give a
note meaning beyond plain text:

  cat: <category>          put the transaction in a category manually
  link: <transaction id>   fold this transaction's amount into another one
  split: <parts>           split the amount, e.g. "split: 50% Groceries, 1/4 Dining"`,
}

var addCmd = &cobra.Command{
	Use:   "add <transaction id> <text>...",
	Short: "Attach a note to a transaction",
	Args:  cobra.MinimumNArgs(2),
	RunE:  addFunc,
}

var dropCmd = &cobra.Command{
	Use:   "drop <transaction id> <text>...",
	Short: "Remove a note from a transaction",
	Args:  cobra.MinimumNArgs(2),
	RunE:  dropFunc,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all notes",
	Args:  cobra.NoArgs,
	RunE:  listFunc,
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Drop notes whose transaction is no longer in the ledger",
	Args:  cobra.NoArgs,
	RunE:  cleanFunc,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(dropCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(cleanCmd)
}

func addFunc(cmd *cobra.Command, args []string) error {
	b, err := root.OpenBudget()
	if err != nil {
		return err
	}
	n, err := b.AddNote(args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s note: %s\n", n.Kind, n.Text)
	return nil
}

func dropFunc(cmd *cobra.Command, args []string) error {
	b, err := root.OpenBudget()
	if err != nil {
		return err
	}
	return b.DropNote(args[0], strings.Join(args[1:], " "))
}

func listFunc(cmd *cobra.Command, args []string) error {
	b, err := root.OpenBudget()
	if err != nil {
		return err
	}
	for _, n := range b.Notes().All() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  [%s]  %s\n", n.TransactionID, n.Kind, n.Text)
	}
	if tagged := b.TaggedCategories(); len(tagged) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Tagged categories: %s\n", strings.Join(tagged, ", "))
	}
	return nil
}

func cleanFunc(cmd *cobra.Command, args []string) error {
	b, err := root.OpenBudget()
	if err != nil {
		return err
	}
	dropped, err := b.DropOrphanNotes()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Dropped %d orphaned notes\n", dropped)
	return nil
}
