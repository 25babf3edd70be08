package main

import (
	"os"

	"fjacquet/budget-cli/cmd/load"
	"fjacquet/budget-cli/cmd/note"
	"fjacquet/budget-cli/cmd/report"
	"fjacquet/budget-cli/cmd/root"
	"fjacquet/budget-cli/cmd/search"
	"fjacquet/budget-cli/cmd/show"
)

func init() {
	root.Cmd.AddCommand(load.Cmd)
	root.Cmd.AddCommand(show.Cmd)
	root.Cmd.AddCommand(search.Cmd)
	root.Cmd.AddCommand(note.Cmd)
	root.Cmd.AddCommand(report.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
