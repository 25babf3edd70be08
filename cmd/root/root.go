// Package root contains the root command for the application
package root

import (
	"github.com/spf13/cobra"

	"fjacquet/budget-cli/internal/budget"
	"fjacquet/budget-cli/internal/category"
	"fjacquet/budget-cli/internal/config"
	"fjacquet/budget-cli/internal/importer"
	"fjacquet/budget-cli/internal/ledger"
	"fjacquet/budget-cli/internal/logging"
	"fjacquet/budget-cli/internal/notes"
	"fjacquet/budget-cli/internal/render"
	"fjacquet/budget-cli/internal/report"
	"fjacquet/budget-cli/internal/storage"
)

var (
	// Log is the shared logger instance for commands
	Log = logging.GetLogger()

	// Cfg is the application configuration, loaded before any command runs
	Cfg *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "budget",
		Short: "A CLI tool to import, categorize, and annotate bank transactions.",
		Long: `budget imports bank CSV exports into a deduplicated ledger, sorts the
transactions into categories with configurable rules, and lets you annotate
them with notes that recategorize, link, or split transactions.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()

			cfg, err := config.InitializeConfig()
			if err != nil {
				return err
			}
			Cfg = cfg

			logging.Configure(cfg.Log.Level, cfg.Log.Format)
			Log = logging.GetLogger()

			// Hand the configured logger to every engine package.
			budget.SetLogger(Log)
			category.SetLogger(Log)
			importer.SetLogger(Log)
			ledger.SetLogger(Log)
			notes.SetLogger(Log)
			render.SetLogger(Log)
			report.SetLogger(Log)
			storage.SetLogger(Log)

			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to budget!")
			Log.Info("Use --help to see available commands")
		},
	}
)

// OpenBudget loads the saved ledger state for the query commands.
func OpenBudget() (*budget.Budget, error) {
	b := budget.New(Cfg)
	if err := b.Load(); err != nil {
		return nil, err
	}
	return b, nil
}
