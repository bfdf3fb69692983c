package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/contract-extractor/internal/app"
	"github.com/joseph-ayodele/contract-extractor/internal/common"
)

var (
	cfgFile  string
	verbose  bool
	jsonLogs bool

	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "contracts",
	Short: "Extract structured fields from contract PDFs",
	Long: `contracts reads contract PDFs and extracts the contract number, supplier, client,
object, total amount, currency, date and location.

Fields come from regular expressions, the CLIENT/SUPPLIER signature blocks, a first-page
heuristic for the object, and an extractive QA model for the location.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = app.NewLogger(os.Stderr, verbose, jsonLogs)
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./contracts.yaml or ~/.contracts/contracts.yaml)",
	)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "log as JSON")

	rootCmd.AddCommand(extractCmd, askCmd, batchCmd, watchCmd)
}

// buildApp loads the config and wires the extractor. The caller closes the App.
func buildApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := common.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg, logger)
}
