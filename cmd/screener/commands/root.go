package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Quant stock screener for NSE equities",
	Long: `Stock Screener CLI

Pulls price history and fundamentals per symbol, validates data
quality, filters the investable universe, and ranks a composite
score across value, quality, and momentum factors.

Examples:
  go run ./cmd/screener screen
  go run ./cmd/screener screen --mode all --top 10 --save
  go run ./cmd/screener validate RELIANCE
  go run ./cmd/screener serve --port 8080
  go run ./cmd/screener schedule --cron "0 18 * * 1-5"`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}
