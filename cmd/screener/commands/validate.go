package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <symbol>",
	Short: "Run the data-quality validator for one symbol",
	Long: `Fetches a symbol's price history and reports the quality
verdict: whether the series is trustworthy enough to score, and the
first reason it is not.

Example:
  go run ./cmd/screener validate RELIANCE`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	symbol := args[0]
	history, err := a.provider.FetchHistory(cmd.Context(), symbol)
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}

	verdict := a.validator.Check(history)
	if verdict.Passed {
		fmt.Printf("%s: PASS (%d points)\n", symbol, len(history))
		return nil
	}

	fmt.Printf("%s: REJECT: %s", symbol, verdict.Reason)
	if verdict.Detail != "" {
		fmt.Printf(" (%s)", verdict.Detail)
	}
	fmt.Println()
	return nil
}
