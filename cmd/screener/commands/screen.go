package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SaChIn5419/stock-screener/internal/report"
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Run the full screening pipeline",
	Long: `Runs the screening pipeline end to end: resolves the ticker
list, extracts metrics in parallel, filters the investable universe,
and prints the top-ranked entities.

Example:
  go run ./cmd/screener screen
  go run ./cmd/screener screen --mode all --top 10 --save`,
	RunE: runScreen,
}

var (
	screenMode    string
	screenWorkers int
	screenTop     int
	screenSave    bool
	screenMood    bool
)

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringVar(&screenMode, "mode", "nifty50", "ticker list mode (nifty50|all)")
	screenCmd.Flags().IntVar(&screenWorkers, "workers", 0, "worker pool size (0 = config default)")
	screenCmd.Flags().IntVar(&screenTop, "top", 0, "picks to display (0 = config default)")
	screenCmd.Flags().BoolVar(&screenSave, "save", false, "write the full table to reports/")
	screenCmd.Flags().BoolVar(&screenMood, "mood", false, "include the market mood summary")
}

func runScreen(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	workers := screenWorkers
	if workers == 0 {
		workers = a.cfg.Screen.Workers
	}
	top := screenTop
	if top == 0 {
		top = a.cfg.Screen.TopN
	}

	ctx := cmd.Context()

	if screenMood {
		mood := a.sentiment.MarketMood(ctx)
		fmt.Printf("Market mood: %s (%.1f/100)\n\n", mood.Label, mood.Score)
	}

	table, err := a.screener.Screen(ctx, screenMode, workers)
	if err != nil {
		return err
	}

	report.RenderTop(os.Stdout, table, top)

	if screenSave && len(table) > 0 {
		writer := report.NewWriter("reports", a.log)
		path, err := writer.WriteCSV(table)
		if err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		fmt.Printf("\nFull table written to %s\n", path)
	}

	return nil
}
