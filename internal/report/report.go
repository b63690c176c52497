package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/SaChIn5419/stock-screener/internal/contracts"
	"github.com/SaChIn5419/stock-screener/pkg/logger"
)

var csvHeader = []string{
	"rank", "symbol", "company", "industry", "price",
	"final_score", "quality_score", "value_score", "momentum_score",
	"valuation_metric", "valuation_z", "value_trap",
	"pe_ratio", "ev_ebitda", "market_cap",
	"annual_return_pct", "annual_volatility_pct", "sharpe",
	"max_drawdown_pct", "six_month_change_pct",
}

// Writer persists scored tables as timestamped CSV files
type Writer struct {
	dir    string
	logger *logger.Logger
}

// NewWriter creates a report writer targeting dir
func NewWriter(dir string, log *logger.Logger) *Writer {
	return &Writer{
		dir:    dir,
		logger: log.WithField("component", "report"),
	}
}

// WriteCSV writes the full scored table to a timestamped file and
// returns its path.
func (w *Writer) WriteCSV(table contracts.ScoredTable) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("screen_%s.csv", time.Now().Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	for _, rec := range table {
		row := []string{
			strconv.Itoa(rec.Rank),
			rec.Symbol,
			rec.Fundamentals.CompanyName,
			rec.Fundamentals.Industry,
			formatFloat(rec.CurrentPrice),
			formatFloat(rec.FinalScore),
			formatFloat(rec.QualityScore),
			formatFloat(rec.ValueScore),
			formatFloat(rec.MomentumScore),
			formatFloat(rec.ValuationMetric),
			formatFloat(rec.ValuationZScore),
			strconv.FormatBool(rec.IsValueTrap),
			formatOptional(rec.Fundamentals.PERatio),
			formatOptional(rec.Fundamentals.EVToEBITDA),
			formatOptional(rec.Fundamentals.MarketCap),
			formatFloat(rec.AnnualReturnPct),
			formatFloat(rec.AnnualVolatilityPct),
			formatFloat(rec.SharpeRatio),
			formatFloat(rec.MaxDrawdownPct),
			formatFloat(rec.SixMonthChangePct),
		}
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("write row for %s: %w", rec.Symbol, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush report: %w", err)
	}

	w.logger.WithFields(map[string]interface{}{
		"path": path,
		"rows": len(table),
	}).Info("Report written")

	return path, nil
}

// RenderTop writes a readable top-n table to out
func RenderTop(out io.Writer, table contracts.ScoredTable, n int) {
	top := table.Top(n)
	if len(top) == 0 {
		fmt.Fprintln(out, "No entities passed screening.")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSYMBOL\tSCORE\tQUALITY\tVALUE\tMOMENTUM\tPRICE\tTRAP")
	for _, rec := range top {
		trap := ""
		if rec.IsValueTrap {
			trap = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%.1f\t%.1f\t%.1f\t%.2f\t%s\n",
			rec.Rank, rec.Symbol, rec.FinalScore,
			rec.QualityScore, rec.ValueScore, rec.MomentumScore,
			rec.CurrentPrice, trap)
	}
	tw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatOptional(p *float64) string {
	if p == nil {
		return ""
	}
	return formatFloat(*p)
}
