package pipeline

import (
	"context"
	"fmt"

	"github.com/SaChIn5419/stock-screener/internal/contracts"
	"github.com/SaChIn5419/stock-screener/internal/scoring"
	"github.com/SaChIn5419/stock-screener/internal/tickers"
	"github.com/SaChIn5419/stock-screener/internal/universe"
	"github.com/SaChIn5419/stock-screener/pkg/logger"
)

// Screener runs the full pipeline: ticker resolution, parallel metric
// extraction, universe filtering, and scoring. Shared by the CLI, the
// API, and the scheduler.
type Screener struct {
	source *tickers.Source
	runner *Runner
	filter *universe.Filter
	engine *scoring.Engine
	logger *logger.Logger
}

// NewScreener wires the pipeline stages together
func NewScreener(source *tickers.Source, runner *Runner, filter *universe.Filter, engine *scoring.Engine, log *logger.Logger) *Screener {
	return &Screener{
		source: source,
		runner: runner,
		filter: filter,
		engine: engine,
		logger: log.WithField("component", "screener"),
	}
}

// Screen executes one screening run over the ticker list for mode.
func (s *Screener) Screen(ctx context.Context, mode string, workers int) (contracts.ScoredTable, error) {
	list, err := s.source.List(ctx, mode)
	if err != nil {
		return nil, fmt.Errorf("resolve tickers: %w", err)
	}

	records := s.runner.Run(ctx, list, Config{Workers: workers})
	filtered := s.filter.Apply(records)
	table := s.engine.Score(filtered.Records)

	s.logger.WithFields(map[string]interface{}{
		"mode":      mode,
		"tickers":   len(list),
		"extracted": len(records),
		"filtered":  len(filtered.Records),
		"scored":    len(table),
	}).Info("Screen run completed")

	return table, nil
}
