package pipeline

import (
	"context"
	"sync"

	"github.com/SaChIn5419/stock-screener/internal/contracts"
	"github.com/SaChIn5419/stock-screener/internal/marketdata"
	"github.com/SaChIn5419/stock-screener/internal/metrics"
	"github.com/SaChIn5419/stock-screener/pkg/logger"
)

const progressEvery = 10

// Runner orchestrates the extraction stage: one fetch-and-derive call
// per ticker across a bounded worker pool. A single entity's failure
// never aborts the batch; its slot is simply absent from the output.
type Runner struct {
	provider  marketdata.Provider
	extractor *metrics.Extractor
	logger    *logger.Logger
}

// Config holds runner configuration
type Config struct {
	Workers int
}

// NewRunner creates a batch runner
func NewRunner(provider marketdata.Provider, extractor *metrics.Extractor, log *logger.Logger) *Runner {
	return &Runner{
		provider:  provider,
		extractor: extractor,
		logger:    log.WithField("component", "pipeline"),
	}
}

// Run derives one EntityRecord per ticker. Row order follows completion
// order, which is unspecified; downstream stages are order-independent.
func (r *Runner) Run(ctx context.Context, tickers []string, cfg Config) []contracts.EntityRecord {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	r.logger.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"workers": workers,
	}).Info("Starting extraction batch")

	tickerCh := make(chan string, len(tickers))
	resultCh := make(chan *contracts.EntityRecord, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r.worker(ctx, workerID, tickerCh, resultCh)
		}(i)
	}

	for _, ticker := range tickers {
		tickerCh <- ticker
	}
	close(tickerCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	records := make([]contracts.EntityRecord, 0, len(tickers))
	completed := 0
	for rec := range resultCh {
		completed++
		if rec != nil {
			records = append(records, *rec)
		}
		if completed%progressEvery == 0 {
			r.logger.WithFields(map[string]interface{}{
				"completed": completed,
				"total":     len(tickers),
			}).Info("Extraction progress")
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"success": len(records),
		"skipped": len(tickers) - len(records),
		"total":   len(tickers),
	}).Info("Extraction batch completed")

	return records
}

// worker fetches and derives one ticker at a time. Every ticker pulls
// exactly one result onto resultCh, nil when the entity is unusable.
func (r *Runner) worker(ctx context.Context, workerID int, tickerCh <-chan string, resultCh chan<- *contracts.EntityRecord) {
	for ticker := range tickerCh {
		select {
		case <-ctx.Done():
			resultCh <- nil
			continue
		default:
		}

		history, err := r.provider.FetchHistory(ctx, ticker)
		if err != nil {
			r.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"symbol": ticker,
			}).Warn("Failed to fetch history")
			resultCh <- nil
			continue
		}

		fundamentals, err := r.provider.FetchFundamentals(ctx, ticker)
		if err != nil {
			r.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"symbol": ticker,
			}).Warn("Failed to fetch fundamentals")
			resultCh <- nil
			continue
		}

		resultCh <- r.extractor.Derive(ticker, history, fundamentals)
	}
}
