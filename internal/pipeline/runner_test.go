package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaChIn5419/stock-screener/internal/contracts"
	"github.com/SaChIn5419/stock-screener/internal/metrics"
	"github.com/SaChIn5419/stock-screener/internal/quality"
	"github.com/SaChIn5419/stock-screener/pkg/config"
	"github.com/SaChIn5419/stock-screener/pkg/logger"
)

// fakeProvider serves canned data and records concurrency.
type fakeProvider struct {
	mu          sync.Mutex
	histories   map[string]contracts.HistorySeries
	failHistory map[string]bool
	failFunds   map[string]bool
	inFlight    int
	maxInFlight int
}

func (p *fakeProvider) enter() {
	p.mu.Lock()
	p.inFlight++
	if p.inFlight > p.maxInFlight {
		p.maxInFlight = p.inFlight
	}
	p.mu.Unlock()
}

func (p *fakeProvider) leave() {
	p.mu.Lock()
	p.inFlight--
	p.mu.Unlock()
}

func (p *fakeProvider) FetchHistory(ctx context.Context, symbol string) (contracts.HistorySeries, error) {
	p.enter()
	defer p.leave()
	time.Sleep(time.Millisecond)

	if p.failHistory[symbol] {
		return nil, errors.New("feed unavailable")
	}
	return p.histories[symbol], nil
}

func (p *fakeProvider) FetchFundamentals(ctx context.Context, symbol string) (contracts.FundamentalsSnapshot, error) {
	if p.failFunds[symbol] {
		return contracts.FundamentalsSnapshot{}, errors.New("feed unavailable")
	}
	return contracts.FundamentalsSnapshot{Industry: "Test"}, nil
}

func history(closes ...float64) contracts.HistorySeries {
	s := make(contracts.HistorySeries, len(closes))
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		s[i] = contracts.PricePoint{Date: base.AddDate(0, 0, i), Close: c, Volume: 10000}
	}
	return s
}

func newTestRunner(p *fakeProvider) *Runner {
	log := logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
	extractor := metrics.NewExtractor(quality.NewValidator(quality.DefaultConfig()), 0.07, log)
	return NewRunner(p, extractor, log)
}

func TestRunner_Run(t *testing.T) {
	provider := &fakeProvider{
		histories: map[string]contracts.HistorySeries{
			"AAA": history(100, 101, 102),
			"BBB": history(50, 51, 52),
			"CCC": history(200, 201, 202),
		},
	}
	runner := newTestRunner(provider)

	records := runner.Run(context.Background(), []string{"AAA", "BBB", "CCC"}, Config{Workers: 2})
	require.Len(t, records, 3)

	symbols := make([]string, len(records))
	for i, rec := range records {
		symbols[i] = rec.Symbol
	}
	sort.Strings(symbols)
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, symbols)
}

func TestRunner_Run_SoftFailures(t *testing.T) {
	provider := &fakeProvider{
		histories: map[string]contracts.HistorySeries{
			"GOOD":  history(100, 101, 102),
			"PENNY": history(2, 2.1, 2.2), // rejected by the validator
		},
		failHistory: map[string]bool{"DEADFEED": true},
		failFunds:   map[string]bool{"NOFUNDS": true},
	}
	provider.histories["NOFUNDS"] = history(80, 81, 82)
	runner := newTestRunner(provider)

	records := runner.Run(context.Background(), []string{"GOOD", "DEADFEED", "NOFUNDS", "PENNY"}, Config{Workers: 3})

	// Only the clean entity survives; failures never abort the batch
	require.Len(t, records, 1)
	assert.Equal(t, "GOOD", records[0].Symbol)
}

func TestRunner_Run_BoundedConcurrency(t *testing.T) {
	provider := &fakeProvider{histories: map[string]contracts.HistorySeries{}}
	tickers := make([]string, 20)
	for i := range tickers {
		tickers[i] = fmt.Sprintf("S%02d", i)
		provider.histories[tickers[i]] = history(100, 101, 102)
	}
	runner := newTestRunner(provider)

	records := runner.Run(context.Background(), tickers, Config{Workers: 4})
	assert.Len(t, records, 20)
	assert.LessOrEqual(t, provider.maxInFlight, 4)
}

func TestRunner_Run_ZeroWorkersClamped(t *testing.T) {
	provider := &fakeProvider{
		histories: map[string]contracts.HistorySeries{"ONLY": history(100, 101, 102)},
	}
	runner := newTestRunner(provider)

	records := runner.Run(context.Background(), []string{"ONLY"}, Config{Workers: 0})
	assert.Len(t, records, 1)
}

func TestRunner_Run_CancelledContext(t *testing.T) {
	provider := &fakeProvider{
		histories: map[string]contracts.HistorySeries{"AAA": history(100, 101, 102)},
	}
	runner := newTestRunner(provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := runner.Run(ctx, []string{"AAA", "BBB"}, Config{Workers: 2})
	assert.Empty(t, records)
}
