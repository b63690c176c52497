package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaChIn5419/stock-screener/internal/api/handlers"
	"github.com/SaChIn5419/stock-screener/internal/contracts"
	"github.com/SaChIn5419/stock-screener/internal/metrics"
	"github.com/SaChIn5419/stock-screener/internal/pipeline"
	"github.com/SaChIn5419/stock-screener/internal/quality"
	"github.com/SaChIn5419/stock-screener/internal/scoring"
	"github.com/SaChIn5419/stock-screener/internal/sentiment"
	"github.com/SaChIn5419/stock-screener/internal/tickers"
	"github.com/SaChIn5419/stock-screener/internal/universe"
	"github.com/SaChIn5419/stock-screener/pkg/config"
	"github.com/SaChIn5419/stock-screener/pkg/httputil"
	"github.com/SaChIn5419/stock-screener/pkg/logger"
)

// fakeProvider serves the same clean series for every symbol
type fakeProvider struct {
	fail bool
}

func (p *fakeProvider) FetchHistory(ctx context.Context, symbol string) (contracts.HistorySeries, error) {
	if p.fail {
		return nil, errors.New("feed unavailable")
	}
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	series := make(contracts.HistorySeries, 40)
	for i := range series {
		series[i] = contracts.PricePoint{
			Date:   base.AddDate(0, 0, i),
			Close:  100 + float64(i%7),
			Volume: 10000,
		}
	}
	return series, nil
}

func (p *fakeProvider) FetchFundamentals(ctx context.Context, symbol string) (contracts.FundamentalsSnapshot, error) {
	return contracts.FundamentalsSnapshot{
		Industry:  "Test",
		MarketCap: contracts.Float(1e12),
		PERatio:   contracts.Float(20),
	}, nil
}

func newTestRouter(t *testing.T, provider *fakeProvider) http.Handler {
	t.Helper()
	log := logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
	httpClient := httputil.New(log, time.Second).DisableRetry()

	validator := quality.NewValidator(quality.DefaultConfig())
	extractor := metrics.NewExtractor(validator, 0.07, log)
	runner := pipeline.NewRunner(provider, extractor, log)
	source := tickers.NewSource(httpClient, config.TickersConfig{}, nil, log)
	filter := universe.NewFilter(universe.Config{MinMarketCap: 5e10, MinPrice: 10}, log)
	engine := scoring.NewEngine(scoring.DefaultWeightConfig(), log)
	screener := pipeline.NewScreener(source, runner, filter, engine, log)

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(feed.Close)
	mood := sentiment.NewService(httpClient, log, nil).WithBaseURL(feed.URL)

	return NewRouter(
		handlers.NewScreenHandler(screener, 4, log),
		handlers.NewValidateHandler(provider, validator, log),
		handlers.NewSentimentHandler(mood),
		log,
	)
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_Screen(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/screen?mode=nifty50&top=3", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Count   int                   `json:"count"`
		Results contracts.ScoredTable `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Count)
	require.Len(t, body.Results, 3)
	assert.Equal(t, 1, body.Results[0].Rank)
}

func TestRouter_Screen_BadTop(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/screen?top=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Validate(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/validate/RELIANCE", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["passed"])
	assert.Equal(t, "RELIANCE", body["symbol"])
}

func TestRouter_Validate_FeedDown(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{fail: true})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/validate/RELIANCE", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRouter_Sentiment_NoData(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/sentiment", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var mood sentiment.Mood
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mood))
	assert.Equal(t, "Neutral (no data)", mood.Label)
}
