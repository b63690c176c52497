package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/SaChIn5419/stock-screener/internal/contracts"
	"github.com/SaChIn5419/stock-screener/pkg/config"
	"github.com/SaChIn5419/stock-screener/pkg/httputil"
	"github.com/SaChIn5419/stock-screener/pkg/logger"
	"github.com/SaChIn5419/stock-screener/pkg/redis"
)

// Browser-like UA; the quote endpoints reject default Go clients
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// YahooClient fetches price history and fundamentals from the Yahoo
// Finance JSON endpoints.
type YahooClient struct {
	httpClient   *httputil.Client
	logger       *logger.Logger
	cache        *redis.Cache
	baseURL      string
	suffix       string
	lookbackDays int
}

// NewYahooClient creates a Yahoo Finance client. cache may be nil to
// disable response caching.
func NewYahooClient(httpClient *httputil.Client, cfg config.MarketConfig, lookbackDays int, cache *redis.Cache, log *logger.Logger) *YahooClient {
	return &YahooClient{
		httpClient:   httpClient,
		logger:       log.WithField("component", "yahoo"),
		cache:        cache,
		baseURL:      cfg.BaseURL,
		suffix:       cfg.SymbolSuffix,
		lookbackDays: lookbackDays,
	}
}

// qualify appends the exchange suffix unless the symbol already
// carries one.
func (c *YahooClient) qualify(symbol string) string {
	if c.suffix == "" || strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + c.suffix
}

// chartResponse mirrors the v8 chart endpoint. Quote arrays use
// pointers because the feed emits null for days with no data.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchHistory fetches daily candles over the lookback window.
func (c *YahooClient) FetchHistory(ctx context.Context, symbol string) (contracts.HistorySeries, error) {
	if c.cache != nil {
		var cached contracts.HistorySeries
		if hit, err := c.cache.Get(ctx, redis.HistoryKey(symbol, c.lookbackDays), &cached); err == nil && hit {
			return cached, nil
		}
	}

	now := time.Now()
	from := now.AddDate(0, 0, -c.lookbackDays)
	url := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div%%2Csplit",
		c.baseURL, c.qualify(symbol), from.Unix(), now.Unix())

	var parsed chartResponse
	if err := c.getJSON(ctx, url, &parsed); err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", symbol, err)
	}

	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("fetch history for %s: %s", symbol, parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("fetch history for %s: empty chart response", symbol)
	}

	result := parsed.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	series := make(contracts.HistorySeries, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		series = append(series, contracts.PricePoint{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   orNaN(quote.Open, i),
			High:   orNaN(quote.High, i),
			Low:    orNaN(quote.Low, i),
			Close:  orNaN(quote.Close, i),
			Volume: orNaN(quote.Volume, i),
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"points": len(series),
	}).Debug("Fetched price history")

	if c.cache != nil {
		if err := c.cache.Set(ctx, redis.HistoryKey(symbol, c.lookbackDays), series, redis.TTLHistory); err != nil {
			c.logger.WithError(err).WithField("symbol", symbol).Warn("Failed to cache history")
		}
	}

	return series, nil
}

// rawValue mirrors Yahoo's {"raw": n, "fmt": "..."} number wrapper
type rawValue struct {
	Raw *float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile *struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
			QuoteType *struct {
				LongName string `json:"longName"`
			} `json:"quoteType"`
			SummaryDetail *struct {
				TrailingPE    rawValue `json:"trailingPE"`
				ForwardPE     rawValue `json:"forwardPE"`
				MarketCap     rawValue `json:"marketCap"`
				DividendYield rawValue `json:"dividendYield"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics *struct {
				EnterpriseToEbitda rawValue `json:"enterpriseToEbitda"`
				PegRatio           rawValue `json:"pegRatio"`
				PriceToBook        rawValue `json:"priceToBook"`
				NetIncomeToCommon  rawValue `json:"netIncomeToCommon"`
			} `json:"defaultKeyStatistics"`
			FinancialData *struct {
				ReturnOnEquity rawValue `json:"returnOnEquity"`
				FreeCashflow   rawValue `json:"freeCashflow"`
				DebtToEquity   rawValue `json:"debtToEquity"`
				ProfitMargins  rawValue `json:"profitMargins"`
				EarningsGrowth rawValue `json:"earningsGrowth"`
				RevenueGrowth  rawValue `json:"revenueGrowth"`
			} `json:"financialData"`
			IncomeStatementHistory *struct {
				Statements []struct {
					EBIT            rawValue `json:"ebit"`
					InterestExpense rawValue `json:"interestExpense"`
				} `json:"incomeStatementHistory"`
			} `json:"incomeStatementHistory"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// FetchFundamentals fetches the fundamentals snapshot via quoteSummary.
func (c *YahooClient) FetchFundamentals(ctx context.Context, symbol string) (contracts.FundamentalsSnapshot, error) {
	if c.cache != nil {
		var cached contracts.FundamentalsSnapshot
		if hit, err := c.cache.Get(ctx, redis.FundamentalsKey(symbol), &cached); err == nil && hit {
			return cached, nil
		}
	}

	modules := "assetProfile,quoteType,summaryDetail,defaultKeyStatistics,financialData,incomeStatementHistory"
	url := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s", c.baseURL, c.qualify(symbol), modules)

	var parsed quoteSummaryResponse
	if err := c.getJSON(ctx, url, &parsed); err != nil {
		return contracts.FundamentalsSnapshot{}, fmt.Errorf("fetch fundamentals for %s: %w", symbol, err)
	}

	if parsed.QuoteSummary.Error != nil {
		return contracts.FundamentalsSnapshot{}, fmt.Errorf("fetch fundamentals for %s: %s", symbol, parsed.QuoteSummary.Error.Description)
	}
	if len(parsed.QuoteSummary.Result) == 0 {
		return contracts.FundamentalsSnapshot{}, fmt.Errorf("fetch fundamentals for %s: empty response", symbol)
	}

	result := parsed.QuoteSummary.Result[0]
	snapshot := contracts.FundamentalsSnapshot{}

	if result.QuoteType != nil {
		snapshot.CompanyName = result.QuoteType.LongName
	}
	if result.AssetProfile != nil {
		snapshot.Sector = result.AssetProfile.Sector
		snapshot.Industry = result.AssetProfile.Industry
	}
	if sd := result.SummaryDetail; sd != nil {
		snapshot.PERatio = sd.TrailingPE.Raw
		snapshot.ForwardPE = sd.ForwardPE.Raw
		snapshot.MarketCap = sd.MarketCap.Raw
		snapshot.DividendYield = sd.DividendYield.Raw
	}
	if ks := result.DefaultKeyStatistics; ks != nil {
		snapshot.EVToEBITDA = ks.EnterpriseToEbitda.Raw
		snapshot.PEGRatio = ks.PegRatio.Raw
		snapshot.PriceToBook = ks.PriceToBook.Raw
		snapshot.NetIncome = ks.NetIncomeToCommon.Raw
	}
	if fd := result.FinancialData; fd != nil {
		snapshot.ROE = fd.ReturnOnEquity.Raw
		snapshot.FreeCashFlow = fd.FreeCashflow.Raw
		snapshot.DebtToEquity = fd.DebtToEquity.Raw
		snapshot.ProfitMargin = fd.ProfitMargins.Raw
		snapshot.EarningsGrowth = fd.EarningsGrowth.Raw
		snapshot.RevenueGrowth = fd.RevenueGrowth.Raw
	}
	if ih := result.IncomeStatementHistory; ih != nil && len(ih.Statements) > 0 {
		snapshot.EBIT = ih.Statements[0].EBIT.Raw
		snapshot.InterestExpense = ih.Statements[0].InterestExpense.Raw
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, redis.FundamentalsKey(symbol), snapshot, redis.TTLFundamentals); err != nil {
			c.logger.WithError(err).WithField("symbol", symbol).Warn("Failed to cache fundamentals")
		}
	}

	return snapshot, nil
}

// getJSON fetches a URL and decodes the JSON body into dest
func (c *YahooClient) getJSON(ctx context.Context, url string, dest interface{}) error {
	resp, err := c.httpClient.GetWithHeaders(ctx, url, map[string]string{
		"User-Agent": userAgent,
		"Accept":     "application/json",
	})
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func orNaN(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return math.NaN()
	}
	return *values[i]
}
