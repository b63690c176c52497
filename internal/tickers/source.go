package tickers

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/SaChIn5419/stock-screener/pkg/config"
	"github.com/SaChIn5419/stock-screener/pkg/httputil"
	"github.com/SaChIn5419/stock-screener/pkg/logger"
	"github.com/SaChIn5419/stock-screener/pkg/redis"
)

// Ticker list modes
const (
	ModeNifty50 = "nifty50"
	ModeAll     = "all"
)

var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9&-]*$`)

// nifty50 is the built-in index list, the fallback when every remote
// source is unreachable.
var nifty50 = []string{
	"RELIANCE", "TCS", "HDFCBANK", "ICICIBANK", "INFY",
	"HINDUNILVR", "ITC", "SBIN", "BHARTIARTL", "KOTAKBANK",
	"LT", "AXISBANK", "ASIANPAINT", "MARUTI", "BAJFINANCE",
	"HCLTECH", "SUNPHARMA", "TITAN", "ULTRACEMCO", "WIPRO",
	"NESTLEIND", "NTPC", "POWERGRID", "M&M", "TATAMOTORS",
	"TATASTEEL", "ADANIENT", "ADANIPORTS", "ONGC", "COALINDIA",
	"JSWSTEEL", "BAJAJFINSV", "GRASIM", "HINDALCO", "TECHM",
	"DIVISLAB", "DRREDDY", "CIPLA", "APOLLOHOSP", "EICHERMOT",
	"HEROMOTOCO", "BAJAJ-AUTO", "BRITANNIA", "TATACONSUM", "INDUSINDBK",
	"SBILIFE", "HDFCLIFE", "BPCL", "LTIM", "UPL",
}

// Source resolves ticker lists from the exchange, degrading to the
// built-in index list when remote sources fail.
type Source struct {
	httpClient      *httputil.Client
	logger          *logger.Logger
	cache           *redis.Cache
	equityListURL   string
	constituentsURL string
}

// NewSource creates a ticker source. cache may be nil.
func NewSource(httpClient *httputil.Client, cfg config.TickersConfig, cache *redis.Cache, log *logger.Logger) *Source {
	return &Source{
		httpClient:      httpClient,
		logger:          log.WithField("component", "tickers"),
		cache:           cache,
		equityListURL:   cfg.EquityListURL,
		constituentsURL: cfg.ConstituentsURL,
	}
}

// Nifty50 returns a copy of the built-in index list
func Nifty50() []string {
	out := make([]string, len(nifty50))
	copy(out, nifty50)
	return out
}

// List resolves the ticker list for a mode. ModeAll tries the exchange
// equity CSV, then the index constituents page, and finally degrades to
// the built-in list rather than failing the run.
func (s *Source) List(ctx context.Context, mode string) ([]string, error) {
	switch mode {
	case "", ModeNifty50:
		return Nifty50(), nil
	case ModeAll:
		symbols, err := s.fetchEquityList(ctx)
		if err == nil {
			return symbols, nil
		}
		s.logger.WithError(err).Warn("Equity list fetch failed, trying constituents page")

		symbols, err = s.fetchConstituents(ctx)
		if err == nil {
			return symbols, nil
		}
		s.logger.WithError(err).Warn("Constituents fetch failed, using built-in list")

		return Nifty50(), nil
	default:
		return nil, fmt.Errorf("unknown ticker mode: %q", mode)
	}
}

// fetchEquityList downloads and parses the exchange's full equity CSV.
// Only series EQ rows are kept when the series column is present.
func (s *Source) fetchEquityList(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		var cached []string
		if hit, err := s.cache.Get(ctx, redis.TickersKey(ModeAll), &cached); err == nil && hit {
			return cached, nil
		}
	}

	resp, err := s.httpClient.Get(ctx, s.equityListURL)
	if err != nil {
		return nil, fmt.Errorf("fetch equity list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch equity list: unexpected status code: %d", resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse equity list: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("parse equity list: no data rows")
	}

	symbolCol, seriesCol := -1, -1
	for i, name := range rows[0] {
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "SYMBOL":
			symbolCol = i
		case "SERIES":
			seriesCol = i
		}
	}
	if symbolCol == -1 {
		return nil, fmt.Errorf("parse equity list: SYMBOL column not found")
	}

	symbols := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if symbolCol >= len(row) {
			continue
		}
		if seriesCol != -1 && seriesCol < len(row) && strings.TrimSpace(row[seriesCol]) != "EQ" {
			continue
		}
		symbol := strings.TrimSpace(row[symbolCol])
		if symbol != "" {
			symbols = append(symbols, symbol)
		}
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("parse equity list: no symbols found")
	}

	s.logger.WithField("count", len(symbols)).Info("Fetched equity list")

	if s.cache != nil {
		if err := s.cache.Set(ctx, redis.TickersKey(ModeAll), symbols, redis.TTLTickers); err != nil {
			s.logger.WithError(err).Warn("Failed to cache ticker list")
		}
	}

	return symbols, nil
}

// fetchConstituents scrapes index constituents from an HTML table,
// taking the first cell of each body row as the symbol.
func (s *Source) fetchConstituents(ctx context.Context) ([]string, error) {
	if s.constituentsURL == "" {
		return nil, fmt.Errorf("constituents URL not configured")
	}

	resp, err := s.httpClient.Get(ctx, s.constituentsURL)
	if err != nil {
		return nil, fmt.Errorf("fetch constituents: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch constituents: unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse constituents: %w", err)
	}

	seen := make(map[string]bool)
	symbols := make([]string, 0, 64)
	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		symbol := strings.TrimSpace(cells.Eq(0).Text())
		if !symbolPattern.MatchString(symbol) || seen[symbol] {
			return
		}
		seen[symbol] = true
		symbols = append(symbols, symbol)
	})

	if len(symbols) == 0 {
		return nil, fmt.Errorf("parse constituents: no symbols found")
	}

	s.logger.WithField("count", len(symbols)).Info("Fetched index constituents")
	return symbols, nil
}
