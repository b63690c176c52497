package commands

import (
	"fmt"
	"time"

	"github.com/SaChIn5419/stock-screener/internal/marketdata"
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
	"github.com/SaChIn5419/stock-screener/pkg/redis"
)

// app holds the wired dependency graph shared by all commands
type app struct {
	cfg         *config.Config
	log         *logger.Logger
	redisClient *redis.Client
	provider    *marketdata.YahooClient
	validator   *quality.Validator
	screener    *pipeline.Screener
	sentiment   *sentiment.Service
}

// buildApp loads config and wires the pipeline. Redis failures degrade
// to an uncached run instead of aborting.
func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	httpClient := httputil.New(log, cfg.Market.Timeout).
		WithRetry(3, time.Second).
		WithRateLimit(cfg.Market.RequestsPerSec)

	redisClient, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, running without cache")
		redisClient, _ = redis.New(&config.Config{})
	}
	cache := redis.NewCache(redisClient, "screener")

	qcfg := quality.DefaultConfig()
	qcfg.MinPrice = cfg.Screen.MinQualityPrice
	validator := quality.NewValidator(qcfg)

	provider := marketdata.NewYahooClient(httpClient, cfg.Market, cfg.Screen.LookbackDays, cache, log)
	extractor := metrics.NewExtractor(validator, cfg.Screen.RiskFreeRate, log)
	runner := pipeline.NewRunner(provider, extractor, log)
	source := tickers.NewSource(httpClient, cfg.Tickers, cache, log)
	filter := universe.NewFilter(universe.Config{
		MinMarketCap: cfg.Screen.MinMarketCap,
		MinPrice:     cfg.Screen.MinPrice,
	}, log)
	engine := scoring.NewEngine(scoring.DefaultWeightConfig(), log)

	return &app{
		cfg:         cfg,
		log:         log,
		redisClient: redisClient,
		provider:    provider,
		validator:   validator,
		screener:    pipeline.NewScreener(source, runner, filter, engine, log),
		sentiment:   sentiment.NewService(httpClient, log, nil),
	}, nil
}

func (a *app) Close() {
	if a.redisClient != nil {
		a.redisClient.Close()
	}
}
