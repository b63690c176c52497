package sentiment

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"

	"github.com/SaChIn5419/stock-screener/internal/stats"
	"github.com/SaChIn5419/stock-screener/pkg/httputil"
	"github.com/SaChIn5419/stock-screener/pkg/logger"
)

const headlinesPerQuery = 15

// defaultQueries cover the broad Indian market
var defaultQueries = []string{"Nifty 50", "Indian Economy", "Sensex"}

// Headline is one scored news title
type Headline struct {
	Title     string  `json:"title"`
	Link      string  `json:"link"`
	Published string  `json:"published"`
	Polarity  float64 `json:"polarity"`
}

// Mood is the aggregate market mood on a 0-100 scale:
// 0 bearish, 50 neutral, 100 bullish.
type Mood struct {
	Score     float64    `json:"score"`
	Label     string     `json:"label"`
	Headlines []Headline `json:"headlines"`
}

// Service aggregates news sentiment from the Google News RSS feed
type Service struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	queries    []string
}

// NewService creates a sentiment service. Empty queries use the
// defaults.
func NewService(httpClient *httputil.Client, log *logger.Logger, queries []string) *Service {
	if len(queries) == 0 {
		queries = defaultQueries
	}
	return &Service{
		httpClient: httpClient,
		logger:     log.WithField("component", "sentiment"),
		baseURL:    "https://news.google.com/rss/search",
		queries:    queries,
	}
}

// WithBaseURL overrides the feed base URL. Used by tests and
// alternative deployments.
func (s *Service) WithBaseURL(baseURL string) *Service {
	s.baseURL = baseURL
	return s
}

type rssFeed struct {
	Channel struct {
		Items []struct {
			Title     string `xml:"title"`
			Link      string `xml:"link"`
			Published string `xml:"pubDate"`
		} `xml:"item"`
	} `xml:"channel"`
}

// MarketMood fetches headlines for every query, dedupes by title, and
// averages lexicon polarity into a clamped 0-100 score. Feeds that fail
// are skipped; only a fully empty result yields the no-data mood.
func (s *Service) MarketMood(ctx context.Context) Mood {
	seen := make(map[string]bool)
	headlines := make([]Headline, 0, headlinesPerQuery*len(s.queries))

	for _, query := range s.queries {
		items, err := s.fetchFeed(ctx, query)
		if err != nil {
			s.logger.WithError(err).WithField("query", query).Warn("News feed fetch failed")
			continue
		}
		for _, h := range items {
			if seen[h.Title] {
				continue
			}
			seen[h.Title] = true
			h.Polarity = Polarity(h.Title)
			headlines = append(headlines, h)
		}
	}

	if len(headlines) == 0 {
		return Mood{Score: 0, Label: "Neutral (no data)"}
	}

	var sum float64
	for _, h := range headlines {
		sum += h.Polarity
	}
	avg := sum / float64(len(headlines))

	score := 50 + avg*100
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}
	score = stats.Round(score, 1)

	mood := Mood{Score: score, Label: moodLabel(score), Headlines: headlines}

	s.logger.WithFields(map[string]interface{}{
		"headlines": len(headlines),
		"score":     score,
		"label":     mood.Label,
	}).Info("Market mood computed")

	return mood
}

func moodLabel(score float64) string {
	switch {
	case score >= 60:
		return "Bullish"
	case score <= 40:
		return "Bearish"
	default:
		return "Neutral"
	}
}

// fetchFeed pulls one RSS search feed, capped at headlinesPerQuery
func (s *Service) fetchFeed(ctx context.Context, query string) ([]Headline, error) {
	feedURL := fmt.Sprintf("%s?q=%s&hl=en-IN&gl=IN&ceid=IN:en",
		s.baseURL, url.QueryEscape(query+" when:1d"))

	resp, err := s.httpClient.Get(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: unexpected status code: %d", resp.StatusCode)
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := feed.Channel.Items
	if len(items) > headlinesPerQuery {
		items = items[:headlinesPerQuery]
	}

	headlines := make([]Headline, 0, len(items))
	for _, item := range items {
		headlines = append(headlines, Headline{
			Title:     item.Title,
			Link:      item.Link,
			Published: item.Published,
		})
	}
	return headlines, nil
}
