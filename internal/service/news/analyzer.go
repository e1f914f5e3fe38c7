package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TradePulse/internal/domain/models"
	phttp "TradePulse/pkg/http"
	"TradePulse/pkg/logger"
)

// positiveWords and negativeWords form the scoring lexicon. Matching is
// case-insensitive on whole words of the headline.
var positiveWords = []string{
	"surge", "rally", "gain", "bullish", "soar", "adoption", "approval",
	"breakout", "record", "upgrade", "partnership", "growth", "rebound",
}

var negativeWords = []string{
	"drop", "fall", "bearish", "decline", "plunge", "fear", "selloff",
	"dump", "loss", "warning", "downgrade", "lawsuit", "fraud",
}

// crisisWords force a headline to the most negative polarity and raise a
// crisis alert regardless of the rest of the text.
var crisisWords = []string{
	"crash", "hack", "hacked", "ban", "banned", "collapse", "bankruptcy",
	"insolvency", "exploit", "liquidation", "depeg", "halt",
}

// Config holds the news source and scoring parameters.
type Config struct {
	BaseURL  string
	APIKey   string
	Limit    int
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Analyzer fetches crypto headlines and reduces them to the scalar sentiment
// consumed by the regime classifier. Results are cached per symbol so the
// refresh loop does not hammer the news API.
type Analyzer struct {
	cfg  Config
	http *phttp.Client
	log  *logger.Logger

	cached   *models.SentimentSummary
	cachedAt time.Time
}

func NewAnalyzer(cfg Config, log *logger.Logger) *Analyzer {
	return &Analyzer{
		cfg:  cfg,
		http: phttp.NewClient(phttp.WithTimeout(cfg.Timeout)),
		log:  log,
	}
}

type newsResponse struct {
	Data []struct {
		Title     string `json:"title"`
		Source    string `json:"source"`
		URL       string `json:"url"`
		Published int64  `json:"published_on"`
	} `json:"Data"`
}

// MarketSentiment returns the aggregated sentiment for a symbol. On fetch
// failure it degrades to the neutral summary so a news outage never blocks a
// refresh cycle.
func (a *Analyzer) MarketSentiment(ctx context.Context, symbol string) (*models.SentimentSummary, error) {
	if a.cached != nil && time.Since(a.cachedAt) < a.cfg.CacheTTL {
		return a.cached, nil
	}

	headlines, err := a.fetch(ctx, symbol)
	if err != nil {
		a.log.Warn("news fetch failed, using neutral sentiment",
			logger.String("symbol", symbol),
			logger.Error(err))
		return &models.SentimentSummary{Overall: "neutral"}, nil
	}

	summary := Summarize(headlines)
	a.cached = summary
	a.cachedAt = time.Now()
	return summary, nil
}

func (a *Analyzer) fetch(ctx context.Context, symbol string) ([]models.Headline, error) {
	params := map[string][]string{
		"lang":       {"EN"},
		"categories": {baseAsset(symbol)},
	}
	if a.cfg.APIKey != "" {
		params["api_key"] = []string{a.cfg.APIKey}
	}

	var resp newsResponse
	err := a.http.SendAndParse(ctx, &phttp.RequestOptions{
		Method:      phttp.MethodGet,
		URL:         a.cfg.BaseURL,
		QueryParams: params,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("news: %w", err)
	}

	limit := a.cfg.Limit
	if limit <= 0 || limit > len(resp.Data) {
		limit = len(resp.Data)
	}
	headlines := make([]models.Headline, 0, limit)
	for _, item := range resp.Data[:limit] {
		h := models.Headline{
			Title:     item.Title,
			Source:    item.Source,
			URL:       item.URL,
			Published: item.Published,
		}
		h.Polarity, h.IsCrisis = Score(item.Title)
		headlines = append(headlines, h)
	}
	return headlines, nil
}

// Score computes the lexicon polarity of one headline in [-1, 1]. A crisis
// keyword overrides everything and pins the polarity to -1.
func Score(title string) (polarity float64, isCrisis bool) {
	words := strings.Fields(strings.ToLower(title))
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.Trim(w, ".,:;!?'\"()")] = true
	}

	for _, w := range crisisWords {
		if set[w] {
			return -1.0, true
		}
	}

	score := 0
	for _, w := range positiveWords {
		if set[w] {
			score++
		}
	}
	for _, w := range negativeWords {
		if set[w] {
			score--
		}
	}
	switch {
	case score > 0:
		return min(float64(score)*0.5, 1.0), false
	case score < 0:
		return max(float64(score)*0.5, -1.0), false
	default:
		return 0, false
	}
}

// Summarize reduces scored headlines to the dashboard sentiment summary.
// The mean polarity is the score the classifier consumes.
func Summarize(headlines []models.Headline) *models.SentimentSummary {
	summary := &models.SentimentSummary{Overall: "neutral", Headlines: headlines}
	if len(headlines) == 0 {
		return summary
	}

	var sum float64
	for _, h := range headlines {
		sum += h.Polarity
		if h.IsCrisis {
			summary.CrisisAlerts++
		}
	}
	summary.Score = sum / float64(len(headlines))
	summary.CrisisImpact = float64(summary.CrisisAlerts) / float64(len(headlines))

	switch {
	case summary.Score > 0.15:
		summary.Overall = "positive"
	case summary.Score < -0.15:
		summary.Overall = "negative"
	}
	return summary
}

func baseAsset(symbol string) string {
	s := strings.ToUpper(symbol)
	for _, quote := range []string{"USDT", "USDC", "USD"} {
		s = strings.TrimSuffix(s, quote)
	}
	if s == "" {
		return "BTC"
	}
	return s
}
