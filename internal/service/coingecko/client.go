package coingecko

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	phttp "TradePulse/pkg/http"
	"TradePulse/pkg/logger"
)

const baseURL = "https://api.coingecko.com/api/v3"

// coinIDs maps exchange-style symbols to CoinGecko coin ids.
var coinIDs = map[string]string{
	"BTC": "bitcoin",
	"ETH": "ethereum",
	"BNB": "binancecoin",
	"SOL": "solana",
	"XRP": "ripple",
	"ADA": "cardano",
	"DOGE": "dogecoin",
}

// Client is the fallback candle provider backed by the CoinGecko OHLC API.
// The endpoint has no volume column and a coarse fixed granularity, so it
// only serves when every Binance host is unreachable.
type Client struct {
	http *phttp.Client
	log  *logger.Logger
}

func New(timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		http: phttp.NewClient(phttp.WithTimeout(timeout)),
		log:  log,
	}
}

func (c *Client) Name() string { return "coingecko" }

// GetCandles fetches OHLC rows and trims to limit, oldest first. Volume is
// reported as zero; downstream volume indicators stay undefined rather than
// skewed.
func (c *Client) GetCandles(ctx context.Context, symbol string, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
	id, err := coinID(symbol)
	if err != nil {
		return nil, err
	}

	var raw [][]float64
	err = c.http.SendAndParse(ctx, &phttp.RequestOptions{
		Method: phttp.MethodGet,
		URL:    fmt.Sprintf("%s/coins/%s/ohlc", baseURL, id),
		QueryParams: map[string][]string{
			"vs_currency": {"usd"},
			"days":        {days(tf)},
		},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("coingecko: %w", err)
	}

	candles := make([]models.Candle, 0, len(raw))
	for _, row := range raw {
		if len(row) < 5 {
			continue
		}
		candles = append(candles, models.Candle{
			Time:  time.UnixMilli(int64(row[0])).UTC(),
			Open:  row[1],
			High:  row[2],
			Low:   row[3],
			Close: row[4],
		})
	}
	if len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

func coinID(symbol string) (string, error) {
	base := strings.ToUpper(symbol)
	for _, quote := range []string{"USDT", "USDC", "USD"} {
		base = strings.TrimSuffix(base, quote)
	}
	id, ok := coinIDs[base]
	if !ok {
		return "", fmt.Errorf("coingecko: unmapped symbol %s", symbol)
	}
	return id, nil
}

// days picks the request window wide enough for ~200 bars of the timeframe.
func days(tf drepo.Timeframe) string {
	switch tf {
	case drepo.TF1m, drepo.TF5m, drepo.TF15m, drepo.TF30m:
		return "1"
	case drepo.TF1h:
		return "30"
	case drepo.TF4h:
		return "30"
	default:
		return "180"
	}
}
