package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	phttp "TradePulse/pkg/http"
	"TradePulse/pkg/logger"
)

// Client fetches OHLCV candles from the Binance klines REST API. Hosts are
// tried in order; the mirror host works without credentials and the main host
// covers regions where the mirror is unavailable.
type Client struct {
	hosts []string
	http  *phttp.Client
	log   *logger.Logger
}

func New(hosts []string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		hosts: hosts,
		http:  phttp.NewClient(phttp.WithTimeout(timeout)),
		log:   log,
	}
}

func (c *Client) Name() string { return "binance" }

// kline is one raw klines row: mixed numbers and numeric strings.
type kline []json.RawMessage

// GetCandles fetches up to limit candles, oldest first.
func (c *Client) GetCandles(ctx context.Context, symbol string, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
	var lastErr error
	for _, host := range c.hosts {
		candles, err := c.fetch(ctx, host, symbol, tf, limit)
		if err == nil {
			return candles, nil
		}
		lastErr = err
		c.log.Warn("binance host failed",
			logger.String("host", host),
			logger.String("symbol", symbol),
			logger.Error(err))
	}
	return nil, fmt.Errorf("binance: all hosts failed: %w", lastErr)
}

func (c *Client) fetch(ctx context.Context, host, symbol string, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
	var raw []kline
	err := c.http.SendAndParse(ctx, &phttp.RequestOptions{
		Method: phttp.MethodGet,
		URL:    host + "/api/v3/klines",
		QueryParams: map[string][]string{
			"symbol":   {symbol},
			"interval": {string(tf)},
			"limit":    {strconv.Itoa(limit)},
		},
	}, &raw)
	if err != nil {
		return nil, err
	}

	candles := make([]models.Candle, 0, len(raw))
	for _, row := range raw {
		candle, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("parse kline: %w", err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// parseKline decodes [openTimeMs, "open", "high", "low", "close", "volume", ...].
func parseKline(row kline) (models.Candle, error) {
	if len(row) < 6 {
		return models.Candle{}, fmt.Errorf("short row: %d fields", len(row))
	}
	var openTime int64
	if err := json.Unmarshal(row[0], &openTime); err != nil {
		return models.Candle{}, err
	}
	fields := make([]float64, 5)
	for i := 0; i < 5; i++ {
		var s string
		if err := json.Unmarshal(row[i+1], &s); err != nil {
			return models.Candle{}, err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, err
		}
		fields[i] = v
	}
	return models.Candle{
		Time:   time.UnixMilli(openTime).UTC(),
		Open:   fields[0],
		High:   fields[1],
		Low:    fields[2],
		Close:  fields[3],
		Volume: fields[4],
	}, nil
}
