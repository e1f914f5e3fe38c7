package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/service/cache"
	"TradePulse/pkg/logger"
)

// Chain tries candle providers in configured order and returns the first
// non-empty series. A provider that errors or returns nothing just moves the
// chain along; only full exhaustion is an error.
type Chain struct {
	providers []drepo.CandleProvider
	log       *logger.Logger
}

func NewChain(log *logger.Logger, providers ...drepo.CandleProvider) *Chain {
	return &Chain{providers: providers, log: log}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) GetCandles(ctx context.Context, symbol string, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
	var lastErr error
	for _, p := range c.providers {
		candles, err := p.GetCandles(ctx, symbol, tf, limit)
		if err != nil {
			lastErr = err
			c.log.Warn("candle provider failed",
				logger.String("provider", p.Name()),
				logger.String("symbol", symbol),
				logger.Error(err))
			continue
		}
		if len(candles) == 0 {
			c.log.Warn("candle provider returned empty series",
				logger.String("provider", p.Name()),
				logger.String("symbol", symbol))
			continue
		}
		return candles, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("all candle providers failed: %w", lastErr)
	}
	return nil, fmt.Errorf("no candle provider produced data for %s", symbol)
}

// Cached decorates a provider with a byte cache keyed by symbol/timeframe/
// limit, so back-to-back dashboard requests inside one refresh interval do
// not refetch.
type Cached struct {
	inner drepo.CandleProvider
	cache cache.BytesCache
	ttl   time.Duration
}

func NewCached(inner drepo.CandleProvider, c cache.BytesCache, ttl time.Duration) *Cached {
	return &Cached{inner: inner, cache: c, ttl: ttl}
}

func (c *Cached) Name() string { return c.inner.Name() }

func (c *Cached) GetCandles(ctx context.Context, symbol string, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
	key := fmt.Sprintf("candles:%s:%s:%d", symbol, tf, limit)
	if b, ok, err := c.cache.GetBytes(key); err == nil && ok {
		var candles []models.Candle
		if err := json.Unmarshal(b, &candles); err == nil {
			return candles, nil
		}
	}

	candles, err := c.inner.GetCandles(ctx, symbol, tf, limit)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(candles); err == nil {
		_ = c.cache.SetBytes(key, b, c.ttl)
	}
	return candles, nil
}
