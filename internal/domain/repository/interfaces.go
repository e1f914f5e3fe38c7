package repository

import (
	"context"

	"TradePulse/internal/domain/models"
)

// CandleProvider supplies an ordered OHLCV series for a symbol/timeframe.
// Implementations may fail or return a short series; callers tolerate empty
// input via the insufficient-data path.
type CandleProvider interface {
	Name() string
	GetCandles(ctx context.Context, symbol string, tf Timeframe, limit int) ([]models.Candle, error)
}

// SentimentProvider supplies the scalar market-sentiment score. The engine
// only consumes the score; fetching and scoring happen behind this interface.
type SentimentProvider interface {
	MarketSentiment(ctx context.Context, symbol string) (*models.SentimentSummary, error)
}

// PriceStream delivers live price ticks between refresh cycles.
type PriceStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// TradeEventPublisher emits position lifecycle events to an external bus.
type TradeEventPublisher interface {
	PublishOpened(ctx context.Context, p *models.Position) error
	PublishClosed(ctx context.Context, t *models.ClosedTrade) error
	Close() error
}

// CandleArchive persists fetched market candles for offline analysis. The
// trade ledger itself is deliberately memory-only.
type CandleArchive interface {
	StoreBatch(ctx context.Context, symbol string, tf Timeframe, candles []models.Candle) error
	Latest(ctx context.Context, symbol string, tf Timeframe, limit int) ([]models.Candle, error)
	Health(ctx context.Context) error
	Close() error
}

// Metrics records operational metrics for the dashboard engine.
type Metrics interface {
	RecordCycle(symbol string)
	RecordSignal(side string)
	RecordTradeClosed(result string)
	SetOpenPositions(n int)
	SetRealizedPnL(total float64)
	RecordLastPrice(symbol string, price float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
