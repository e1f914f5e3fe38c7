package usecase

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/indicator"
	"TradePulse/internal/ledger"
	"TradePulse/internal/regime"
	"TradePulse/internal/signal"
	"TradePulse/pkg/logger"
)

type fakeProvider struct {
	candles []models.Candle
	err     error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) GetCandles(ctx context.Context, symbol string, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
	return f.candles, f.err
}

type nopMetrics struct{}

func (nopMetrics) RecordCycle(string)            {}
func (nopMetrics) RecordSignal(string)           {}
func (nopMetrics) RecordTradeClosed(string)      {}
func (nopMetrics) SetOpenPositions(int)          {}
func (nopMetrics) SetRealizedPnL(float64)        {}
func (nopMetrics) RecordLastPrice(string, float64) {}
func (nopMetrics) RecordError(string)            {}
func (nopMetrics) RecordLatency(string, float64) {}

func syntheticCandles(n int, start, step float64) []models.Candle {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	for i := range out {
		c := start + float64(i)*step
		out[i] = models.Candle{
			Time:   base.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c * 1.02,
			Low:    c * 0.98,
			Close:  c,
			Volume: 100,
		}
	}
	return out
}

func newTestUseCase(t *testing.T, provider drepo.CandleProvider) *RefreshUseCase {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewRefreshUseCase(
		RefreshConfig{
			Symbol:       "BTCUSDT",
			Timeframe:    drepo.TF1h,
			CandleLimit:  200,
			HistoryLimit: 5,
			SMAShort:     20,
			SMALong:      50,
		},
		Deps{
			Provider:   provider,
			Metrics:    nopMetrics{},
			Logger:     log,
			Indicators: indicator.DefaultConfig(),
			Classifier: regime.New(regime.DefaultConfig()),
			Generator:  signal.New(signal.DefaultConfig()),
			Ledger:     ledger.New(ledger.DefaultConfig()),
		},
	)
}

// newPermissiveUseCase disables every regime veto so a clean uptrend always
// yields a tradable context.
func newPermissiveUseCase(t *testing.T, provider drepo.CandleProvider) *RefreshUseCase {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	rcfg := regime.DefaultConfig()
	rcfg.SidewaysADXThreshold = -1
	rcfg.SidewaysRangeThreshold = -1
	rcfg.CrisisVolatilityRatio = math.MaxFloat64
	rcfg.WeakTrendADX = 0
	return NewRefreshUseCase(
		RefreshConfig{
			Symbol:       "BTCUSDT",
			Timeframe:    drepo.TF1h,
			CandleLimit:  200,
			HistoryLimit: 5,
			SMAShort:     20,
			SMALong:      50,
		},
		Deps{
			Provider:   provider,
			Metrics:    nopMetrics{},
			Logger:     log,
			Indicators: indicator.DefaultConfig(),
			Classifier: regime.New(rcfg),
			Generator:  signal.New(signal.DefaultConfig()),
			Ledger:     ledger.New(ledger.DefaultConfig()),
		},
	)
}

func TestRefreshProducesSnapshot(t *testing.T) {
	uc := newTestUseCase(t, &fakeProvider{candles: syntheticCandles(120, 100, 2)})
	snap, err := uc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if snap.Symbol != "BTCUSDT" {
		t.Fatalf("symbol %s", snap.Symbol)
	}
	if snap.LastPrice <= 0 {
		t.Fatalf("last price %v", snap.LastPrice)
	}
	if snap.MarketContext == nil || snap.Chart == nil {
		t.Fatal("snapshot missing context or chart")
	}
	if got := uc.Snapshot(); got != snap {
		t.Fatal("snapshot not retained")
	}
}

func TestRefreshEmptyInputDegrades(t *testing.T) {
	uc := newTestUseCase(t, &fakeProvider{err: fmt.Errorf("provider down")})
	snap, err := uc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh must not fail on empty input: %v", err)
	}
	if snap.MarketContext.Trend.Direction != models.TrendUnknown {
		t.Fatalf("expected unknown trend, got %s", snap.MarketContext.Trend.Direction)
	}
	if snap.SignalText != "WAIT" {
		t.Fatalf("expected WAIT, got %s", snap.SignalText)
	}
	if len(snap.SkipReasons) == 0 {
		t.Fatal("expected skip reasons on empty input")
	}
}

func TestRefreshExecutesTradableSignal(t *testing.T) {
	uc := newTestUseCase(t, &fakeProvider{candles: syntheticCandles(150, 100, 3)})
	snap, err := uc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if snap.MarketContext.CanTrade {
		if !snap.BuySignal.Active {
			t.Fatal("tradable uptrend should open a long")
		}
		if len(snap.OpenPositions) != 1 {
			t.Fatalf("open positions %d", len(snap.OpenPositions))
		}
		if snap.Account.DailyTrades != 1 {
			t.Fatalf("daily trades %d", snap.Account.DailyTrades)
		}
		if !snap.TradePlan.Active || !snap.TradePlan.IsBuy {
			t.Fatalf("trade plan not populated: %+v", snap.TradePlan)
		}
	}
}

func TestSignalMarkerCarriesCurrentIndicators(t *testing.T) {
	uc := newPermissiveUseCase(t, &fakeProvider{candles: syntheticCandles(150, 100, 3)})
	snap, err := uc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !snap.MarketContext.CanTrade {
		t.Fatalf("expected tradable context, blocked: %v", snap.MarketContext.BlockedReasons)
	}
	if !snap.BuySignal.Active {
		t.Fatal("expected a long on the first cycle")
	}
	// first cycle has no prior snapshot; the marker must still carry the
	// triggering candle's values
	if snap.BuySignal.RSI == 0 {
		t.Fatal("marker RSI not taken from the triggering candle")
	}
	if snap.BuySignal.RSI != snap.Indicators.RSI {
		t.Fatalf("marker rsi %v != panel rsi %v", snap.BuySignal.RSI, snap.Indicators.RSI)
	}
	if snap.BuySignal.MACD != snap.Indicators.MACD {
		t.Fatalf("marker macd %v != panel macd %v", snap.BuySignal.MACD, snap.Indicators.MACD)
	}
}

func TestProcessTickMarksToMarket(t *testing.T) {
	uc := newTestUseCase(t, &fakeProvider{candles: syntheticCandles(150, 100, 3)})
	if _, err := uc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	open := uc.Positions()
	if len(open) == 0 {
		t.Skip("regime blocked trading for this series")
	}

	// gap below the stop closes the long at its stop price
	stop := open[0].StopLoss
	err := uc.Process(context.Background(), &models.Tick{
		Symbol:    "BTCUSDT",
		Price:     stop * 0.99,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(uc.Positions()) != 0 {
		t.Fatal("stop tick did not close the position")
	}
	history := uc.HistoryView(0)
	if len(history) != 1 || history[0].ExitPrice != stop {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestProcessIgnoresOtherSymbols(t *testing.T) {
	uc := newTestUseCase(t, &fakeProvider{candles: syntheticCandles(120, 100, 2)})
	if err := uc.Process(context.Background(), &models.Tick{Symbol: "ETHUSDT", Price: 1, Timestamp: 1}); err != nil {
		t.Fatalf("process: %v", err)
	}
	if uc.LastPrice() != 0 {
		t.Fatal("foreign symbol updated last price")
	}
}

func TestResetClearsLedger(t *testing.T) {
	uc := newTestUseCase(t, &fakeProvider{candles: syntheticCandles(150, 100, 3)})
	if _, err := uc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	uc.Reset()
	if len(uc.Positions()) != 0 || len(uc.HistoryView(0)) != 0 {
		t.Fatal("reset left ledger state")
	}
}

func TestBuildChartNullsUndefined(t *testing.T) {
	rows := indicator.Compute(syntheticCandles(60, 100, 1), indicator.DefaultConfig())
	chart := BuildChart(rows, 20, 50, models.Signal{}, models.Signal{})
	if len(chart.Data) < 5 {
		t.Fatalf("expected base traces, got %d", len(chart.Data))
	}
	sma := chart.Data[1]["y"].([]any)
	if sma[0] != nil {
		t.Fatal("leading SMA values must be null")
	}
	if sma[len(sma)-1] == nil {
		t.Fatal("trailing SMA value must be defined")
	}
}
