package regime

import (
	"math"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/indicator"
)

func rowsFromCloses(closes []float64) []models.IndicatorRow {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		candles[i] = models.Candle{
			Time:   base.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 100,
		}
	}
	return indicator.Compute(candles, indicator.DefaultConfig())
}

func trending(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestTrendUnknownBelow50Rows(t *testing.T) {
	c := New(DefaultConfig())
	for _, n := range []int{0, 1, 30, 49} {
		rows := rowsFromCloses(trending(n, 100, 1))
		trend := c.Trend(rows)
		if trend.Direction != models.TrendUnknown {
			t.Fatalf("n=%d: expected unknown trend, got %s", n, trend.Direction)
		}
		if trend.Strength != models.StrengthVeryWeak || trend.ADX != 0 {
			t.Fatalf("n=%d: expected zero strength", n)
		}
	}
}

func TestTrendBullishOnUptrend(t *testing.T) {
	c := New(DefaultConfig())
	rows := rowsFromCloses(trending(100, 100, 1))
	trend := c.Trend(rows)
	if trend.Direction != models.TrendBullish {
		t.Fatalf("expected bullish, got %s", trend.Direction)
	}
	if trend.SMAShort <= trend.SMALong {
		t.Fatalf("expected sma20 > sma50, got %v <= %v", trend.SMAShort, trend.SMALong)
	}
}

func TestTrendBearishOnDowntrend(t *testing.T) {
	c := New(DefaultConfig())
	rows := rowsFromCloses(trending(100, 300, -1))
	trend := c.Trend(rows)
	if trend.Direction != models.TrendBearish {
		t.Fatalf("expected bearish, got %s", trend.Direction)
	}
}

func TestSidewaysConfidenceMonotonic(t *testing.T) {
	for n := 0; n <= 4; n++ {
		got := math.Min(float64(n)/3.0, 1.0)
		switch n {
		case 0:
			if got != 0 {
				t.Fatalf("0 reasons: confidence %v", got)
			}
		case 3, 4:
			if got != 1 {
				t.Fatalf("%d reasons: confidence %v", n, got)
			}
		}
	}
	c := New(DefaultConfig())
	// flat series satisfies every range-bound check
	rows := rowsFromCloses(trending(100, 100, 0.001))
	info := c.Sideways(rows)
	if !info.IsSideways {
		t.Fatalf("flat series should be sideways, reasons=%v", info.Reasons)
	}
	if info.Confidence != math.Min(float64(len(info.Reasons))/3.0, 1.0) {
		t.Fatalf("confidence %v does not match %d reasons", info.Confidence, len(info.Reasons))
	}
}

func TestSidewaysInsufficientData(t *testing.T) {
	c := New(DefaultConfig())
	info := c.Sideways(rowsFromCloses(trending(5, 100, 1)))
	if info.IsSideways || info.Confidence != 0 {
		t.Fatalf("short input should not be sideways: %+v", info)
	}
}

func TestVolatilityNeutralRatioOnFlatSeries(t *testing.T) {
	c := New(DefaultConfig())
	info := c.Volatility(rowsFromCloses(trending(100, 100, 0)))
	if info.Ratio != 1 {
		t.Fatalf("flat series: expected neutral ratio 1, got %v", info.Ratio)
	}
}

func TestVolatilityShortInput(t *testing.T) {
	c := New(DefaultConfig())
	info := c.Volatility(rowsFromCloses(trending(5, 100, 1)))
	if info.Ratio != 1 || info.Current != 0 {
		t.Fatalf("short input: expected neutral volatility, got %+v", info)
	}
}

func TestCrisisOnCrashWithNegativeSentiment(t *testing.T) {
	c := New(DefaultConfig())
	closes := trending(95, 100, 0.1)
	// 10% drop over the last bars
	last := closes[len(closes)-1]
	closes = append(closes, last*0.97, last*0.92, last*0.88, last*0.85, last*0.83)
	info := c.Crisis(rowsFromCloses(closes), -0.5)
	if !info.IsCrisis {
		t.Fatalf("expected crisis, got %+v", info)
	}
	if info.Confidence > 1 {
		t.Fatalf("confidence above cap: %v", info.Confidence)
	}
	if len(info.Reasons) < 2 {
		t.Fatalf("expected multiple reasons, got %v", info.Reasons)
	}
}

func TestNoCrisisOnCalmMarket(t *testing.T) {
	c := New(DefaultConfig())
	info := c.Crisis(rowsFromCloses(trending(100, 100, 0.1)), 0.2)
	if info.IsCrisis {
		t.Fatalf("calm market flagged as crisis: %v", info.Reasons)
	}
}

func TestCrisisEmptyInput(t *testing.T) {
	c := New(DefaultConfig())
	info := c.Crisis(nil, 0)
	if info.IsCrisis || info.Confidence != 0 {
		t.Fatalf("empty input should be neutral: %+v", info)
	}
}

func TestContextBlockedReasonsAggregate(t *testing.T) {
	c := New(DefaultConfig())
	rows := rowsFromCloses(trending(100, 100, 0.001))
	ctx := c.Context(rows, 0)
	if ctx.CanTrade {
		t.Fatal("flat market should be blocked")
	}
	if len(ctx.BlockedReasons) == 0 {
		t.Fatal("expected blocked reasons")
	}
	if ctx.MarketStatus() != "blocked" {
		t.Fatalf("unexpected status %s", ctx.MarketStatus())
	}
}

func TestContextCanTradeOnStrongTrend(t *testing.T) {
	c := New(DefaultConfig())
	// steep steady uptrend: high ADX, wide range, no crisis
	rows := rowsFromCloses(trending(120, 100, 3))
	ctx := c.Context(rows, 0.1)
	if ctx.Trend.Direction != models.TrendBullish {
		t.Fatalf("expected bullish trend, got %s", ctx.Trend.Direction)
	}
	if ctx.Crisis.IsCrisis {
		t.Fatalf("uptrend flagged as crisis: %v", ctx.Crisis.Reasons)
	}
}
