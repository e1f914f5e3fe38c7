package indicator

import (
	"math"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
)

func makeCandles(closes []float64) []models.Candle {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{
			Time:   base.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 100,
		}
	}
	return out
}

func monotonic(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestComputeSameLength(t *testing.T) {
	candles := makeCandles(monotonic(60, 100, 1))
	rows := Compute(candles, DefaultConfig())
	if len(rows) != len(candles) {
		t.Fatalf("expected %d rows, got %d", len(candles), len(rows))
	}
	for i := range rows {
		if !rows[i].Time.Equal(candles[i].Time) {
			t.Fatalf("row %d out of order", i)
		}
	}
}

func TestComputeShortInputAllUndefined(t *testing.T) {
	rows := Compute(makeCandles(monotonic(5, 100, 1)), DefaultConfig())
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	for i := range rows {
		if models.Defined(rows[i].RSI) {
			t.Fatalf("row %d: RSI should be undefined on short input", i)
		}
		if models.Defined(rows[i].BBMiddle) {
			t.Fatalf("row %d: BB should be undefined on short input", i)
		}
	}
}

func TestRSIBoundsMonotonicUp(t *testing.T) {
	rows := Compute(makeCandles(monotonic(60, 100, 1)), DefaultConfig())
	defined := 0
	for i := range rows {
		rsi := rows[i].RSI
		if !models.Defined(rsi) {
			continue
		}
		defined++
		if rsi < 0 || rsi > 100 {
			t.Fatalf("row %d: RSI %v out of [0,100]", i, rsi)
		}
		// gain-only series collapses to the 100 sentinel
		if rsi != 100 {
			t.Fatalf("row %d: expected RSI 100 on gain-only series, got %v", i, rsi)
		}
	}
	if defined == 0 {
		t.Fatal("no defined RSI rows")
	}
}

func TestRSIBoundsMonotonicDown(t *testing.T) {
	rows := Compute(makeCandles(monotonic(60, 200, -1)), DefaultConfig())
	for i := range rows {
		rsi := rows[i].RSI
		if !models.Defined(rsi) {
			continue
		}
		if rsi < 0 || rsi > 100 {
			t.Fatalf("row %d: RSI %v out of [0,100]", i, rsi)
		}
		if rsi != 0 {
			t.Fatalf("row %d: expected RSI 0 on loss-only series, got %v", i, rsi)
		}
	}
}

func TestRSIFlatSeriesUndefined(t *testing.T) {
	rows := Compute(makeCandles(monotonic(60, 100, 0)), DefaultConfig())
	last := rows[len(rows)-1]
	if models.Defined(last.RSI) {
		t.Fatalf("flat series: expected undefined RSI, got %v", last.RSI)
	}
}

func TestMACDHistogramIdentity(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/5)
	}
	rows := Compute(makeCandles(closes), DefaultConfig())
	for i := range rows {
		r := &rows[i]
		if !models.Defined(r.MACDHist) {
			continue
		}
		if r.MACDHist != r.MACD-r.MACDSignal {
			t.Fatalf("row %d: hist %v != macd-signal %v", i, r.MACDHist, r.MACD-r.MACDSignal)
		}
	}
}

func TestRollingMeanWindowEdge(t *testing.T) {
	got := rollingMean([]float64{1, 2, 3, 4}, 3)
	if models.Defined(got[0]) || models.Defined(got[1]) {
		t.Fatal("leading rows should be undefined")
	}
	if got[2] != 2 || got[3] != 3 {
		t.Fatalf("unexpected means %v", got)
	}
}

func TestRollingStdSample(t *testing.T) {
	got := rollingStd([]float64{2, 4, 6}, 3)
	if math.Abs(got[2]-2) > 1e-12 {
		t.Fatalf("expected sample std 2, got %v", got[2])
	}
}

func TestBollingerBandOrdering(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 5*math.Sin(float64(i)/3)
	}
	rows := Compute(makeCandles(closes), DefaultConfig())
	for i := range rows {
		r := &rows[i]
		if !models.Defined(r.BBMiddle) {
			continue
		}
		if r.BBUpper < r.BBMiddle || r.BBMiddle < r.BBLower {
			t.Fatalf("row %d: band ordering violated", i)
		}
	}
}

func TestADXDefinedAfterDoubleWindow(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/4)
	}
	cfg := DefaultConfig()
	rows := Compute(makeCandles(closes), cfg)
	p := cfg.ADXPeriod
	for i := 0; i < 2*p-1; i++ {
		if models.Defined(rows[i].ADX) {
			t.Fatalf("row %d: ADX defined inside warmup", i)
		}
	}
	last := rows[len(rows)-1]
	if !models.Defined(last.ADX) {
		t.Fatal("ADX undefined after warmup")
	}
	if last.ADX < 0 || last.ADX > 100 {
		t.Fatalf("ADX %v out of [0,100]", last.ADX)
	}
}

func TestSupportResistanceBracketClose(t *testing.T) {
	rows := Compute(makeCandles(monotonic(60, 100, 1)), DefaultConfig())
	last := rows[len(rows)-1]
	if !models.Defined(last.Support) || !models.Defined(last.Resistance) {
		t.Fatal("support/resistance undefined")
	}
	if last.Support > last.Close || last.Resistance < last.Close {
		t.Fatalf("support %v / resistance %v do not bracket close %v", last.Support, last.Resistance, last.Close)
	}
}

func TestPctChangeFirstUndefined(t *testing.T) {
	got := PctChange([]float64{100, 110, 99})
	if models.Defined(got[0]) {
		t.Fatal("first return should be undefined")
	}
	if math.Abs(got[1]-0.1) > 1e-12 {
		t.Fatalf("unexpected return %v", got[1])
	}
}
