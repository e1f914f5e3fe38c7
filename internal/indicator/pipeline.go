package indicator

import (
	"math"

	"TradePulse/internal/domain/models"
)

// Config holds the window lengths for every computed indicator.
type Config struct {
	RSIPeriod    int
	MACDFast     int
	MACDSlow     int
	MACDSignal   int
	BBPeriod     int
	BBStd        float64
	SMAPeriods   []int
	ADXPeriod    int
	ATRPeriod    int
	VolumePeriod int
	SRWindow     int
}

// DefaultConfig returns the canonical indicator periods.
func DefaultConfig() Config {
	return Config{
		RSIPeriod:    14,
		MACDFast:     12,
		MACDSlow:     26,
		MACDSignal:   9,
		BBPeriod:     20,
		BBStd:        2.0,
		SMAPeriods:   []int{20, 50},
		ADXPeriod:    14,
		ATRPeriod:    14,
		VolumePeriod: 20,
		SRWindow:     50,
	}
}

// Compute augments a candle series with every configured indicator column.
// The result has the same length and order as the input; rows inside the
// leading window of each computation carry NaN, never zero. Short input never
// fails, it only produces more undefined rows.
func Compute(candles []models.Candle, cfg Config) []models.IndicatorRow {
	n := len(candles)
	rows := make([]models.IndicatorRow, n)
	for i := range rows {
		rows[i].Candle = candles[i]
		rows[i].SMA = make(map[int]float64, len(cfg.SMAPeriods))
	}
	if n == 0 {
		return rows
	}

	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
		volumes[i] = c.Volume
	}

	rsi := computeRSI(closes, cfg.RSIPeriod)
	macd, macdSignal, macdHist := computeMACD(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	bbUpper, bbMiddle, bbLower := computeBollinger(closes, cfg.BBPeriod, cfg.BBStd)
	adx := computeADX(highs, lows, closes, cfg.ADXPeriod)
	atr := rollingMean(trueRange(highs, lows, closes), cfg.ATRPeriod)
	volumeMA := rollingMean(volumes, cfg.VolumePeriod)
	support := rollingMin(lows, cfg.SRWindow)
	resistance := rollingMax(highs, cfg.SRWindow)

	smas := make(map[int][]float64, len(cfg.SMAPeriods))
	for _, p := range cfg.SMAPeriods {
		smas[p] = rollingMean(closes, p)
	}

	for i := range rows {
		rows[i].RSI = rsi[i]
		rows[i].MACD = macd[i]
		rows[i].MACDSignal = macdSignal[i]
		rows[i].MACDHist = macdHist[i]
		rows[i].BBUpper = bbUpper[i]
		rows[i].BBMiddle = bbMiddle[i]
		rows[i].BBLower = bbLower[i]
		rows[i].ADX = adx[i]
		rows[i].ATR = atr[i]
		rows[i].VolumeMA = volumeMA[i]
		rows[i].Support = support[i]
		rows[i].Resistance = resistance[i]
		for p, col := range smas {
			rows[i].SMA[p] = col[i]
		}
	}
	return rows
}

// computeRSI uses a simple rolling mean of gains and losses, not Wilder
// smoothing. With zero rolling loss and positive gain the ratio is +Inf and
// the formula collapses to the 100 sentinel; with both zero the result is
// NaN and stays undefined.
func computeRSI(closes []float64, period int) []float64 {
	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	avgGain := rollingMean(gains, period)
	avgLoss := rollingMean(losses, period)
	out := nanSlice(n)
	for i := range out {
		if math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]) {
			continue
		}
		rs := avgGain[i] / avgLoss[i] // 0/0 yields NaN, g/0 yields +Inf
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

func computeMACD(closes []float64, fast, slow, signal int) (macd, signalLine, hist []float64) {
	n := len(closes)
	emaFast := ema(closes, fast)
	emaSlow := ema(closes, slow)
	macd = make([]float64, n)
	for i := range macd {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	signalLine = ema(macd, signal)
	hist = make([]float64, n)
	for i := range hist {
		hist[i] = macd[i] - signalLine[i]
	}
	return macd, signalLine, hist
}

func computeBollinger(closes []float64, period int, k float64) (upper, middle, lower []float64) {
	middle = rollingMean(closes, period)
	std := rollingStd(closes, period)
	n := len(closes)
	upper = make([]float64, n)
	lower = make([]float64, n)
	for i := range middle {
		upper[i] = middle[i] + k*std[i]
		lower[i] = middle[i] - k*std[i]
	}
	return upper, middle, lower
}

// trueRange computes max(high-low, |high-prevClose|, |low-prevClose|).
// The first bar has no previous close, so it falls back to high-low.
func trueRange(highs, lows, closes []float64) []float64 {
	n := len(highs)
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		hl := highs[i] - lows[i]
		if i == 0 {
			tr[i] = hl
			continue
		}
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

// computeADX smooths directional movement with plain rolling means rather
// than Wilder smoothing. The first bar has no diff, so +DM/-DM start as NaN
// and the DI columns stay undefined one window longer than ATR.
func computeADX(highs, lows, closes []float64, period int) []float64 {
	n := len(highs)
	plusDM := nanSlice(n)
	minusDM := nanSlice(n)
	for i := 1; i < n; i++ {
		up := highs[i] - highs[i-1]
		down := lows[i] - lows[i-1]
		if up < 0 {
			up = 0
		}
		if down > 0 {
			down = 0
		}
		plusDM[i] = up
		minusDM[i] = math.Abs(down)
	}

	atr := rollingMean(trueRange(highs, lows, closes), period)
	avgPlus := rollingMean(plusDM, period)
	avgMinus := rollingMean(minusDM, period)

	dx := nanSlice(n)
	for i := range dx {
		if math.IsNaN(avgPlus[i]) || math.IsNaN(avgMinus[i]) || math.IsNaN(atr[i]) {
			continue
		}
		plusDI := 100 * avgPlus[i] / atr[i]
		minusDI := 100 * avgMinus[i] / atr[i]
		sum := plusDI + minusDI
		if sum == 0 {
			dx[i] = 0
			continue
		}
		dx[i] = 100 * math.Abs(plusDI-minusDI) / sum
	}
	return rollingMean(dx, period)
}
