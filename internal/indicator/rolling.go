package indicator

import "math"

// Rolling-window helpers with NaN semantics matching dataframe rolling
// computations: the first window-1 outputs are NaN, and any NaN inside a
// window makes the output NaN. Series here are short (a few hundred bars),
// so plain nested loops beat anything cleverer.

func rollingApply(xs []float64, window int, fn func(win []float64) float64) []float64 {
	out := nanSlice(len(xs))
	if window <= 0 || len(xs) < window {
		return out
	}
	for i := window - 1; i < len(xs); i++ {
		win := xs[i-window+1 : i+1]
		if hasNaN(win) {
			continue
		}
		out[i] = fn(win)
	}
	return out
}

func rollingMean(xs []float64, window int) []float64 {
	return rollingApply(xs, window, mean)
}

// rollingStd computes the rolling sample standard deviation (ddof=1).
func rollingStd(xs []float64, window int) []float64 {
	return rollingApply(xs, window, sampleStd)
}

func rollingMax(xs []float64, window int) []float64 {
	return rollingApply(xs, window, func(win []float64) float64 {
		m := win[0]
		for _, v := range win[1:] {
			if v > m {
				m = v
			}
		}
		return m
	})
}

func rollingMin(xs []float64, window int) []float64 {
	return rollingApply(xs, window, func(win []float64) float64 {
		m := win[0]
		for _, v := range win[1:] {
			if v < m {
				m = v
			}
		}
		return m
	})
}

// ema computes an exponential moving average with smoothing 2/(span+1),
// seeded from the first value (adjust=False semantics). Defined for every row.
func ema(xs []float64, span int) []float64 {
	out := nanSlice(len(xs))
	if len(xs) == 0 || span <= 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	prev := xs[0]
	out[0] = prev
	for i := 1; i < len(xs); i++ {
		prev = alpha*xs[i] + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}

func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	m := mean(xs)
	sum := 0.0
	for _, v := range xs {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func hasNaN(xs []float64) bool {
	for _, v := range xs {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
