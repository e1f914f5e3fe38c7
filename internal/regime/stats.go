package regime

import (
	"math"

	"TradePulse/internal/domain/models"
)

// Aggregation helpers that skip undefined values, matching the behavior of
// column-wise dataframe reductions. An empty input yields NaN, which every
// threshold comparison treats as false.

func closesOf(rows []models.IndicatorRow) []float64 {
	out := make([]float64, len(rows))
	for i := range rows {
		out[i] = rows[i].Close
	}
	return out
}

func appendDefined(dst []float64, v float64) []float64 {
	if math.IsNaN(v) {
		return dst
	}
	return append(dst, v)
}

func definedOf(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		out = appendDefined(out, v)
	}
	return out
}

func tailOf(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}

func sampleStdOf(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	m := meanOf(xs)
	sum := 0.0
	for _, v := range xs {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

func maxOf(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	m := xs[0]
	for _, v := range xs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	m := xs[0]
	for _, v := range xs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
