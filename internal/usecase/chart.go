package usecase

import (
	"time"

	"TradePulse/internal/domain/models"
)

// chartMaxBars caps how much of the series is rendered.
const chartMaxBars = 200

// BuildChart assembles the plotly-compatible payload: a candlestick trace,
// the moving averages and Bollinger band lines, and buy/sell markers.
func BuildChart(rows []models.IndicatorRow, smaShort, smaLong int, buy, sell models.Signal) *models.ChartPayload {
	if len(rows) > chartMaxBars {
		rows = rows[len(rows)-chartMaxBars:]
	}

	n := len(rows)
	times := make([]string, n)
	opens := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	shortSMA := make([]any, n)
	longSMA := make([]any, n)
	bbUpper := make([]any, n)
	bbLower := make([]any, n)
	for i := range rows {
		r := &rows[i]
		times[i] = r.Time.Format(time.RFC3339)
		opens[i] = r.Open
		highs[i] = r.High
		lows[i] = r.Low
		closes[i] = r.Close
		shortSMA[i] = nullableValue(r.SMAAt(smaShort))
		longSMA[i] = nullableValue(r.SMAAt(smaLong))
		bbUpper[i] = nullableValue(r.BBUpper)
		bbLower[i] = nullableValue(r.BBLower)
	}

	data := []map[string]any{
		{
			"type":  "candlestick",
			"name":  "price",
			"x":     times,
			"open":  opens,
			"high":  highs,
			"low":   lows,
			"close": closes,
		},
		lineTrace("SMA 20", times, shortSMA, "#f39c12"),
		lineTrace("SMA 50", times, longSMA, "#8e44ad"),
		bandTrace("BB upper", times, bbUpper),
		bandTrace("BB lower", times, bbLower),
	}

	if buy.Active {
		data = append(data, markerTrace("buy", buy, "triangle-up", "#2ecc71"))
	}
	if sell.Active {
		data = append(data, markerTrace("sell", sell, "triangle-down", "#e74c3c"))
	}

	layout := map[string]any{
		"template":      "plotly_dark",
		"showlegend":    true,
		"margin":        map[string]any{"l": 40, "r": 20, "t": 30, "b": 30},
		"xaxis":         map[string]any{"rangeslider": map[string]any{"visible": false}},
		"yaxis":         map[string]any{"title": "price"},
		"paper_bgcolor": "rgba(0,0,0,0)",
		"plot_bgcolor":  "rgba(0,0,0,0)",
	}

	return &models.ChartPayload{Data: data, Layout: layout}
}

func lineTrace(name string, x []string, y []any, color string) map[string]any {
	return map[string]any{
		"type": "scatter",
		"mode": "lines",
		"name": name,
		"x":    x,
		"y":    y,
		"line": map[string]any{"color": color, "width": 1.5},
	}
}

func bandTrace(name string, x []string, y []any) map[string]any {
	return map[string]any{
		"type": "scatter",
		"mode": "lines",
		"name": name,
		"x":    x,
		"y":    y,
		"line": map[string]any{"color": "#7f8c8d", "width": 1, "dash": "dot"},
	}
}

func markerTrace(name string, s models.Signal, symbol, color string) map[string]any {
	return map[string]any{
		"type": "scatter",
		"mode": "markers",
		"name": name,
		"x":    []string{s.Time},
		"y":    []float64{s.Price},
		"marker": map[string]any{
			"symbol": symbol,
			"size":   14,
			"color":  color,
		},
	}
}

// nullableValue maps undefined indicator values to null so plotly breaks the
// line instead of plotting zero.
func nullableValue(v float64) any {
	if !models.Defined(v) {
		return nil
	}
	return v
}
