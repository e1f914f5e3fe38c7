package models

import "time"

// Candle represents a single OHLCV bar. Series are ordered by strictly
// increasing Time; gaps are permitted.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Tick is a live price update from a market stream.
type Tick struct {
	Symbol    string
	Price     float64
	Timestamp int64 // ms
}

// Closes extracts the close column from a candle series.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
