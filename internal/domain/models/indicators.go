package models

import "math"

// IndicatorRow is a candle augmented with computed indicator columns. Fields
// are NaN (not zero) for the leading rows of any rolling window; callers must
// check Defined before consuming a value.
type IndicatorRow struct {
	Candle

	RSI        float64
	MACD       float64
	MACDSignal float64
	MACDHist   float64

	BBUpper  float64
	BBMiddle float64
	BBLower  float64

	// SMA holds one entry per configured period, e.g. 20 and 50.
	SMA map[int]float64

	ADX        float64
	ATR        float64
	VolumeMA   float64
	Support    float64
	Resistance float64
}

// Defined reports whether an indicator value has been computed for a row.
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

// SMAAt returns the SMA for the given period, or NaN if not computed.
func (r *IndicatorRow) SMAAt(period int) float64 {
	if v, ok := r.SMA[period]; ok {
		return v
	}
	return math.NaN()
}

// FeatureRow is the normalized feature surface derived from an augmented row,
// consumed by the directional bias rule.
type FeatureRow struct {
	PriceChange        float64
	PriceRange         float64
	PricePosition      float64
	RSINormalized      float64
	MACDSignalDiff     float64
	ADXNormalized      float64
	ATRNormalized      float64
	SMARatio           float64
	PriceSMARatio      float64
	VolumeRatio        float64
	SupportDistance    float64
	ResistanceDistance float64
}
