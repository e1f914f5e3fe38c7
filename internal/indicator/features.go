package indicator

import (
	"math"

	"TradePulse/internal/domain/models"
)

// PctChange computes simple returns r_t = C_t/C_{t-1} - 1. The first element
// is NaN, mirroring a dataframe diff.
func PctChange(closes []float64) []float64 {
	out := nanSlice(len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		out[i] = closes[i]/closes[i-1] - 1
	}
	return out
}

// Features derives the normalized feature surface from an augmented series.
// Rows whose inputs are still undefined are skipped, so the output may be
// shorter than the input.
func Features(rows []models.IndicatorRow, smaShort, smaLong int) []models.FeatureRow {
	out := make([]models.FeatureRow, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		f, ok := featureAt(rows, i, r, smaShort, smaLong)
		if !ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

func featureAt(rows []models.IndicatorRow, i int, r *models.IndicatorRow, smaShort, smaLong int) (models.FeatureRow, bool) {
	if i == 0 {
		return models.FeatureRow{}, false
	}
	prev := rows[i-1].Close
	short := r.SMAAt(smaShort)
	long := r.SMAAt(smaLong)

	vals := []float64{
		r.RSI, r.MACD, r.MACDSignal, r.ADX, r.ATR,
		r.BBUpper, r.BBLower, short, long, r.VolumeMA,
		r.Support, r.Resistance,
	}
	if hasNaN(vals) {
		return models.FeatureRow{}, false
	}
	if prev == 0 || r.Close == 0 || short == 0 || long == 0 || r.VolumeMA == 0 {
		return models.FeatureRow{}, false
	}
	bandWidth := r.BBUpper - r.BBLower
	position := math.NaN()
	if bandWidth != 0 {
		position = (r.Close - r.BBLower) / bandWidth
	}

	return models.FeatureRow{
		PriceChange:        r.Close/prev - 1,
		PriceRange:         (r.High - r.Low) / r.Close,
		PricePosition:      position,
		RSINormalized:      r.RSI / 100,
		MACDSignalDiff:     r.MACD - r.MACDSignal,
		ADXNormalized:      r.ADX / 100,
		ATRNormalized:      r.ATR / r.Close,
		SMARatio:           short / long,
		PriceSMARatio:      r.Close / short,
		VolumeRatio:        r.Volume / r.VolumeMA,
		SupportDistance:    (r.Close - r.Support) / r.Close,
		ResistanceDistance: (r.Resistance - r.Close) / r.Close,
	}, true
}
