package regime

import (
	"fmt"
	"math"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/indicator"
)

// minTrendRows is the minimum series length before a trend call is made.
const minTrendRows = 50

// annualizeFactor converts per-bar return stddev to annualized volatility.
const annualizeFactor = 252

// Config holds the classifier thresholds.
type Config struct {
	SMAShort               int
	SMALong                int
	SidewaysWindow         int
	SidewaysADXThreshold   float64
	SidewaysRangeThreshold float64
	VolatilityPeriod       int
	CrisisVolatilityRatio  float64
	CrisisSentiment        float64
	WeakTrendADX           float64
}

// DefaultConfig returns the canonical classifier thresholds.
func DefaultConfig() Config {
	return Config{
		SMAShort:               20,
		SMALong:                50,
		SidewaysWindow:         20,
		SidewaysADXThreshold:   20,
		SidewaysRangeThreshold: 0.5,
		VolatilityPeriod:       20,
		CrisisVolatilityRatio:  2.0,
		CrisisSentiment:        -0.3,
		WeakTrendADX:           20,
	}
}

// Classifier derives the market regime from an indicator-augmented series.
// Stateless per call; thresholds are fixed configuration.
type Classifier struct {
	cfg Config
}

func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Context computes the full regime context for one refresh cycle.
func (c *Classifier) Context(rows []models.IndicatorRow, sentiment float64) *models.RegimeContext {
	trend := c.Trend(rows)
	sideways := c.Sideways(rows)
	volatility := c.Volatility(rows)
	crisis := c.Crisis(rows, sentiment)

	blocked := make([]string, 0, len(sideways.Reasons)+len(crisis.Reasons)+1)
	if sideways.IsSideways {
		blocked = append(blocked, sideways.Reasons...)
	}
	if crisis.IsCrisis {
		blocked = append(blocked, crisis.Reasons...)
	}
	if trend.ADX < c.cfg.WeakTrendADX {
		blocked = append(blocked, "weak trend")
	}

	return &models.RegimeContext{
		Trend:          trend,
		Sideways:       sideways,
		Volatility:     volatility,
		Crisis:         crisis,
		BlockedReasons: blocked,
		CanTrade:       len(blocked) == 0,
	}
}

// Trend compares the short and long SMA on the latest row and buckets
// strength by ADX. Fewer than 50 rows yields an Unknown trend.
func (c *Classifier) Trend(rows []models.IndicatorRow) models.TrendInfo {
	if len(rows) < minTrendRows {
		return models.TrendInfo{Direction: models.TrendUnknown, Strength: models.StrengthVeryWeak}
	}
	last := &rows[len(rows)-1]
	short := last.SMAAt(c.cfg.SMAShort)
	long := last.SMAAt(c.cfg.SMALong)

	direction := models.TrendSideways
	switch {
	case short > long:
		direction = models.TrendBullish
	case short < long:
		direction = models.TrendBearish
	}

	adx := last.ADX
	if !models.Defined(adx) {
		adx = 0
	}
	strength := models.StrengthVeryWeak
	switch {
	case adx >= 50:
		strength = models.StrengthStrong
	case adx >= 25:
		strength = models.StrengthModerate
	case adx >= 10:
		strength = models.StrengthWeak
	}

	return models.TrendInfo{
		Direction: direction,
		Strength:  strength,
		ADX:       adx,
		SMAShort:  zeroIfNaN(short),
		SMALong:   zeroIfNaN(long),
	}
}

// Sideways accumulates independent range-bound evidence over the trailing
// window. Two or more reasons flag a sideways market; confidence is
// min(reasons/3, 1).
func (c *Classifier) Sideways(rows []models.IndicatorRow) models.SidewaysInfo {
	if len(rows) < c.cfg.SidewaysWindow {
		return models.SidewaysInfo{Reasons: []string{"insufficient data"}}
	}
	recent := rows[len(rows)-c.cfg.SidewaysWindow:]

	var adxs, atrs, closes, highs, lows, shortSMAs []float64
	for i := range recent {
		r := &recent[i]
		adxs = appendDefined(adxs, r.ADX)
		atrs = appendDefined(atrs, r.ATR)
		shortSMAs = appendDefined(shortSMAs, r.SMAAt(c.cfg.SMAShort))
		closes = append(closes, r.Close)
		highs = append(highs, r.High)
		lows = append(lows, r.Low)
	}

	var reasons []string
	avgADX := meanOf(adxs)
	if avgADX < c.cfg.SidewaysADXThreshold {
		reasons = append(reasons, fmt.Sprintf("low ADX (%.1f < %.0f)", avgADX, c.cfg.SidewaysADXThreshold))
	}

	meanClose := meanOf(closes)
	priceRange := math.NaN()
	if meanClose != 0 {
		priceRange = (maxOf(highs) - minOf(lows)) / meanClose
	}
	if priceRange < c.cfg.SidewaysRangeThreshold {
		reasons = append(reasons, fmt.Sprintf("narrow price range (%.2f%%)", priceRange*100))
	}

	atrRatio := math.NaN()
	if meanClose != 0 {
		atrRatio = meanOf(atrs) / meanClose
	}
	if atrRatio < c.cfg.SidewaysRangeThreshold {
		reasons = append(reasons, fmt.Sprintf("low volatility (ATR ratio %.2f%%)", atrRatio*100))
	}

	if sampleStdOf(shortSMAs) < 0.5*sampleStdOf(closes) {
		reasons = append(reasons, "consolidation around moving average")
	}

	return models.SidewaysInfo{
		IsSideways: len(reasons) >= 2,
		Confidence: math.Min(float64(len(reasons))/3.0, 1.0),
		Reasons:    reasons,
		AvgADX:     zeroIfNaN(avgADX),
		PriceRange: zeroIfNaN(priceRange),
		ATRRatio:   zeroIfNaN(atrRatio),
	}
}

// Volatility compares the annualized stddev of trailing returns against the
// average of the same rolling measure. A zero or undefined average maps the
// ratio to the neutral 1.
func (c *Classifier) Volatility(rows []models.IndicatorRow) models.VolatilityInfo {
	period := c.cfg.VolatilityPeriod
	if len(rows) < period {
		return models.VolatilityInfo{Ratio: 1}
	}

	returns := indicator.PctChange(closesOf(rows))
	tail := returns[len(returns)-period:]
	current := sampleStdOf(definedOf(tail)) * math.Sqrt(annualizeFactor)

	var rollingStds []float64
	for i := period - 1; i < len(returns); i++ {
		win := definedOf(returns[i-period+1 : i+1])
		if len(win) < period {
			continue
		}
		rollingStds = append(rollingStds, sampleStdOf(win))
	}
	average := meanOf(rollingStds) * math.Sqrt(annualizeFactor)

	ratio := 1.0
	if average > 0 {
		ratio = current / average
	}
	return models.VolatilityInfo{
		Current: zeroIfNaN(current),
		Average: zeroIfNaN(average),
		Ratio:   zeroIfNaN(ratio),
	}
}

// Crisis detects crisis conditions by weighted additive evidence: a
// volatility spike, deeply negative sentiment, a rapid 5-bar decline, and a
// volume spike coincident with a drop.
func (c *Classifier) Crisis(rows []models.IndicatorRow, sentiment float64) models.CrisisInfo {
	if len(rows) == 0 {
		return models.CrisisInfo{SentimentScore: sentiment}
	}

	var reasons []string
	confidence := 0.0

	vol := c.Volatility(rows)
	if vol.Ratio > c.cfg.CrisisVolatilityRatio {
		reasons = append(reasons, fmt.Sprintf("volatility spike (%.2f%%)", vol.Current*100))
		confidence += 0.3
	}

	if sentiment < c.cfg.CrisisSentiment {
		reasons = append(reasons, fmt.Sprintf("negative sentiment (%.2f)", sentiment))
		confidence += 0.3
	}

	returns := indicator.PctChange(closesOf(rows))
	recent := definedOf(tailOf(returns, 5))
	minReturn := minOf(recent)
	if minReturn < -0.05 {
		reasons = append(reasons, "rapid price decline")
		confidence += 0.4
	}

	volumes := make([]float64, len(rows))
	for i := range rows {
		volumes[i] = rows[i].Volume
	}
	volumeMA := meanOf(tailOf(volumes, 20))
	if maxOf(tailOf(volumes, 5)) > 2*volumeMA && minReturn < -0.03 {
		reasons = append(reasons, "volume spike with price decline")
		confidence += 0.3
	}

	return models.CrisisInfo{
		IsCrisis:       confidence > 0.5,
		Confidence:     math.Min(confidence, 1.0),
		Reasons:        reasons,
		SentimentScore: sentiment,
	}
}
