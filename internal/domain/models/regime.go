package models

// TrendDirection classifies the prevailing direction of the market.
type TrendDirection string

const (
	TrendBullish  TrendDirection = "bullish"
	TrendBearish  TrendDirection = "bearish"
	TrendSideways TrendDirection = "sideways"
	TrendUnknown  TrendDirection = "unknown"
)

// TrendStrength buckets ADX into qualitative strength levels.
type TrendStrength string

const (
	StrengthVeryWeak TrendStrength = "very_weak"
	StrengthWeak     TrendStrength = "weak"
	StrengthModerate TrendStrength = "moderate"
	StrengthStrong   TrendStrength = "strong"
)

// TrendInfo describes the SMA-crossover trend on the latest row.
type TrendInfo struct {
	Direction TrendDirection `json:"direction"`
	Strength  TrendStrength  `json:"strength"`
	ADX       float64        `json:"adx"`
	SMAShort  float64        `json:"sma_short"`
	SMALong   float64        `json:"sma_long"`
}

// SidewaysInfo describes range-bound market detection over a trailing window.
type SidewaysInfo struct {
	IsSideways bool     `json:"is_sideways"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
	AvgADX     float64  `json:"avg_adx"`
	PriceRange float64  `json:"price_range"`
	ATRRatio   float64  `json:"atr_ratio"`
}

// VolatilityInfo compares current annualized volatility against its average.
type VolatilityInfo struct {
	Current float64 `json:"current_volatility"`
	Average float64 `json:"avg_volatility"`
	Ratio   float64 `json:"volatility_ratio"`
}

// CrisisInfo describes crisis-condition detection.
type CrisisInfo struct {
	IsCrisis       bool     `json:"is_crisis"`
	Confidence     float64  `json:"confidence"`
	Reasons        []string `json:"reasons"`
	SentimentScore float64  `json:"sentiment_score"`
}

// RegimeContext is the aggregate market context computed fresh each cycle.
// It is never mutated in place.
type RegimeContext struct {
	Trend          TrendInfo      `json:"trend"`
	Sideways       SidewaysInfo   `json:"sideways"`
	Volatility     VolatilityInfo `json:"volatility"`
	Crisis         CrisisInfo     `json:"crisis"`
	BlockedReasons []string       `json:"blocked_reasons"`
	CanTrade       bool           `json:"can_trade"`
}

// MarketStatus returns "normal" when trading is allowed, "blocked" otherwise.
func (rc *RegimeContext) MarketStatus() string {
	if rc.CanTrade {
		return "normal"
	}
	return "blocked"
}
