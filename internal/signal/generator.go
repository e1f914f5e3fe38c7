package signal

import (
	"fmt"
	"math"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/indicator"
)

// minRows is the minimum series length before signals are considered.
const minRows = 50

// momentumBars is the lookback of the directional bias heuristic.
const momentumBars = 5

// Config holds the signal thresholds and risk parameters.
type Config struct {
	SMAShort       int
	SMALong        int
	ATRMultiplier  float64
	MinRiskReward  float64
	MaxDailyTrades int

	// DisableOpposite suppresses both signals when buy and sell trigger in
	// the same cycle. Off by default: the rule set acts on both.
	DisableOpposite bool
}

// DefaultConfig returns the canonical signal parameters.
func DefaultConfig() Config {
	return Config{
		SMAShort:       20,
		SMALong:        50,
		ATRMultiplier:  2.0,
		MinRiskReward:  1.5,
		MaxDailyTrades: 3,
	}
}

// Generator produces buy/sell decisions from the latest indicator values and
// the regime context. Stateless apart from configuration; the daily-trade
// counter is owned by the ledger and passed in per call.
type Generator struct {
	cfg Config
}

func New(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

// MaxDailyTrades exposes the configured daily limit for display.
func (g *Generator) MaxDailyTrades() int { return g.cfg.MaxDailyTrades }

// Evaluation is the outcome of one signal cycle. Buy and sell are evaluated
// independently and can both trigger on the same candle.
type Evaluation struct {
	Buy         models.Decision
	Sell        models.Decision
	SkipReasons []string
}

// Evaluate runs the rule set against the latest row of an augmented series.
func (g *Generator) Evaluate(rows []models.IndicatorRow, regime *models.RegimeContext, dailyTrades int) Evaluation {
	if reason, ok := g.validate(rows); !ok {
		return Evaluation{
			Buy:         models.Decision{Side: models.SideLong, Reason: reason},
			Sell:        models.Decision{Side: models.SideShort, Reason: reason},
			SkipReasons: []string{reason},
		}
	}

	var skip []string
	eligible := true
	if !regime.CanTrade {
		eligible = false
		skip = append(skip, regime.BlockedReasons...)
	}
	if dailyTrades >= g.cfg.MaxDailyTrades {
		eligible = false
		skip = append(skip, fmt.Sprintf("daily trade limit reached (%d/%d)", dailyTrades, g.cfg.MaxDailyTrades))
	}

	last := &rows[len(rows)-1]
	short := last.SMAAt(g.cfg.SMAShort)
	long := last.SMAAt(g.cfg.SMALong)
	bias := g.momentumBias(rows)

	buy := models.Decision{Side: models.SideLong}
	switch {
	case !eligible:
		buy.Reason = "not eligible"
	case short <= long:
		buy.Reason = "short SMA below long SMA"
	case last.MACD <= last.MACDSignal:
		buy.Reason = "MACD below signal line"
	case bias <= 0:
		buy.Reason = "momentum bias not long"
	default:
		buy = g.plan(models.SideLong, last)
	}

	sell := models.Decision{Side: models.SideShort}
	switch {
	case !eligible:
		sell.Reason = "not eligible"
	case short >= long:
		sell.Reason = "short SMA above long SMA"
	case last.MACD >= last.MACDSignal:
		sell.Reason = "MACD above signal line"
	case bias >= 0:
		sell.Reason = "momentum bias not short"
	default:
		sell = g.plan(models.SideShort, last)
	}

	if g.cfg.DisableOpposite && buy.Triggered && sell.Triggered {
		buy = models.Decision{Side: models.SideLong, Reason: "conflicting opposite signal"}
		sell = models.Decision{Side: models.SideShort, Reason: "conflicting opposite signal"}
		skip = append(skip, "conflicting opposite signal")
	}

	return Evaluation{Buy: buy, Sell: sell, SkipReasons: skip}
}

// plan derives the entry, stop and target from the latest row. The target
// distance is the stop distance scaled by the minimum reward:risk, so the
// ratio of any emitted plan is at least the configured floor.
func (g *Generator) plan(side models.Side, last *models.IndicatorRow) models.Decision {
	entry := last.Close
	dist := last.ATR * g.cfg.ATRMultiplier
	d := models.Decision{Triggered: true, Side: side, EntryPrice: entry}
	if side == models.SideLong {
		d.StopLoss = entry - dist
		d.TakeProfit = entry + dist*g.cfg.MinRiskReward
	} else {
		d.StopLoss = entry + dist
		d.TakeProfit = entry - dist*g.cfg.MinRiskReward
	}
	return d
}

// validate guards the rule set against undefined or out-of-range indicator
// values so a warmup-period row never produces a trade.
func (g *Generator) validate(rows []models.IndicatorRow) (string, bool) {
	if len(rows) < minRows {
		return fmt.Sprintf("insufficient data (%d rows)", len(rows)), false
	}
	last := &rows[len(rows)-1]
	vals := []float64{
		last.RSI, last.MACD, last.MACDSignal, last.ADX, last.ATR,
		last.SMAAt(g.cfg.SMAShort), last.SMAAt(g.cfg.SMALong),
	}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "indicator values not ready", false
		}
	}
	if last.RSI < 0 || last.RSI > 100 {
		return "RSI out of range", false
	}
	if last.ADX < 0 || last.ADX > 100 {
		return "ADX out of range", false
	}
	if last.ATR <= 0 {
		return "ATR not positive", false
	}
	return "", true
}

// momentumBias returns +1 for upward momentum, -1 for downward, 0 when flat.
// The sign of the mean price change over the trailing feature rows decides;
// rows still inside an indicator warmup carry no vote.
func (g *Generator) momentumBias(rows []models.IndicatorRow) int {
	feats := indicator.Features(rows, g.cfg.SMAShort, g.cfg.SMALong)
	if len(feats) > momentumBars {
		feats = feats[len(feats)-momentumBars:]
	}
	sum := 0.0
	for i := range feats {
		sum += feats[i].PriceChange
	}
	if len(feats) == 0 || sum == 0 {
		return 0
	}
	if sum > 0 {
		return 1
	}
	return -1
}
