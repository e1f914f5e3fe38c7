package ledger

import (
	"errors"
	"math"
	"sync"
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/pkg/util"
)

var (
	// ErrInvalidPrice rejects a trade whose entry or stop is not positive.
	ErrInvalidPrice = errors.New("ledger: entry and stop prices must be positive")
	// ErrZeroRiskDistance rejects a trade whose entry equals its stop.
	ErrZeroRiskDistance = errors.New("ledger: entry price equals stop loss")
	// ErrUnknownPosition signals a close against an id not in the open set.
	ErrUnknownPosition = errors.New("ledger: unknown position id")
)

// Config holds the risk and accounting parameters.
type Config struct {
	InitialBalance float64
	RiskPerTrade   float64
	MaxDailyTrades int
}

// DefaultConfig returns the canonical ledger parameters.
func DefaultConfig() Config {
	return Config{
		InitialBalance: 1000,
		RiskPerTrade:   0.02,
		MaxDailyTrades: 3,
	}
}

// Ledger is the position state machine. It owns the open-position set, the
// append-only trade history, the running balance and the daily-trade counter.
// All methods are safe for concurrent use; Execute, MarkToMarket and Close
// are atomic with respect to the open set.
type Ledger struct {
	mu sync.Mutex

	cfg     Config
	open    map[models.PositionID]*models.Position
	order   []models.PositionID
	history []models.ClosedTrade
	nextID  models.PositionID

	balance      float64
	dailyTrades  int
	lastTradeDay time.Time

	now func() time.Time
}

func New(cfg Config) *Ledger {
	return &Ledger{
		cfg:     cfg,
		open:    make(map[models.PositionID]*models.Position),
		nextID:  1,
		balance: cfg.InitialBalance,
		now:     time.Now,
	}
}

// Execute opens a position from an accepted signal. It rejects non-positive
// prices and a zero entry-to-stop distance, since size would be infinite.
// A successful open counts against the daily-trade limit.
func (l *Ledger) Execute(symbol string, side models.Side, entry, stop, takeProfit, riskAmount float64) (*models.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry <= 0 || stop <= 0 {
		return nil, ErrInvalidPrice
	}
	dist := math.Abs(entry - stop)
	if dist == 0 {
		return nil, ErrZeroRiskDistance
	}

	now := l.now()
	l.rollDayLocked(now)

	p := &models.Position{
		ID:         l.nextID,
		Symbol:     symbol,
		Side:       side,
		EntryPrice: entry,
		StopLoss:   stop,
		TakeProfit: takeProfit,
		Size:       riskAmount / dist,
		RiskAmount: riskAmount,
		EntryTime:  now,
		Status:     models.StatusOpen,
	}
	l.nextID++
	l.open[p.ID] = p
	l.order = append(l.order, p.ID)
	l.dailyTrades++
	l.lastTradeDay = now

	cp := *p
	return &cp, nil
}

// MarkToMarket tests every open position against the current price. Long
// positions close at the stop when price is at or below it, otherwise at the
// target when price is at or above it; shorts are symmetric. The stop is
// checked first, so a tick that gaps through both levels closes at the stop.
// Triggered positions close at their trigger price, not at current price.
func (l *Ledger) MarkToMarket(price float64) (closed []models.PositionID, unrealized float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, id := range l.order {
		p, ok := l.open[id]
		if !ok {
			continue
		}
		unrealized += p.UnrealizedPnL(price)

		var exit float64
		triggered := false
		if p.Side == models.SideLong {
			switch {
			case price <= p.StopLoss:
				exit, triggered = p.StopLoss, true
			case price >= p.TakeProfit:
				exit, triggered = p.TakeProfit, true
			}
		} else {
			switch {
			case price >= p.StopLoss:
				exit, triggered = p.StopLoss, true
			case price <= p.TakeProfit:
				exit, triggered = p.TakeProfit, true
			}
		}
		if !triggered {
			continue
		}
		l.closeLocked(p, exit)
		closed = append(closed, id)
	}
	l.compactOrderLocked()
	return closed, unrealized
}

// Close realizes a position at the given exit price. Unknown ids fail
// without touching ledger state.
func (l *Ledger) Close(id models.PositionID, exitPrice float64) (*models.ClosedTrade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.open[id]
	if !ok {
		return nil, ErrUnknownPosition
	}
	trade := l.closeLocked(p, exitPrice)
	l.compactOrderLocked()
	return &trade, nil
}

func (l *Ledger) closeLocked(p *models.Position, exitPrice float64) models.ClosedTrade {
	pnl := p.UnrealizedPnL(exitPrice)
	pnlPercent := 0.0
	if notional := p.EntryPrice * p.Size; notional != 0 {
		pnlPercent = pnl / notional * 100
	}

	p.Status = models.StatusClosed
	trade := models.ClosedTrade{
		Position:   *p,
		ExitPrice:  exitPrice,
		ExitTime:   l.now(),
		PnL:        pnl,
		PnLPercent: pnlPercent,
	}
	delete(l.open, p.ID)
	l.history = append(l.history, trade)
	l.balance += pnl
	return trade
}

func (l *Ledger) compactOrderLocked() {
	if len(l.order) == len(l.open) {
		return
	}
	kept := l.order[:0]
	for _, id := range l.order {
		if _, ok := l.open[id]; ok {
			kept = append(kept, id)
		}
	}
	l.order = kept
}

// rollDayLocked resets the daily counter when the calendar day advances.
func (l *Ledger) rollDayLocked(now time.Time) {
	if !l.lastTradeDay.IsZero() && !util.SameDay(l.lastTradeDay, now) {
		l.dailyTrades = 0
	}
}

// DailyTrades returns the trade count for the current calendar day,
// resetting it first if the day has rolled over.
func (l *Ledger) DailyTrades() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollDayLocked(l.now())
	return l.dailyTrades
}

// Balance returns the current running balance.
func (l *Ledger) Balance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// RiskAmount returns the capital at risk for the next trade.
func (l *Ledger) RiskAmount() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance * l.cfg.RiskPerTrade
}

// OpenPositions returns a snapshot of the open set in opening order.
func (l *Ledger) OpenPositions() []models.Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Position, 0, len(l.open))
	for _, id := range l.order {
		if p, ok := l.open[id]; ok {
			out = append(out, *p)
		}
	}
	return out
}

// History returns the most recent closed trades, newest last. A non-positive
// limit returns the full history.
func (l *Ledger) History(limit int) []models.ClosedTrade {
	l.mu.Lock()
	defer l.mu.Unlock()
	h := l.history
	if limit > 0 && len(h) > limit {
		h = h[len(h)-limit:]
	}
	out := make([]models.ClosedTrade, len(h))
	copy(out, h)
	return out
}

// WinRate returns the percentage of closed trades with positive P&L,
// 0 when the history is empty.
func (l *Ledger) WinRate() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return winRateLocked(l.history)
}

// ProfitFactor returns gross profit over gross loss, 0 when there are no
// losing trades.
func (l *Ledger) ProfitFactor() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return profitFactorLocked(l.history)
}

// TotalPnL returns the sum of realized P&L over the full history.
func (l *Ledger) TotalPnL() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return totalPnLLocked(l.history)
}

// Performance returns the aggregate closed-trade statistics in one snapshot.
func (l *Ledger) Performance() models.PerformanceSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return models.PerformanceSummary{
		TotalTrades:  len(l.history),
		WinRate:      winRateLocked(l.history),
		TotalPnL:     totalPnLLocked(l.history),
		ProfitFactor: profitFactorLocked(l.history),
	}
}

// Reset clears all positions, history and counters back to the initial state.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.open = make(map[models.PositionID]*models.Position)
	l.order = nil
	l.history = nil
	l.nextID = 1
	l.balance = l.cfg.InitialBalance
	l.dailyTrades = 0
	l.lastTradeDay = time.Time{}
}

func winRateLocked(history []models.ClosedTrade) float64 {
	if len(history) == 0 {
		return 0
	}
	wins := 0
	for i := range history {
		if history[i].PnL > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(history)) * 100
}

func profitFactorLocked(history []models.ClosedTrade) float64 {
	var profit, loss float64
	for i := range history {
		if pnl := history[i].PnL; pnl > 0 {
			profit += pnl
		} else {
			loss += pnl
		}
	}
	if loss == 0 {
		return 0
	}
	return profit / math.Abs(loss)
}

func totalPnLLocked(history []models.ClosedTrade) float64 {
	var sum float64
	for i := range history {
		sum += history[i].PnL
	}
	return sum
}
