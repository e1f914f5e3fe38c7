package models

import "time"

// PositionID is a ledger-assigned monotonically increasing identifier.
// Ids are never reused within the open-position set.
type PositionID uint64

// Side of a simulated position.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// PositionStatus tracks the open -> closed lifecycle. Cancelled is reserved
// in the data model but unreachable via the signal-generation path.
type PositionStatus string

const (
	StatusOpen      PositionStatus = "open"
	StatusClosed    PositionStatus = "closed"
	StatusCancelled PositionStatus = "cancelled"
)

// Position is an open simulated trade owned exclusively by the ledger.
type Position struct {
	ID         PositionID     `json:"id"`
	Symbol     string         `json:"symbol"`
	Side       Side           `json:"side"`
	EntryPrice float64        `json:"entry_price"`
	StopLoss   float64        `json:"stop_loss"`
	TakeProfit float64        `json:"take_profit"`
	Size       float64        `json:"size"`
	RiskAmount float64        `json:"risk_amount"`
	EntryTime  time.Time      `json:"entry_time"`
	Status     PositionStatus `json:"status"`
}

// UnrealizedPnL computes the mark-to-market P&L at the given price.
func (p *Position) UnrealizedPnL(price float64) float64 {
	if p.Side == SideLong {
		return (price - p.EntryPrice) * p.Size
	}
	return (p.EntryPrice - price) * p.Size
}

// ClosedTrade is a position plus its exit leg. Immutable once created and
// appended to the ledger history.
type ClosedTrade struct {
	Position
	ExitPrice  float64   `json:"exit_price"`
	ExitTime   time.Time `json:"exit_time"`
	PnL        float64   `json:"pnl"`
	PnLPercent float64   `json:"pnl_percent"`
}

// Duration returns the holding time in minutes.
func (t *ClosedTrade) Duration() float64 {
	return t.ExitTime.Sub(t.EntryTime).Minutes()
}

// PerformanceSummary aggregates closed-trade statistics.
type PerformanceSummary struct {
	TotalTrades  int     `json:"total_trades"`
	WinRate      float64 `json:"win_rate"`
	TotalPnL     float64 `json:"total_pnl"`
	ProfitFactor float64 `json:"profit_factor"`
}
