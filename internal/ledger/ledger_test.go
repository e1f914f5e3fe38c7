package ledger

import (
	"errors"
	"math"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
)

func newTestLedger(t *testing.T) (*Ledger, *time.Time) {
	t.Helper()
	l := New(DefaultConfig())
	clock := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestExecuteAssignsMonotonicIDs(t *testing.T) {
	l, _ := newTestLedger(t)
	a, err := l.Execute("BTCUSDT", models.SideLong, 100, 95, 110, 20)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	b, err := l.Execute("BTCUSDT", models.SideShort, 100, 105, 90, 20)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if b.ID <= a.ID {
		t.Fatalf("ids not monotonic: %d then %d", a.ID, b.ID)
	}
	if a.Size != 20.0/5.0 {
		t.Fatalf("unexpected size %v", a.Size)
	}
}

func TestExecuteRejectsDegenerateRequests(t *testing.T) {
	l, _ := newTestLedger(t)
	if _, err := l.Execute("BTCUSDT", models.SideLong, 100, 100, 110, 20); !errors.Is(err, ErrZeroRiskDistance) {
		t.Fatalf("expected zero-risk rejection, got %v", err)
	}
	if _, err := l.Execute("BTCUSDT", models.SideLong, 0, 95, 110, 20); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected invalid-price rejection, got %v", err)
	}
	if _, err := l.Execute("BTCUSDT", models.SideLong, 100, -5, 110, 20); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected invalid-price rejection, got %v", err)
	}
	if l.DailyTrades() != 0 {
		t.Fatalf("rejected trades must not count, got %d", l.DailyTrades())
	}
}

func TestMarkToMarketAtEntryNeverSelfTriggers(t *testing.T) {
	l, _ := newTestLedger(t)
	p, err := l.Execute("BTCUSDT", models.SideLong, 100, 95, 110, 20)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	closed, unrealized := l.MarkToMarket(p.EntryPrice)
	if len(closed) != 0 {
		t.Fatalf("position self-triggered at entry price")
	}
	if unrealized != 0 {
		t.Fatalf("unexpected unrealized pnl %v", unrealized)
	}
}

func TestMarkToMarketLongStopAndTarget(t *testing.T) {
	l, _ := newTestLedger(t)
	p, _ := l.Execute("BTCUSDT", models.SideLong, 100, 95, 110, 20)

	closed, _ := l.MarkToMarket(94)
	if len(closed) != 1 || closed[0] != p.ID {
		t.Fatalf("expected stop close, got %v", closed)
	}
	// closes at the stop price, not the tick price
	h := l.History(0)
	if h[len(h)-1].ExitPrice != 95 {
		t.Fatalf("expected exit at stop 95, got %v", h[len(h)-1].ExitPrice)
	}

	p2, _ := l.Execute("BTCUSDT", models.SideLong, 100, 95, 110, 20)
	closed, _ = l.MarkToMarket(115)
	if len(closed) != 1 || closed[0] != p2.ID {
		t.Fatalf("expected target close, got %v", closed)
	}
	h = l.History(0)
	if h[len(h)-1].ExitPrice != 110 {
		t.Fatalf("expected exit at target 110, got %v", h[len(h)-1].ExitPrice)
	}
}

func TestMarkToMarketShortTriggers(t *testing.T) {
	l, _ := newTestLedger(t)
	p, _ := l.Execute("BTCUSDT", models.SideShort, 100, 105, 90, 20)
	closed, _ := l.MarkToMarket(106)
	if len(closed) != 1 || closed[0] != p.ID {
		t.Fatalf("expected short stop close, got %v", closed)
	}
	h := l.History(0)
	if h[len(h)-1].PnL >= 0 {
		t.Fatalf("short stopped out should lose, pnl %v", h[len(h)-1].PnL)
	}
}

func TestStopLossPrecedence(t *testing.T) {
	l, _ := newTestLedger(t)
	// degenerate long where one tick satisfies both stop and target
	p, err := l.Execute("BTCUSDT", models.SideLong, 95, 100, 90, 20)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	closed, _ := l.MarkToMarket(92)
	if len(closed) != 1 || closed[0] != p.ID {
		t.Fatalf("expected close, got %v", closed)
	}
	h := l.History(0)
	if h[len(h)-1].ExitPrice != 100 {
		t.Fatalf("stop must win the tie-break, exited at %v", h[len(h)-1].ExitPrice)
	}
}

func TestCloseRoundTrip(t *testing.T) {
	l, _ := newTestLedger(t)
	p, _ := l.Execute("BTCUSDT", models.SideLong, 100, 95, 110, 20)
	trade, err := l.Close(p.ID, 108)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	wantPnL := (108.0 - 100.0) * p.Size
	if trade.PnL != wantPnL {
		t.Fatalf("pnl %v, want %v", trade.PnL, wantPnL)
	}
	for _, open := range l.OpenPositions() {
		if open.ID == p.ID {
			t.Fatalf("closed id still in open set")
		}
	}
	h := l.History(0)
	if len(h) != 1 || h[0].ID != p.ID || h[0].Status != models.StatusClosed {
		t.Fatalf("unexpected history %+v", h)
	}
	if l.Balance() != DefaultConfig().InitialBalance+wantPnL {
		t.Fatalf("balance %v not updated", l.Balance())
	}
}

func TestCloseUnknownIDFails(t *testing.T) {
	l, _ := newTestLedger(t)
	if _, err := l.Close(42, 100); !errors.Is(err, ErrUnknownPosition) {
		t.Fatalf("expected unknown-position error, got %v", err)
	}
}

func TestWinRateAndProfitFactor(t *testing.T) {
	l, _ := newTestLedger(t)
	open := func() models.PositionID {
		p, err := l.Execute("BTCUSDT", models.SideLong, 100, 90, 120, 10)
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
		return p.ID
	}
	// pnls +10, -5, +2 at size 1
	id := open()
	if _, err := l.Close(id, 110); err != nil {
		t.Fatalf("close: %v", err)
	}
	id = open()
	if _, err := l.Close(id, 95); err != nil {
		t.Fatalf("close: %v", err)
	}
	id = open()
	if _, err := l.Close(id, 102); err != nil {
		t.Fatalf("close: %v", err)
	}

	if wr := l.WinRate(); math.Abs(wr-66.666666) > 0.001 {
		t.Fatalf("win rate %v, want 66.67", wr)
	}
	if pf := l.ProfitFactor(); math.Abs(pf-12.0/5.0) > 1e-9 {
		t.Fatalf("profit factor %v, want 2.4", pf)
	}
	if pnl := l.TotalPnL(); math.Abs(pnl-7) > 1e-9 {
		t.Fatalf("total pnl %v, want 7", pnl)
	}
	perf := l.Performance()
	if perf.TotalTrades != 3 {
		t.Fatalf("total trades %d", perf.TotalTrades)
	}
}

func TestProfitFactorZeroWithoutLosses(t *testing.T) {
	l, _ := newTestLedger(t)
	p, _ := l.Execute("BTCUSDT", models.SideLong, 100, 90, 120, 10)
	if _, err := l.Close(p.ID, 110); err != nil {
		t.Fatalf("close: %v", err)
	}
	if pf := l.ProfitFactor(); pf != 0 {
		t.Fatalf("profit factor without losses should be 0, got %v", pf)
	}
}

func TestDailyCounterResetsOnNewDay(t *testing.T) {
	l, clock := newTestLedger(t)
	for i := 0; i < 3; i++ {
		if _, err := l.Execute("BTCUSDT", models.SideLong, 100, 95, 110, 20); err != nil {
			t.Fatalf("execute: %v", err)
		}
	}
	if l.DailyTrades() != 3 {
		t.Fatalf("daily trades %d, want 3", l.DailyTrades())
	}

	*clock = clock.Add(25 * time.Hour)
	if l.DailyTrades() != 0 {
		t.Fatalf("counter did not reset on day rollover: %d", l.DailyTrades())
	}
	if _, err := l.Execute("BTCUSDT", models.SideLong, 100, 95, 110, 20); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if l.DailyTrades() != 1 {
		t.Fatalf("daily trades %d, want 1", l.DailyTrades())
	}
}

func TestHistoryLimit(t *testing.T) {
	l, _ := newTestLedger(t)
	for i := 0; i < 7; i++ {
		p, _ := l.Execute("BTCUSDT", models.SideLong, 100, 95, 110, 20)
		if _, err := l.Close(p.ID, 101); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	if got := len(l.History(5)); got != 5 {
		t.Fatalf("history limit: got %d, want 5", got)
	}
	if got := len(l.History(0)); got != 7 {
		t.Fatalf("full history: got %d, want 7", got)
	}
}

func TestReset(t *testing.T) {
	l, _ := newTestLedger(t)
	p, _ := l.Execute("BTCUSDT", models.SideLong, 100, 95, 110, 20)
	if _, err := l.Close(p.ID, 108); err != nil {
		t.Fatalf("close: %v", err)
	}
	l.Reset()
	if len(l.OpenPositions()) != 0 || len(l.History(0)) != 0 {
		t.Fatal("reset left state behind")
	}
	if l.Balance() != DefaultConfig().InitialBalance {
		t.Fatalf("balance %v after reset", l.Balance())
	}
	next, _ := l.Execute("BTCUSDT", models.SideLong, 100, 95, 110, 20)
	if next.ID != 1 {
		t.Fatalf("id sequence not reset, got %d", next.ID)
	}
}
