package usecase

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/indicator"
	"TradePulse/internal/ledger"
	"TradePulse/internal/regime"
	"TradePulse/internal/signal"
	"TradePulse/pkg/logger"
)

// RefreshConfig holds the per-cycle parameters of the engine.
type RefreshConfig struct {
	Symbol       string
	Timeframe    drepo.Timeframe
	CandleLimit  int
	HistoryLimit int
	SMAShort     int
	SMALong      int
}

// RefreshUseCase runs one full engine cycle: fetch candles, compute
// indicators, classify the regime, evaluate signals, update the ledger, and
// assemble the dashboard snapshot. One cycle runs to completion before the
// next begins; the cycle mutex enforces that when HTTP requests race the
// scheduler.
type RefreshUseCase struct {
	cfg RefreshConfig

	provider  drepo.CandleProvider
	sentiment drepo.SentimentProvider // optional
	archive   drepo.CandleArchive     // optional
	events    drepo.TradeEventPublisher
	metrics   drepo.Metrics
	log       *logger.Logger

	indicators indicator.Config
	classifier *regime.Classifier
	generator  *signal.Generator
	ledger     *ledger.Ledger

	cycleMu sync.Mutex

	mu        sync.RWMutex
	snapshot  *models.DashboardSnapshot
	lastPrice float64
	signalSeq int64
}

// Deps bundles the collaborators of the refresh cycle. Optional fields may
// be nil and degrade gracefully.
type Deps struct {
	Provider  drepo.CandleProvider
	Sentiment drepo.SentimentProvider
	Archive   drepo.CandleArchive
	Events    drepo.TradeEventPublisher
	Metrics   drepo.Metrics
	Logger    *logger.Logger

	Indicators indicator.Config
	Classifier *regime.Classifier
	Generator  *signal.Generator
	Ledger     *ledger.Ledger
}

func NewRefreshUseCase(cfg RefreshConfig, deps Deps) *RefreshUseCase {
	return &RefreshUseCase{
		cfg:        cfg,
		provider:   deps.Provider,
		sentiment:  deps.Sentiment,
		archive:    deps.Archive,
		events:     deps.Events,
		metrics:    deps.Metrics,
		log:        deps.Logger,
		indicators: deps.Indicators,
		classifier: deps.Classifier,
		generator:  deps.Generator,
		ledger:     deps.Ledger,
	}
}

// Refresh executes one engine cycle and returns the fresh snapshot.
func (uc *RefreshUseCase) Refresh(ctx context.Context) (*models.DashboardSnapshot, error) {
	uc.cycleMu.Lock()
	defer uc.cycleMu.Unlock()
	start := time.Now()

	candles := uc.fetchCandles(ctx)
	rows := indicator.Compute(candles, uc.indicators)

	sentiment := uc.fetchSentiment(ctx)
	regimeCtx := uc.classifier.Context(rows, sentiment.Score)

	// positions are monitored against the latest close every cycle,
	// independent of new signals
	if len(rows) > 0 {
		lastClose := rows[len(rows)-1].Close
		uc.monitorPositions(ctx, lastClose)
		uc.setLastPrice(lastClose)
	}

	ev := uc.generator.Evaluate(rows, regimeCtx, uc.ledger.DailyTrades())
	buySignal, sellSignal, plan := uc.executeDecisions(ctx, ev, rows)

	snapshot := uc.buildSnapshot(rows, regimeCtx, sentiment, ev, buySignal, sellSignal, plan)

	uc.mu.Lock()
	uc.snapshot = snapshot
	uc.mu.Unlock()

	uc.metrics.RecordCycle(uc.cfg.Symbol)
	uc.metrics.RecordLatency("refresh_cycle", time.Since(start).Seconds())
	return snapshot, nil
}

// fetchCandles pulls the series from the live provider chain, falling back to
// the archive. Failure surfaces as an empty series, which downstream handles
// via the insufficient-data path.
func (uc *RefreshUseCase) fetchCandles(ctx context.Context) []models.Candle {
	candles, err := uc.provider.GetCandles(ctx, uc.cfg.Symbol, uc.cfg.Timeframe, uc.cfg.CandleLimit)
	if err == nil && len(candles) > 0 {
		if uc.archive != nil {
			if err := uc.archive.StoreBatch(ctx, uc.cfg.Symbol, uc.cfg.Timeframe, candles); err != nil {
				uc.metrics.RecordError("archive_store")
				uc.log.Warn("candle archive store failed", logger.Error(err))
			}
		}
		return candles
	}
	if err != nil {
		uc.metrics.RecordError("candle_fetch")
		uc.log.Error("candle fetch failed", logger.String("symbol", uc.cfg.Symbol), logger.Error(err))
	}

	if uc.archive != nil {
		archived, aerr := uc.archive.Latest(ctx, uc.cfg.Symbol, uc.cfg.Timeframe, uc.cfg.CandleLimit)
		if aerr == nil && len(archived) > 0 {
			uc.log.Warn("serving archived candles",
				logger.String("symbol", uc.cfg.Symbol),
				logger.Int("rows", len(archived)))
			return archived
		}
	}
	return nil
}

func (uc *RefreshUseCase) fetchSentiment(ctx context.Context) *models.SentimentSummary {
	if uc.sentiment == nil {
		return &models.SentimentSummary{Overall: "neutral"}
	}
	s, err := uc.sentiment.MarketSentiment(ctx, uc.cfg.Symbol)
	if err != nil || s == nil {
		uc.metrics.RecordError("sentiment_fetch")
		return &models.SentimentSummary{Overall: "neutral"}
	}
	return s
}

// monitorPositions marks every open position to market and reports triggered
// closes.
func (uc *RefreshUseCase) monitorPositions(ctx context.Context, price float64) {
	before := uc.ledger.History(0)
	closedIDs, _ := uc.ledger.MarkToMarket(price)
	if len(closedIDs) == 0 {
		return
	}

	after := uc.ledger.History(0)
	for _, t := range after[len(before):] {
		trade := t
		result := "loss"
		if trade.PnL > 0 {
			result = "win"
		}
		uc.metrics.RecordTradeClosed(result)
		uc.log.Info("position closed",
			logger.Uint64("id", uint64(trade.ID)),
			logger.String("side", string(trade.Side)),
			logger.Any("pnl", trade.PnL))
		if uc.events != nil {
			if err := uc.events.PublishClosed(ctx, &trade); err != nil {
				uc.metrics.RecordError("event_publish")
			}
		}
	}
	uc.metrics.SetRealizedPnL(uc.ledger.TotalPnL())
	uc.metrics.SetOpenPositions(len(uc.ledger.OpenPositions()))
}

// executeDecisions opens positions for triggered signals. Buy and sell act
// independently; both firing in one cycle opens two positions. A triggered
// decision implies a validated series, so the last row is always present.
func (uc *RefreshUseCase) executeDecisions(ctx context.Context, ev signal.Evaluation, rows []models.IndicatorRow) (buy, sell models.Signal, plan models.TradePlan) {
	for _, d := range []models.Decision{ev.Buy, ev.Sell} {
		if !d.Triggered {
			continue
		}
		pos, err := uc.ledger.Execute(uc.cfg.Symbol, d.Side, d.EntryPrice, d.StopLoss, d.TakeProfit, uc.ledger.RiskAmount())
		if err != nil {
			uc.metrics.RecordError("trade_execute")
			uc.log.Warn("trade rejected",
				logger.String("side", string(d.Side)),
				logger.Error(err))
			continue
		}
		uc.metrics.RecordSignal(string(d.Side))
		uc.metrics.SetOpenPositions(len(uc.ledger.OpenPositions()))
		uc.log.Info("position opened",
			logger.Uint64("id", uint64(pos.ID)),
			logger.String("side", string(pos.Side)),
			logger.Any("entry", pos.EntryPrice))
		if uc.events != nil {
			if err := uc.events.PublishOpened(ctx, pos); err != nil {
				uc.metrics.RecordError("event_publish")
			}
		}

		marker := uc.signalMarker(d, pos, &rows[len(rows)-1])
		if d.Side == models.SideLong {
			buy = marker
		} else {
			sell = marker
		}
		plan = models.TradePlan{
			Active:          true,
			EntryPrice:      d.EntryPrice,
			StopLoss:        d.StopLoss,
			TakeProfit:      d.TakeProfit,
			IsBuy:           d.Side == models.SideLong,
			DistancePercent: math.Abs(d.EntryPrice-d.StopLoss) / d.EntryPrice * 100,
		}
	}
	return buy, sell, plan
}

// signalMarker builds the chart marker for a just-opened position from the
// candle that triggered it.
func (uc *RefreshUseCase) signalMarker(d models.Decision, pos *models.Position, last *models.IndicatorRow) models.Signal {
	uc.signalSeq++
	return models.Signal{
		Active: true,
		Price:  d.EntryPrice,
		RSI:    finiteOrZero(last.RSI),
		MACD:   finiteOrZero(last.MACD),
		ID:     uc.signalSeq,
		Time:   pos.EntryTime.Format(time.RFC3339),
	}
}

func (uc *RefreshUseCase) buildSnapshot(
	rows []models.IndicatorRow,
	regimeCtx *models.RegimeContext,
	sentiment *models.SentimentSummary,
	ev signal.Evaluation,
	buy, sell models.Signal,
	plan models.TradePlan,
) *models.DashboardSnapshot {
	price := uc.LastPrice()
	open := uc.ledger.OpenPositions()
	views := make([]models.PositionView, 0, len(open))
	var unrealized float64
	for i := range open {
		p := open[i]
		pnl := p.UnrealizedPnL(price)
		unrealized += pnl
		pct := 0.0
		if notional := p.EntryPrice * p.Size; notional != 0 {
			pct = pnl / notional * 100
		}
		views = append(views, models.PositionView{
			Position:     p,
			CurrentPrice: price,
			PnL:          pnl,
			PnLPercent:   pct,
		})
	}

	history := uc.ledger.History(uc.cfg.HistoryLimit)
	trades := make([]models.TradeView, 0, len(history))
	for i := range history {
		trades = append(trades, models.TradeView{
			ClosedTrade:     history[i],
			DurationMinutes: history[i].Duration(),
		})
	}

	perf := uc.ledger.Performance()
	balance := uc.ledger.Balance()

	snapshot := &models.DashboardSnapshot{
		Symbol:     uc.cfg.Symbol,
		LastPrice:  price,
		SignalText: signalText(buy, sell),
		BuySignal:  buy,
		SellSignal: sell,
		TradePlan:  plan,
		Indicators: indicatorSummary(rows, uc.cfg.SMAShort, uc.cfg.SMALong),
		MarketContext: regimeCtx,
		MarketStatus:  regimeCtx.MarketStatus(),
		News:          sentiment,
		Chart:         BuildChart(rows, uc.cfg.SMAShort, uc.cfg.SMALong, buy, sell),
		Account: models.AccountInfo{
			Balance:        balance,
			Equity:         balance + unrealized,
			UnrealizedPnL:  unrealized,
			TotalPnL:       perf.TotalPnL,
			WinRate:        perf.WinRate,
			ProfitFactor:   perf.ProfitFactor,
			DailyTrades:    uc.ledger.DailyTrades(),
			MaxDailyTrades: uc.generatorMaxDaily(),
		},
		OpenPositions: views,
		RecentTrades:  trades,
		SkipReasons:   ev.SkipReasons,
	}
	return snapshot
}

func (uc *RefreshUseCase) generatorMaxDaily() int {
	return uc.generator.MaxDailyTrades()
}

func signalText(buy, sell models.Signal) string {
	switch {
	case buy.Active && sell.Active:
		return "BUY+SELL"
	case buy.Active:
		return "BUY"
	case sell.Active:
		return "SELL"
	default:
		return "WAIT"
	}
}

// indicatorSummary flattens the latest row for the panel; undefined values
// render as zero at this edge.
func indicatorSummary(rows []models.IndicatorRow, smaShort, smaLong int) models.IndicatorSummary {
	if len(rows) == 0 {
		return models.IndicatorSummary{}
	}
	last := &rows[len(rows)-1]
	return models.IndicatorSummary{
		RSI:        finiteOrZero(last.RSI),
		MACD:       finiteOrZero(last.MACD),
		MACDSignal: finiteOrZero(last.MACDSignal),
		SMAShort:   finiteOrZero(last.SMAAt(smaShort)),
		SMALong:    finiteOrZero(last.SMAAt(smaLong)),
		BBUpper:    finiteOrZero(last.BBUpper),
		BBLower:    finiteOrZero(last.BBLower),
		ADX:        finiteOrZero(last.ADX),
		ATR:        finiteOrZero(last.ATR),
		VolumeMA:   finiteOrZero(last.VolumeMA),
		Volume:     last.Volume,
	}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Snapshot returns the last assembled dashboard payload, nil before the
// first cycle.
func (uc *RefreshUseCase) Snapshot() *models.DashboardSnapshot {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.snapshot
}

// LastPrice returns the most recent known price (stream tick or candle close).
func (uc *RefreshUseCase) LastPrice() float64 {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.lastPrice
}

func (uc *RefreshUseCase) setLastPrice(p float64) {
	uc.mu.Lock()
	uc.lastPrice = p
	uc.mu.Unlock()
}

// Process consumes a live tick from the stream pipeline: it refreshes the
// last price, marks open positions to market, and updates the price gauge.
func (uc *RefreshUseCase) Process(ctx context.Context, t *models.Tick) error {
	if t.Symbol != uc.cfg.Symbol {
		return nil
	}
	uc.setLastPrice(t.Price)
	uc.metrics.RecordLastPrice(t.Symbol, t.Price)
	uc.monitorPositions(ctx, t.Price)
	return nil
}

// Positions returns the open set enriched with live P&L.
func (uc *RefreshUseCase) Positions() []models.PositionView {
	price := uc.LastPrice()
	open := uc.ledger.OpenPositions()
	out := make([]models.PositionView, 0, len(open))
	for i := range open {
		p := open[i]
		pnl := p.UnrealizedPnL(price)
		pct := 0.0
		if notional := p.EntryPrice * p.Size; notional != 0 {
			pct = pnl / notional * 100
		}
		out = append(out, models.PositionView{Position: p, CurrentPrice: price, PnL: pnl, PnLPercent: pct})
	}
	return out
}

// HistoryView returns the trailing closed trades formatted for display.
func (uc *RefreshUseCase) HistoryView(limit int) []models.TradeView {
	history := uc.ledger.History(limit)
	out := make([]models.TradeView, 0, len(history))
	for i := range history {
		out = append(out, models.TradeView{ClosedTrade: history[i], DurationMinutes: history[i].Duration()})
	}
	return out
}

// Reset wipes the ledger back to its initial state.
func (uc *RefreshUseCase) Reset() {
	uc.ledger.Reset()
	uc.metrics.SetOpenPositions(0)
	uc.metrics.SetRealizedPnL(0)
	uc.log.Info("ledger reset", logger.String("symbol", uc.cfg.Symbol))
}

// ClosePosition force-closes one open position at the current price.
func (uc *RefreshUseCase) ClosePosition(ctx context.Context, id models.PositionID) (*models.ClosedTrade, error) {
	price := uc.LastPrice()
	if price <= 0 {
		return nil, fmt.Errorf("no market price available")
	}
	trade, err := uc.ledger.Close(id, price)
	if err != nil {
		return nil, err
	}
	result := "loss"
	if trade.PnL > 0 {
		result = "win"
	}
	uc.metrics.RecordTradeClosed(result)
	uc.metrics.SetOpenPositions(len(uc.ledger.OpenPositions()))
	if uc.events != nil {
		if err := uc.events.PublishClosed(ctx, trade); err != nil {
			uc.metrics.RecordError("event_publish")
		}
	}
	return trade, nil
}
