package models

// DashboardSnapshot is the full chart-and-metrics payload produced by one
// refresh cycle and rendered by the browser front end.
type DashboardSnapshot struct {
	Symbol        string            `json:"symbol"`
	LastPrice     float64           `json:"last_price"`
	SignalText    string            `json:"signal"`
	BuySignal     Signal            `json:"buy_signal"`
	SellSignal    Signal            `json:"sell_signal"`
	TradePlan     TradePlan         `json:"stop_loss_info"`
	Indicators    IndicatorSummary  `json:"indicators"`
	MarketContext *RegimeContext    `json:"market_context"`
	MarketStatus  string            `json:"market_status"`
	News          *SentimentSummary `json:"news_analysis,omitempty"`
	Chart         *ChartPayload     `json:"graph"`
	Account       AccountInfo       `json:"account_info"`
	OpenPositions []PositionView    `json:"open_positions"`
	RecentTrades  []TradeView       `json:"recent_trades"`
	SkipReasons   []string          `json:"skip_reasons,omitempty"`
}

// IndicatorSummary exposes the latest indicator values. Undefined values are
// serialized as zero at this edge; the core keeps them NaN internally.
type IndicatorSummary struct {
	RSI        float64 `json:"rsi"`
	MACD       float64 `json:"macd"`
	MACDSignal float64 `json:"macd_signal"`
	SMAShort   float64 `json:"sma_short"`
	SMALong    float64 `json:"sma_long"`
	BBUpper    float64 `json:"bb_upper"`
	BBLower    float64 `json:"bb_lower"`
	ADX        float64 `json:"adx"`
	ATR        float64 `json:"atr"`
	VolumeMA   float64 `json:"volume_ma"`
	Volume     float64 `json:"current_volume"`
}

// AccountInfo aggregates balance and performance metrics for the header panel.
type AccountInfo struct {
	Balance        float64 `json:"balance"`
	Equity         float64 `json:"equity"`
	UnrealizedPnL  float64 `json:"unrealized_pnl"`
	TotalPnL       float64 `json:"total_pnl"`
	WinRate        float64 `json:"win_rate"`
	ProfitFactor   float64 `json:"profit_factor"`
	DailyTrades    int     `json:"daily_trades"`
	MaxDailyTrades int     `json:"max_daily_trades"`
}

// PositionView is an open position enriched with live P&L for display.
type PositionView struct {
	Position
	CurrentPrice float64 `json:"current_price"`
	PnL          float64 `json:"pnl"`
	PnLPercent   float64 `json:"pnl_percent"`
}

// TradeView is a closed trade formatted for the history table.
type TradeView struct {
	ClosedTrade
	DurationMinutes float64 `json:"duration"`
}

// ChartPayload carries plotly-compatible traces and layout.
type ChartPayload struct {
	Data   []map[string]any `json:"data"`
	Layout map[string]any   `json:"layout"`
}

// DataRequest binds query parameters for GET /api/data.
type DataRequest struct {
	Symbol string `query:"symbol" json:"symbol" default:"BTCUSDT" validate:"required"`
	TF     string `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 5m 15m 30m 1h 4h 1d"`
	Limit  int    `query:"limit" json:"limit" default:"200" validate:"gte=50,lte=1000"`
}

// HistoryRequest binds query parameters for GET /api/history.
type HistoryRequest struct {
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}
