package models

// Signal is a pending buy or sell marker shown on the dashboard.
type Signal struct {
	Active bool    `json:"active"`
	Price  float64 `json:"price"`
	RSI    float64 `json:"rsi"`
	MACD   float64 `json:"macd"`
	ID     int64   `json:"id"`
	Time   string  `json:"time_iso"`
}

// TradePlan is the stop-loss/take-profit descriptor for the most recent
// executed signal.
type TradePlan struct {
	Active          bool    `json:"active"`
	EntryPrice      float64 `json:"entry_price"`
	StopLoss        float64 `json:"stop_loss"`
	TakeProfit      float64 `json:"take_profit"`
	IsBuy           bool    `json:"is_buy"`
	DistancePercent float64 `json:"distance_percent"`
}

// Decision is the outcome of one side of the signal evaluation.
type Decision struct {
	Triggered  bool
	Side       Side
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	Reason     string // populated when not triggered
}

// SentimentSummary is the scalar market-sentiment view consumed by the
// regime classifier; the provider owns how it is produced.
type SentimentSummary struct {
	Score        float64    `json:"sentiment_score"`
	Overall      string     `json:"overall_sentiment"`
	CrisisAlerts int        `json:"crisis_alerts"`
	CrisisImpact float64    `json:"crisis_impact"`
	Headlines    []Headline `json:"recent_news,omitempty"`
}

// Headline is a scored news item.
type Headline struct {
	Title     string  `json:"title"`
	Source    string  `json:"source"`
	URL       string  `json:"url"`
	Published int64   `json:"published"`
	Polarity  float64 `json:"polarity"`
	IsCrisis  bool    `json:"is_crisis"`
}
