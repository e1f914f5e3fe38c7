package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cycles        *prometheus.CounterVec
	signals       *prometheus.CounterVec
	tradesClosed  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	openPositions prometheus.Gauge
	realizedPnL   prometheus.Gauge
	lastPrice     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cycles: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepulse_refresh_cycles_total",
				Help: "Total number of completed refresh cycles",
			},
			[]string{"symbol"},
		),
		signals: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepulse_signals_total",
				Help: "Total number of triggered trade signals",
			},
			[]string{"side"},
		),
		tradesClosed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepulse_trades_closed_total",
				Help: "Total number of closed positions",
			},
			[]string{"result"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		openPositions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tradepulse_open_positions",
				Help: "Number of currently open positions",
			},
		),
		realizedPnL: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tradepulse_realized_pnl",
				Help: "Total realized P&L over the session",
			},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradepulse_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradepulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCycle records one completed refresh cycle.
func (r *Recorder) RecordCycle(symbol string) {
	r.cycles.WithLabelValues(symbol).Inc()
}

// RecordSignal records a triggered signal by side.
func (r *Recorder) RecordSignal(side string) {
	r.signals.WithLabelValues(side).Inc()
}

// RecordTradeClosed records a closed position by result (win/loss).
func (r *Recorder) RecordTradeClosed(result string) {
	r.tradesClosed.WithLabelValues(result).Inc()
}

// SetOpenPositions records the current open-position count.
func (r *Recorder) SetOpenPositions(n int) {
	r.openPositions.Set(float64(n))
}

// SetRealizedPnL records the running realized P&L total.
func (r *Recorder) SetRealizedPnL(total float64) {
	r.realizedPnL.Set(total)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
