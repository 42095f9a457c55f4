package coinwatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts gateway calls and tracks the watchlist size.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	watched  prometheus.Gauge
	total    prometheus.Gauge
}

// NewMetrics creates the metrics and registers them in reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinwatch_gateway_calls_total",
				Help: "Market data calls by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "coinwatch_gateway_call_seconds",
				Help: "Market data call duration",
			},
			[]string{"op"},
		),
		watched: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "coinwatch_watchlist_coins",
				Help: "Number of coins in the watchlist",
			},
		),
		total: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "coinwatch_portfolio_total",
				Help: "Portfolio total value in the quote currency",
			},
		),
	}
	reg.MustRegister(m.calls, m.duration, m.watched, m.total)
	return m
}

func (m *Metrics) observeCall(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.calls.With(prometheus.Labels{"op": op, "outcome": outcome}).Inc()
	m.duration.With(prometheus.Labels{"op": op}).Observe(time.Since(start).Seconds())
}

func (m *Metrics) observePortfolio(p Portfolio) {
	if m == nil {
		return
	}
	m.watched.Set(float64(len(p.Watchlist)))
	m.total.Set(p.Total().InexactFloat64())
}
