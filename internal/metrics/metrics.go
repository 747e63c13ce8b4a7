// Package metrics exposes analysis and fetch counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"SwingSentinel/internal/model"
)

// Metrics holds all Prometheus metrics of the sentinel.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec // labels: profile, status
	AnalysisDuration prometheus.Histogram
	FetchAttempts    *prometheus.CounterVec // labels: provider, result
	BuyTotal         *prometheus.GaugeVec   // labels: symbol
	SellTotal        *prometheus.GaugeVec   // labels: symbol

	gatherer prometheus.Gatherer
}

// NewMetrics registers all metrics with reg. A nil reg uses a fresh private
// registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_analyses_total",
			Help: "Analyses run, by profile and status",
		}, []string{"profile", "status"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentinel_analysis_duration_seconds",
			Help:    "Wall time of one collect and analyze cycle",
			Buckets: prometheus.DefBuckets,
		}),
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_fetch_attempts_total",
			Help: "Provider fetch attempts, by provider and result",
		}, []string{"provider", "result"}),
		BuyTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sentinel_buy_total",
			Help: "Latest buy score per symbol",
		}, []string{"symbol"}),
		SellTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sentinel_sell_total",
			Help: "Latest sell score per symbol",
		}, []string{"symbol"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.FetchAttempts,
		m.BuyTotal,
		m.SellTotal,
	)
	return m
}

// ObserveFetch records one provider attempt.
func (m *Metrics) ObserveFetch(provider string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.FetchAttempts.WithLabelValues(provider, result).Inc()
}

// ObserveAnalysis records a finished analysis. Score gauges are only
// updated for scored results.
func (m *Metrics) ObserveAnalysis(res *model.AnalysisResult, elapsed time.Duration) {
	if res == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(res.ProfileID, string(res.Status)).Inc()
	m.AnalysisDuration.Observe(elapsed.Seconds())
	if res.Status == model.StatusOK && res.Symbol != "" {
		m.BuyTotal.WithLabelValues(res.Symbol).Set(float64(res.BuyTotal))
		m.SellTotal.WithLabelValues(res.Symbol).Set(float64(res.SellTotal))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
