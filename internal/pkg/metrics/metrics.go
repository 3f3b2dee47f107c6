package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ReportsServed counts completed portfolio reports by outcome label.
	ReportsServed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exposure_reports_served_total",
		Help: "Number of portfolio reports served, labeled by outcome (ok, degraded, failed).",
	}, []string{"outcome"})

	// ChainFetchFailures counts per-chain balance fetch failures.
	ChainFetchFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exposure_chain_fetch_failures_total",
		Help: "Number of per-chain balance fetch failures.",
	}, []string{"chain"})

	// AdviceFallbacks counts reports where the advice generator failed and the
	// deterministic composer was used instead.
	AdviceFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "exposure_advice_fallbacks_total",
		Help: "Number of reports that used the rule-based advice fallback.",
	})

	// ReportDuration tracks end-to-end report build latency.
	ReportDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "exposure_report_duration_seconds",
		Help:    "End-to-end portfolio report build latency.",
		Buckets: prometheus.DefBuckets,
	})
)

// MustRegister registers all collectors with the default registry. Call once
// from main.
func MustRegister() {
	prometheus.MustRegister(ReportsServed, ChainFetchFailures, AdviceFallbacks, ReportDuration)
}
