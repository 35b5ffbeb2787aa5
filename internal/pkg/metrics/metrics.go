package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "asset_dashboard"

// Outcome label values for PriceFetches.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeDiscarded = "discarded"
)

var (
	// PriceFetches counts price API round trips by source, kind (reference|token) and outcome.
	PriceFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_fetch_total",
		Help:      "Price lookups issued against the external price API.",
	}, []string{"source", "kind", "outcome"})

	// PricesMerged counts price entries written into view caches.
	PricesMerged = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prices_merged_total",
		Help:      "Price entries merged into valuation view caches.",
	})

	// BalanceFetches counts balance batch lookups by chain and outcome.
	BalanceFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "balance_fetch_total",
		Help:      "Balance batch lookups issued against chain RPC.",
	}, []string{"chain", "outcome"})

	// ActiveViews tracks the number of open valuation views.
	ActiveViews = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_views",
		Help:      "Valuation views currently open.",
	})

	// HTTPRequestDuration observes API latency per route.
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)

var registerOnce sync.Once

// MustRegisterMetrics registers all collectors with the default registry.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(PriceFetches, PricesMerged, BalanceFetches, ActiveViews, HTTPRequestDuration)
	})
}
