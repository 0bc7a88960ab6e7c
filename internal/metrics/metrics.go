// Package metrics provides Prometheus metrics for the KwikFlip backend.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kwikflip_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kwikflip_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Search Gateway Metrics
	EbayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kwikflip_ebay_requests_total",
			Help: "Total number of eBay Finding API requests made",
		},
		[]string{"status"}, // "active" or "sold"
	)

	EbayRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kwikflip_ebay_request_duration_seconds",
			Help:    "eBay Finding API call latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 15},
		},
	)

	GatewayErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kwikflip_gateway_errors_total",
			Help: "Search gateway errors by type",
		},
		[]string{"type"}, // "network", "status", "decode", "ack", "rate_limit"
	)

	SearchCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kwikflip_search_cache_hits_total",
			Help: "Search result cache hit count",
		},
	)

	SearchCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kwikflip_search_cache_misses_total",
			Help: "Search result cache miss count",
		},
	)

	MarketAnalysesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kwikflip_market_analyses_total",
			Help: "Total number of market research queries analyzed",
		},
	)

	// Flip Log Metrics
	FlipMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kwikflip_flip_mutations_total",
			Help: "Flip record writes by operation",
		},
		[]string{"op"}, // "create", "update", "delete"
	)

	FlipsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kwikflip_flips_by_status",
			Help: "Number of tracked flips by lifecycle status",
		},
		[]string{"status"},
	)

	TrackedProfitUSD = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kwikflip_tracked_profit_usd",
			Help: "Total net profit across all tracked flips in USD",
		},
	)
)

// UpdateFlipMetrics records the flip log gauges from an all-time aggregate
func UpdateFlipMetrics(byStatus map[string]int, totalProfit float64) {
	FlipsByStatus.Reset()
	for status, count := range byStatus {
		FlipsByStatus.WithLabelValues(status).Set(float64(count))
	}
	TrackedProfitUSD.Set(totalProfit)
}
