package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts cache lookups served without recomputation, per region.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fintrack_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"region"},
	)

	// CacheMisses counts cache lookups that fell through to the database, per region.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fintrack_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"region"},
	)

	// CacheInvalidations counts explicit cache deletions, per region.
	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fintrack_cache_invalidations_total",
			Help: "Total number of explicit cache invalidations",
		},
		[]string{"region"},
	)

	// BudgetAlerts counts budget threshold notifications by kind (warning|exceeded).
	BudgetAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fintrack_budget_alerts_total",
			Help: "Total number of budget threshold notifications created",
		},
		[]string{"kind"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fintrack_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
