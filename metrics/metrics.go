package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics, exported on /metrics. Label cardinality is bounded: category
// is one of the cache key categories, source is one of the four provider names.
var (
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalyst_cache_hits_total",
		Help: "Cache reads that returned a usable record",
	}, []string{"category"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalyst_cache_misses_total",
		Help: "Cache reads that fell through (absent, expired or backend error)",
	}, []string{"category"})

	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalyst_provider_requests_total",
		Help: "Catalyst fetches issued per source",
	}, []string{"source"})

	ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalyst_provider_errors_total",
		Help: "Catalyst fetches absorbed as empty results per source",
	}, []string{"source"})

	ReconcileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalyst_reconcile_duration_seconds",
		Help:    "Wall time of one per-symbol reconciliation fan-out",
		Buckets: prometheus.DefBuckets,
	})

	ReconcileInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalyst_reconcile_in_flight",
		Help: "Per-symbol reconciliations currently running",
	})
)
