package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recommendation Prometheus metrics.
var (
	ResolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookrec",
			Name:      "resolve_total",
			Help:      "Title resolutions by match kind",
		},
		[]string{"kind"},
	)

	ExploreTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookrec",
			Name:      "explore_total",
			Help:      "Constrained samples by fallback mode",
		},
		[]string{"mode"},
	)

	NearestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bookrec",
			Name:      "nearest_duration_seconds",
			Help:      "Nearest-neighbor scan duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"status"},
	)

	NeighborCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookrec",
			Name:      "neighbor_cache_total",
			Help:      "Neighbor cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	CatalogBooks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bookrec",
			Name:      "catalog_books",
			Help:      "Number of books in the loaded catalog",
		},
	)
)

var recMetricsRegistered bool

// RegisterRecommendMetrics registers recommendation metrics. Must be called once from main.
func RegisterRecommendMetrics() {
	if recMetricsRegistered {
		return
	}
	prometheus.MustRegister(ResolveTotal)
	prometheus.MustRegister(ExploreTotal)
	prometheus.MustRegister(NearestDuration)
	prometheus.MustRegister(NeighborCacheTotal)
	prometheus.MustRegister(CatalogBooks)
	recMetricsRegistered = true
}
