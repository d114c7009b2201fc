package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contractsearch",
			Name:      "searches_total",
			Help:      "Total number of executed searches",
		},
		[]string{"outcome"}, // hit / miss
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "contractsearch",
			Name:      "search_duration_seconds",
			Help:      "Search execution duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "contractsearch",
			Name:      "search_results",
			Help:      "Result count per search before truncation",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	IndexRebuildsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "contractsearch",
			Name:      "index_rebuilds_total",
			Help:      "Total number of inverted index rebuilds",
		},
	)

	IndexedContracts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "contractsearch",
			Name:      "indexed_contracts",
			Help:      "Number of contracts in the current index snapshot",
		},
	)
)

// RegisterSearchMetrics registers search metrics with the default registry.
// Called explicitly from the composition root (no init()).
func RegisterSearchMetrics() {
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(IndexRebuildsTotal)
	prometheus.MustRegister(IndexedContracts)
}
