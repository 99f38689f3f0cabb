// Package metrics provides Prometheus metrics for the Fern service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchRequestsTotal tracks hybrid searches by scope and outcome
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total number of hybrid searches by scope and status",
		},
		[]string{"scope", "status"},
	)

	// SearchDuration tracks hybrid search latency in seconds
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Duration of hybrid searches in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"scope"},
	)

	// SearchResults tracks how many entities a search returned
	SearchResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "search",
			Name:      "results",
			Help:      "Number of ranked entities returned per search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"scope"},
	)

	// AttributeViolationsTotal tracks attribute violations by kind
	AttributeViolationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "attributes",
			Name:      "violations_total",
			Help:      "Total number of attribute violations by kind",
		},
		[]string{"kind"},
	)

	// DuplicateChecksTotal tracks duplicate detection outcomes
	DuplicateChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "duplicates",
			Name:      "checks_total",
			Help:      "Total number of duplicate checks by outcome (skipped, clear, found, forced)",
		},
		[]string{"outcome"},
	)

	// ItemWritesTotal tracks item writes by operation and outcome
	ItemWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "items",
			Name:      "writes_total",
			Help:      "Total number of item writes by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// ImportRowsTotal tracks bulk import rows by import kind and status
	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Total number of imported rows by kind and status",
		},
		[]string{"kind", "status"},
	)
)
