// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RankingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_runs_total",
			Help: "Total number of per-category ranking runs",
		},
		[]string{"category", "status"},
	)

	RankingRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ranking_run_duration_seconds",
			Help: "Duration of one per-category ranking run in seconds",
		},
		[]string{"category"},
	)

	ProductsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_products_scored_total",
			Help: "Products that produced a metrics record",
		},
		[]string{"category"},
	)

	ProductsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_products_skipped_total",
			Help: "Products excluded before scoring",
		},
		[]string{"category", "reason"},
	)

	ClassifierCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_classifier_calls_total",
			Help: "Calls made to the external sentiment classifier",
		},
		[]string{"status"},
	)

	SnapshotWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_snapshot_writes_total",
			Help: "Weekly ranking snapshot writes",
		},
		[]string{"category", "status"},
	)
)
