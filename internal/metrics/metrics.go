// Package metrics provides Prometheus metrics for the jobhunter service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"jobmate/jobhunter-service/internal/model"
)

var (
	// CyclesTotal counts sync cycles by outcome ("ok" or "error").
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobhunter",
			Name:      "sync_cycles_total",
			Help:      "Total number of sync cycles",
		},
		[]string{"status"},
	)

	// ListingsTotal counts processed listings by outcome.
	ListingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobhunter",
			Name:      "listings_total",
			Help:      "Listings seen by the sync engine, by outcome",
		},
		[]string{"outcome"},
	)

	// PrunedTotal counts rows removed by the retention window.
	PrunedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jobhunter",
			Name:      "pruned_jobs_total",
			Help:      "Stored jobs deleted for being older than the retention window",
		},
	)

	// CycleDuration measures sync cycle duration.
	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "jobhunter",
			Name:      "sync_cycle_duration_seconds",
			Help:      "Duration of sync cycles in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	// StoredJobs tracks the row count observed after the last cycle.
	StoredJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "jobhunter",
			Name:      "stored_jobs",
			Help:      "Number of rows in the jobs table after the last cycle",
		},
	)
)

// RecordCycle records the outcome of one cycle. Listing counters are only
// incremented for committed cycles.
func RecordCycle(report model.CycleReport, err error) {
	CycleDuration.Observe(report.Duration.Seconds())
	if err != nil {
		CyclesTotal.WithLabelValues("error").Inc()
		return
	}
	CyclesTotal.WithLabelValues("ok").Inc()
	PrunedTotal.Add(float64(report.Pruned))
	ListingsTotal.WithLabelValues("inserted").Add(float64(report.Inserted))
	ListingsTotal.WithLabelValues("duplicate").Add(float64(report.Duplicates))
	ListingsTotal.WithLabelValues("stale").Add(float64(report.Stale))
	ListingsTotal.WithLabelValues("filtered").Add(float64(report.Filtered))
	ListingsTotal.WithLabelValues("failed").Add(float64(report.Failed))
}

// SetStoredJobs records the current row count.
func SetStoredJobs(n int64) {
	StoredJobs.Set(float64(n))
}
