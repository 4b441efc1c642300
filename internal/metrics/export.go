package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Export Prometheus metrics.
var (
	ExportRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchinto",
			Name:      "export_runs_total",
			Help:      "Total number of export runs",
		},
		[]string{"job", "status"},
	)

	ExportRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "searchinto",
			Name:      "export_run_duration_seconds",
			Help:      "Export run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600},
		},
		[]string{"job"},
	)

	ExportDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchinto",
			Name:      "export_documents_total",
			Help:      "Total number of exported source documents by outcome",
		},
		[]string{"job", "status"},
	)

	ScriptEvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchinto",
			Name:      "script_evaluations_total",
			Help:      "Total number of script field evaluations",
		},
		[]string{"lang", "status"},
	)

	ScriptEvaluationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "searchinto",
			Name:      "script_evaluation_duration_seconds",
			Help:      "Script field evaluation duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"lang"},
	)
)

var registerExport sync.Once

// RegisterExportMetrics registers the export and script metrics. Safe to call more than once.
func RegisterExportMetrics() {
	registerExport.Do(func() {
		prometheus.MustRegister(
			ExportRunsTotal,
			ExportRunDuration,
			ExportDocumentsTotal,
			ScriptEvaluationsTotal,
			ScriptEvaluationDuration,
		)
	})
}
