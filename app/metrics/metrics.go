package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Job metrics
	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classboard_job_runs_total",
			Help: "Total number of job runs by outcome",
		},
		[]string{"job", "status"},
	)

	JobRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classboard_job_run_duration_seconds",
			Help:    "Job run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	DocumentsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classboard_documents_created_total",
			Help: "Total number of documents committed by jobs",
		},
		[]string{"job"},
	)

	JobLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "classboard_job_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		},
		[]string{"job"},
	)

	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classboard_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "classboard_application_info",
			Help: "Application information",
		},
		[]string{"version", "store"},
	)
)

func Init(version, store string) {
	ApplicationInfo.WithLabelValues(version, store).Set(1)
}
