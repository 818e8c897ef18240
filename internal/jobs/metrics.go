package jobs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradepost_lifecycle_job_runs_total",
		Help: "Completed lifecycle job runs by job and outcome.",
	}, []string{"job", "status"})

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tradepost_lifecycle_job_duration_seconds",
		Help:    "Wall-clock duration of lifecycle job runs.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	}, []string{"job"})

	recordsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradepost_lifecycle_records_processed_total",
		Help: "Records successfully processed by job and destruction mode.",
	}, []string{"job", "mode"})

	recordErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradepost_lifecycle_record_errors_total",
		Help: "Record-level failures left for retry on the next tick.",
	}, []string{"job"})
)

func observeRun(job string, success bool, started time.Time) {
	status := "success"
	if !success {
		status = "failure"
	}
	jobRuns.WithLabelValues(job, status).Inc()
	jobDuration.WithLabelValues(job).Observe(time.Since(started).Seconds())
}

func observeOutcome(job string, o Outcome) {
	if o.Err != "" {
		recordErrors.WithLabelValues(job).Inc()
		return
	}
	if o.Processed {
		recordsProcessed.WithLabelValues(job, string(o.Mode)).Inc()
	}
}
