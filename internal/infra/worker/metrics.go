package worker

import (
	"newsdigest/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics embeds the worker's configuration metrics and adds job metrics:
//   - worker_cron_job_runs_total{status}
//   - worker_cron_job_duration_seconds
//   - worker_cron_job_items_total
//   - worker_cron_job_last_success_timestamp
type Metrics struct {
	*config.ConfigMetrics

	JobRunsTotal         *prometheus.CounterVec
	JobDurationSeconds   prometheus.Histogram
	JobItemsTotal        prometheus.Counter
	LastSuccessTimestamp prometheus.Gauge
}

// NewMetrics registers the worker metrics with reg (nil → default registerer).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ConfigMetrics: config.NewConfigMetrics("worker", reg),

		JobRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of digest job runs by status",
		}, []string{"status"}),

		JobDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of digest job runs in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		JobItemsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "worker_cron_job_items_total",
			Help: "Total number of digest items produced across job runs",
		}),

		LastSuccessTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful digest job run",
		}),
	}
}

// RecordJobRun counts a run with status "started", "success" or "failure".
func (m *Metrics) RecordJobRun(status string) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes a run duration in seconds.
func (m *Metrics) RecordJobDuration(seconds float64) {
	m.JobDurationSeconds.Observe(seconds)
}

// RecordItems adds the number of digest items a run produced.
func (m *Metrics) RecordItems(count int) {
	m.JobItemsTotal.Add(float64(count))
}

// RecordLastSuccess stamps the current time.
func (m *Metrics) RecordLastSuccess() {
	m.LastSuccessTimestamp.SetToCurrentTime()
}
