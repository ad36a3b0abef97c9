package rewrite

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder abstracts rewrite metrics so tests can inject a fake.
type MetricsRecorder interface {
	// RecordAttempt counts one generator call by model and outcome
	// (success, transport_error, no_candidates, unparseable, misaligned).
	RecordAttempt(model, outcome string)

	// RecordDuration records the latency of one generator call.
	RecordDuration(model string, d time.Duration)

	// RecordParseStage counts which parse stage produced the items.
	RecordParseStage(stage string)

	// RecordSplit counts a batch bisection.
	RecordSplit()

	// RecordItems records how many items one Rewrite call returned and for how many articles.
	RecordItems(returned, requested int)
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) RecordAttempt(string, string) {}
func (NoopMetrics) RecordDuration(string, time.Duration) {}
func (NoopMetrics) RecordParseStage(string) {}
func (NoopMetrics) RecordSplit() {}
func (NoopMetrics) RecordItems(int, int) {}

// PrometheusMetrics implements MetricsRecorder with Prometheus collectors.
type PrometheusMetrics struct {
	attempts    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	parseStages *prometheus.CounterVec
	splits      prometheus.Counter
	coverage    prometheus.Gauge
}

var (
	prometheusMetricsInstance *PrometheusMetrics
	prometheusMetricsOnce     sync.Once
)

// getOrCreate registers c, or returns the already registered collector of the same shape.
func getOrCreate[C prometheus.Collector](c C) C {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// NewPrometheusMetrics returns the process-wide Prometheus recorder.
// Uses a singleton to avoid duplicate registration in tests.
func NewPrometheusMetrics() *PrometheusMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusMetrics{
			attempts: getOrCreate(prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "rewrite_attempts_total",
				Help: "Generator calls made by the rewriter, by model and outcome",
			}, []string{"model", "outcome"})),
			duration: getOrCreate(prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "rewrite_request_duration_seconds",
				Help:    "Latency of one generator call",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
			}, []string{"model"})),
			parseStages: getOrCreate(prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "rewrite_parse_stage_total",
				Help: "Parse stage that produced the items of a successful attempt",
			}, []string{"stage"})),
			splits: getOrCreate(prometheus.NewCounter(prometheus.CounterOpts{
				Name: "rewrite_batch_splits_total",
				Help: "Batches bisected after exhausting all models",
			})),
			coverage: getOrCreate(prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "rewrite_coverage_ratio",
				Help: "Returned items over requested articles for the last Rewrite call",
			})),
		}
	})
	return prometheusMetricsInstance
}

// RecordAttempt implements MetricsRecorder.
func (p *PrometheusMetrics) RecordAttempt(model, outcome string) {
	p.attempts.WithLabelValues(model, outcome).Inc()
}

// RecordDuration implements MetricsRecorder.
func (p *PrometheusMetrics) RecordDuration(model string, d time.Duration) {
	p.duration.WithLabelValues(model).Observe(d.Seconds())
}

// RecordParseStage implements MetricsRecorder.
func (p *PrometheusMetrics) RecordParseStage(stage string) {
	p.parseStages.WithLabelValues(stage).Inc()
}

// RecordSplit implements MetricsRecorder.
func (p *PrometheusMetrics) RecordSplit() {
	p.splits.Inc()
}

// RecordItems implements MetricsRecorder.
func (p *PrometheusMetrics) RecordItems(returned, requested int) {
	if requested == 0 {
		return
	}
	p.coverage.Set(float64(returned) / float64(requested))
}
