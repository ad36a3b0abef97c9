package llm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"newsdigest/internal/resilience/retry"
)

// MetricsRecorder records one outbound generation request.
type MetricsRecorder interface {
	RecordRequest(provider, model, status string, duration time.Duration)
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

// RecordRequest implements MetricsRecorder.
func (NoopMetrics) RecordRequest(string, string, string, time.Duration) {}

// PrometheusMetrics implements MetricsRecorder with Prometheus collectors.
type PrometheusMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var (
	prometheusMetricsInstance *PrometheusMetrics
	prometheusMetricsOnce     sync.Once
)

func getOrCreate[C prometheus.Collector](c C) C {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// NewPrometheusMetrics returns the process-wide recorder.
func NewPrometheusMetrics() *PrometheusMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusMetrics{
			requests: getOrCreate(prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "llm_requests_total",
				Help: "Outbound generation requests by provider, model and status",
			}, []string{"provider", "model", "status"})),
			duration: getOrCreate(prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "llm_request_duration_seconds",
				Help:    "Latency of outbound generation requests",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			}, []string{"provider"})),
		}
	})
	return prometheusMetricsInstance
}

// RecordRequest implements MetricsRecorder.
func (p *PrometheusMetrics) RecordRequest(provider, model, status string, duration time.Duration) {
	p.requests.WithLabelValues(provider, model, status).Inc()
	p.duration.WithLabelValues(provider).Observe(duration.Seconds())
}

// statusOf maps a request error to a low-cardinality label.
func statusOf(err error) string {
	var httpErr *retry.HTTPError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &httpErr) && httpErr.StatusCode >= 500:
		return "server_error"
	case errors.As(err, &httpErr):
		return "client_error"
	default:
		return "error"
	}
}
