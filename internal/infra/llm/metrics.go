package llm

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder records completion calls. It is an interface so tests
// can inject a recorder instead of touching the Prometheus registry.
type MetricsRecorder interface {
	RecordRequest(provider, model, status string, duration time.Duration)
	RecordResponseLength(provider string, runes int)
}

// PrometheusMetrics implements MetricsRecorder with Prometheus collectors.
type PrometheusMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	length   *prometheus.HistogramVec
}

var (
	prometheusMetricsInstance *PrometheusMetrics
	prometheusMetricsOnce     sync.Once
)

// registerOrExisting registers c, or returns the collector already
// registered under the same descriptor.
func registerOrExisting[C prometheus.Collector](c C) C {
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
			requests: registerOrExisting(prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "llm_requests_total",
					Help: "Total number of completion requests by provider, model and status",
				},
				[]string{"provider", "model", "status"},
			)),
			duration: registerOrExisting(prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "llm_request_duration_seconds",
					Help:    "Completion request duration in seconds",
					Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
				},
				[]string{"provider"},
			)),
			length: registerOrExisting(prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "llm_response_length_characters",
					Help:    "Distribution of completion lengths in characters (Unicode runes)",
					Buckets: []float64{25, 50, 100, 200, 400, 800},
				},
				[]string{"provider"},
			)),
		}
	})
	return prometheusMetricsInstance
}

// RecordRequest implements MetricsRecorder.
func (p *PrometheusMetrics) RecordRequest(provider, model, status string, duration time.Duration) {
	p.requests.WithLabelValues(provider, model, status).Inc()
	p.duration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordResponseLength implements MetricsRecorder.
func (p *PrometheusMetrics) RecordResponseLength(provider string, runes int) {
	p.length.WithLabelValues(provider).Observe(float64(runes))
}

// statusOf labels an outcome for metrics.
func statusOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrModelUnavailable):
		return "model_unavailable"
	default:
		return "error"
	}
}
