package core

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetricsRecorder exports operation counters and latency
// histograms through a Prometheus registry.
type PrometheusMetricsRecorder struct {
	registry  *prometheus.Registry
	results   *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewPrometheusMetricsRecorder builds a recorder with its own registry so
// repeated construction in tests never collides with the default registry.
func NewPrometheusMetricsRecorder() *PrometheusMetricsRecorder {
	registry := prometheus.NewRegistry()
	results := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "surveycore",
		Name:      "operation_results_total",
		Help:      "Count of pipeline operations by outcome.",
	}, []string{"operation", "status"})
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "surveycore",
		Name:      "operation_duration_seconds",
		Help:      "Latency of pipeline operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	registry.MustRegister(results, durations)
	return &PrometheusMetricsRecorder{
		registry:  registry,
		results:   results,
		durations: durations,
	}
}

// Observe records one operation outcome.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.results.WithLabelValues(operation, status).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// Handler returns an HTTP handler serving the recorder's registry in the
// Prometheus exposition format.
func (r *PrometheusMetricsRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gather exposes the registry for assertions.
func (r *PrometheusMetricsRecorder) Gather() *prometheus.Registry { return r.registry }
