// Package metrics exposes Prometheus instrumentation for the client's
// outbound API calls.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects counters and latencies for calls against the remote API.
type Metrics struct {
	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
}

// New creates the collectors and registers them on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hamkharj",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Outbound API requests by method, path and status code.",
		}, []string{"method", "path", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hamkharj",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Outbound API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
	reg.MustRegister(m.apiRequests, m.apiLatency)
	return m
}

// ObserveRequest records one completed outbound call. Network failures are
// recorded with status 0.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.apiLatency.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
