package rmcloud

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-operation request counts and latencies.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the client collectors and registers them with reg.
// It panics if the collectors are already registered, like
// prometheus.MustRegister.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rmcloud",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Requests sent to the document-storage service, by operation and response code",
		}, []string{"operation", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rmcloud",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Round-trip time of requests to the document-storage service",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	reg.MustRegister(m.requests, m.duration)
	return m
}

// observe records one finished request. code is "error" when the request
// never produced a response.
func (m *Metrics) observe(operation string, status int, err error, elapsed time.Duration) {
	if m == nil {
		return
	}

	code := "error"
	if err == nil {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(operation, code).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
