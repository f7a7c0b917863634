package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds request counters for the gateway client and the fake backend.
type Metrics struct {
	registry     *prometheus.Registry
	requestCount *prometheus.CounterVec
	errorCount   *prometheus.CounterVec
	durations    *prometheus.HistogramVec
}

// NewMetrics initializes metrics on a private registry.
func NewMetrics(subsystem string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ticket_console",
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Requests handled, labeled by route, method and status code",
		}, []string{"path", "method", "status"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ticket_console",
			Subsystem: subsystem,
			Name:      "errors_total",
			Help:      "Failed requests, labeled by route, method and error kind",
		}, []string{"path", "method", "code"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ticket_console",
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
	}
	m.registry.MustRegister(m.requestCount, m.errorCount, m.durations)
	return m
}

// Registry exposes the registry for scraping.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.durations.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(path, method, code).Inc()
}

// RequestCounter returns the counter for one label set, for assertions and reporting.
func (m *Metrics) RequestCounter(path, method string, status int) prometheus.Counter {
	return m.requestCount.WithLabelValues(path, method, strconv.Itoa(status))
}

// ErrorCounter returns the error counter for one label set.
func (m *Metrics) ErrorCounter(path, method, code string) prometheus.Counter {
	return m.errorCount.WithLabelValues(path, method, code)
}
