package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of one server. Each instance owns
// its registry so several servers (and tests) can coexist in a process.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	activeRequests  prometheus.Gauge
	requestDuration *prometheus.HistogramVec
	evalErrors      *prometheus.CounterVec
	handler         http.Handler
}

// NewMetrics creates and registers the server collectors together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mpicalc_requests_total",
			Help: "HTTP requests handled, by path and status code.",
		}, []string{"path", "code"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mpicalc_active_requests",
			Help: "HTTP requests currently being served.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mpicalc_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"path"}),
		evalErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mpicalc_eval_errors_total",
			Help: "Failed evaluations, by error kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(
		m.requestsTotal,
		m.activeRequests,
		m.requestDuration,
		m.evalErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return m
}

// IncrementActiveRequests marks the start of a request.
func (m *Metrics) IncrementActiveRequests() { m.activeRequests.Inc() }

// DecrementActiveRequests marks the end of a request.
func (m *Metrics) DecrementActiveRequests() { m.activeRequests.Dec() }

// ObserveRequest records a finished request.
func (m *Metrics) ObserveRequest(path string, code int, d time.Duration) {
	m.requestsTotal.WithLabelValues(path, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(path).Observe(d.Seconds())
}

// RecordEvalError counts a failed evaluation under its error kind.
func (m *Metrics) RecordEvalError(kind string) {
	m.evalErrors.WithLabelValues(kind).Inc()
}

// WritePrometheus serves the registry in the Prometheus text format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
