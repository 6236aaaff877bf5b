package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the HTTP surface.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        prometheus.Gauge
	loginsTotal         *prometheus.CounterVec
	forksTotal          *prometheus.CounterVec
}

// NewMetrics registers the collectors on a fresh registry, together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oauthapp",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "oauthapp",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "oauthapp",
			Name:      "http_inflight_requests",
			Help:      "Requests currently being served.",
		}),
		loginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oauthapp",
			Name:      "logins_total",
			Help:      "Completed login callbacks by result.",
		}, []string{"provider", "result"}),
		forksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oauthapp",
			Name:      "forks_total",
			Help:      "Fork requests by result.",
		}, []string{"provider", "result"}),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpInflight,
		m.loginsTotal,
		m.forksTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware counts requests by chi route pattern, so path parameters do not
// explode the label space.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.httpInflight.Inc()
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		defer func() {
			m.httpInflight.Dec()

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
			m.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		}()

		next.ServeHTTP(rec, r)
	})
}

func (m *Metrics) recordLogin(provider string, success bool) {
	m.loginsTotal.WithLabelValues(provider, result(success)).Inc()
}

func (m *Metrics) recordFork(provider string, success bool) {
	m.forksTotal.WithLabelValues(provider, result(success)).Inc()
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}
