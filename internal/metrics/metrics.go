// Package metrics exposes Prometheus collectors for the scorer.
package metrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resume_scorer"

type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	analyses     *prometheus.CounterVec
	overall      *prometheus.HistogramVec
	fusion       *prometheus.CounterVec
	oracleCalls  *prometheus.CounterVec
	oracleTime   *prometheus.HistogramVec
}

// New registers all collectors on reg. Passing a fresh prometheus.NewRegistry()
// keeps tests isolated from the default registry.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"route", "method"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed analyses by method",
		}, []string{"method"}),
		overall: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "overall_match",
			Help:      "Distribution of the overall match score (0-100)",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}, []string{"method"}),
		fusion: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fusion_outcomes_total",
			Help:      "LLM fusion attempts by outcome",
		}, []string{"outcome"}),
		oracleCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_calls_total",
			Help:      "LLM oracle calls by stage and result",
		}, []string{"stage", "result"}),
		oracleTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_call_duration_seconds",
			Help:      "LLM oracle call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"stage"}),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.analyses,
		m.overall,
		m.fusion,
		m.oracleCalls,
		m.oracleTime,
	)

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records count and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := RoutePattern(r)
		m.httpRequests.WithLabelValues(route, r.Method, http.StatusText(ww.Status())).Inc()
		m.httpDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// Analysis implements analyzer.Recorder.
func (m *Metrics) Analysis(method string, overall float64) {
	m.analyses.WithLabelValues(method).Inc()
	if overall >= 0 && overall <= 100 {
		m.overall.WithLabelValues(method).Observe(overall)
	}
}

// FusionOutcome implements fusion.Recorder.
func (m *Metrics) FusionOutcome(outcome string) {
	m.fusion.WithLabelValues(outcome).Inc()
}

// OracleCall implements fusion.Recorder.
func (m *Metrics) OracleCall(stage string, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.oracleCalls.WithLabelValues(stage, result).Inc()
	m.oracleTime.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// RoutePattern returns the matched chi pattern, or the raw path outside a chi router.
func RoutePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
