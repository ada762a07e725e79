// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. Every Record method is safe to
// call on a nil *Metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Route cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Program workflow metrics
	ProgramSubmissionsTotal *prometheus.CounterVec
	ProgramListComputeTotal *prometheus.CounterVec

	// Auth metrics
	LoginAttemptsTotal *prometheus.CounterVec
	RateLimiterDropped prometheus.Counter

	registry *prometheus.Registry
}

// New creates a Metrics instance with all metrics registered on registry,
// along with the Go runtime and process collectors.
func New(registry *prometheus.Registry) *Metrics {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		HTTPRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "carepath_http_requests_total",
				Help: "Total HTTP requests by route pattern, method and status code",
			},
			[]string{"route", "method", "code"},
		),

		HTTPRequestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "carepath_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds by route pattern",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"route"},
		),

		CacheHitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "carepath_route_cache_hits_total",
				Help: "Total route cache hits by route",
			},
			[]string{"route"},
		),

		CacheMissesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "carepath_route_cache_misses_total",
				Help: "Total route cache misses by route",
			},
			[]string{"route"},
		),

		ProgramSubmissionsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "carepath_program_submissions_total",
				Help: "Create-program submissions by final workflow state",
			},
			[]string{"outcome"}, // outcome: success, failed, invalid, in_flight
		),

		ProgramListComputeTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "carepath_program_list_views_total",
				Help: "Program list views served by sort key",
			},
			[]string{"sort"},
		),

		LoginAttemptsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "carepath_login_attempts_total",
				Help: "Admin login attempts by result",
			},
			[]string{"result"}, // result: success, invalid, error
		),

		RateLimiterDropped: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "carepath_rate_limiter_dropped_total",
				Help: "Requests rejected by the login rate limiter",
			},
		),

		registry: registry,
	}
}

// WatchListMemo exports size as the number of memoized program list views.
func (m *Metrics) WatchListMemo(size func() int) {
	if m == nil {
		return
	}
	promauto.With(m.registry).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "carepath_program_list_memo_entries",
			Help: "Program list views held by the memo",
		},
		func() float64 { return float64(size()) },
	)
}

// Handler returns the /metrics HTTP handler for registry.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(route, method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// CacheHit records a route cache hit.
func (m *Metrics) CacheHit(route string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(route).Inc()
}

// CacheMiss records a route cache miss.
func (m *Metrics) CacheMiss(route string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(route).Inc()
}

// RecordSubmission records the outcome of a create-program submission.
func (m *Metrics) RecordSubmission(outcome string) {
	if m == nil {
		return
	}
	m.ProgramSubmissionsTotal.WithLabelValues(outcome).Inc()
}

// RecordListView records a program list render for sort.
func (m *Metrics) RecordListView(sort string) {
	if m == nil {
		return
	}
	m.ProgramListComputeTotal.WithLabelValues(sort).Inc()
}

// RecordLogin records a login attempt result.
func (m *Metrics) RecordLogin(result string) {
	if m == nil {
		return
	}
	m.LoginAttemptsTotal.WithLabelValues(result).Inc()
}

// RecordRateLimited records a request rejected by the rate limiter.
func (m *Metrics) RecordRateLimited() {
	if m == nil {
		return
	}
	m.RateLimiterDropped.Inc()
}
