package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	quizAttemptsTotal      *prometheus.CounterVec
	submissionsTotal       *prometheus.CounterVec
	certificatesIssued     prometheus.Counter
	eventsPublishedTotal   *prometheus.CounterVec
	gradeCacheLookupsTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "techbridge_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "techbridge_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "techbridge_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		quizAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "techbridge_quiz_attempts_total",
			Help: "Quiz attempt submissions partitioned by outcome.",
		}, []string{"outcome"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "techbridge_assignment_submissions_total",
			Help: "Assignment submissions partitioned by lateness.",
		}, []string{"lateness"})

		certificatesIssued = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "techbridge_certificates_issued_total",
			Help: "Certificates issued on course completion.",
		})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "techbridge_events_published_total",
			Help: "Domain events handed to the message brokers.",
		}, []string{"type"})

		gradeCacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "techbridge_cache_lookups_total",
			Help: "Redis cache lookups partitioned by cache and result.",
		}, []string{"cache", "result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			quizAttemptsTotal,
			submissionsTotal,
			certificatesIssued,
			eventsPublishedTotal,
			gradeCacheLookupsTotal,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// QuizAttempts counts quiz submissions. Outcomes: passed, failed, rejected.
func QuizAttempts() *prometheus.CounterVec {
	RegisterMetrics()
	return quizAttemptsTotal
}

// AssignmentSubmissions counts submissions by lateness: on_time, late, rejected.
func AssignmentSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// CertificatesIssued counts enrollments that reached completion.
func CertificatesIssued() prometheus.Counter {
	RegisterMetrics()
	return certificatesIssued
}

// EventsPublished counts domain events by type.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}

// CacheLookups counts cache hits and misses.
func CacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return gradeCacheLookupsTotal
}
