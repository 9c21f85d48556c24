package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	apiRequestsTotal   *prometheus.CounterVec
	apiLatencySeconds  *prometheus.HistogramVec
	apiErrorsTotal     *prometheus.CounterVec
	enrollmentsTotal   *prometheus.CounterVec
	submissionsTotal   *prometheus.CounterVec
	gradingsTotal      prometheus.Counter
	eventsPublishTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		enrollmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollments_total",
			Help: "Total number of enrollment operations, by outcome.",
		}, []string{"outcome"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submissions_total",
			Help: "Total number of accepted submissions, split by timeliness.",
		}, []string{"timeliness"})

		gradingsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gradings_total",
			Help: "Total number of submission reviews recorded.",
		})

		eventsPublishTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of domain events handed to the dispatcher.",
		}, []string{"event"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			enrollmentsTotal,
			submissionsTotal,
			gradingsTotal,
			eventsPublishTotal,
		)
	})
}

// APIRequests exposes the counter for served requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for served requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// EnrollmentsTotal counts enrollment operations by outcome (created,
// reactivated, rejected).
func EnrollmentsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return enrollmentsTotal
}

// SubmissionsTotal counts accepted submissions by timeliness (on_time, late).
func SubmissionsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// GradingsTotal counts recorded submission reviews.
func GradingsTotal() prometheus.Counter {
	RegisterMetrics()
	return gradingsTotal
}

// EventsPublished counts domain events handed to the dispatcher.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishTotal
}
