package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	apiRequestsTotal    *prometheus.CounterVec
	apiLatencySeconds   *prometheus.HistogramVec
	notificationsTotal  *prometheus.CounterVec
	transitionsTotal    *prometheus.CounterVec
	staleResponsesTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the tutor client.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tutor",
			Name:      "api_requests_total",
			Help:      "Total number of calls made to the tutor service.",
		}, []string{"operation", "outcome"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tutor",
			Name:      "api_latency_seconds",
			Help:      "Latency distribution for tutor service calls.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"operation"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tutor",
			Name:      "notifications_total",
			Help:      "Total number of failure notices raised to the user.",
		}, []string{"kind"})

		transitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tutor",
			Name:      "session_transitions_total",
			Help:      "Screen transitions performed by the session controller.",
		}, []string{"from", "to"})

		staleResponsesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tutor",
			Name:      "stale_responses_total",
			Help:      "Responses discarded because the session was reset while they were outstanding.",
		}, []string{"operation"})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, notificationsTotal, transitionsTotal, staleResponsesTotal)
	})
}

// APIRequests exposes the counter for tutor service calls.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for tutor service calls.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// Notifications exposes the counter for raised notices.
func Notifications() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// Transitions exposes the counter for screen transitions.
func Transitions() *prometheus.CounterVec {
	RegisterMetrics()
	return transitionsTotal
}

// StaleResponses exposes the counter for discarded responses.
func StaleResponses() *prometheus.CounterVec {
	RegisterMetrics()
	return staleResponsesTotal
}
