// Package metrics holds the prometheus collectors shared across the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WorkflowTransitions counts state machine transitions by name and outcome.
	WorkflowTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scholarhub_workflow_transitions_total",
		Help: "Application, MoA and scholar state transitions by outcome",
	}, []string{"transition", "result"})

	// Notifications counts outbound notifications by kind and outcome.
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scholarhub_notifications_total",
		Help: "Notifications sent by kind and outcome",
	}, []string{"kind", "result"})

	// Logins counts identity resolutions by path and outcome.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scholarhub_logins_total",
		Help: "Login attempts by role and outcome",
	}, []string{"path", "result"})

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scholarhub_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"bucket"})

	// LookupFallbacks counts university lookups that fell back to manual entry.
	LookupFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scholarhub_lookup_fallbacks_total",
		Help: "University lookups that fell back to manual entry",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scholarhub_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scholarhub_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Result labels
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultNoop    = "noop"
	ResultFailure = "failure"
)

// Transition records the outcome of a named transition.
func Transition(name string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	WorkflowTransitions.WithLabelValues(name, result).Inc()
}

// ObserveHTTP records one completed request.
func ObserveHTTP(method, route, status string, start time.Time) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}
