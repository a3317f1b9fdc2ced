// Package metrics registers the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okingsaam/Pulse/internal/rejection"
)

const namespace = "pulse"

var (
	// BookingsTotal counts booking attempts by outcome ("ok" or a rejection reason).
	BookingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_total",
		Help:      "Booking attempts by outcome.",
	}, []string{"outcome"})

	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "appointment_transitions_total",
		Help:      "Status transitions by target status and outcome.",
	}, []string{"to", "outcome"})

	// LockDegradedTotal counts bookings that ran without the Redis slot lock.
	LockDegradedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "slot_lock_degraded_total",
		Help:      "Bookings that fell back to storage-only conflict checks.",
	})

	RemindersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reminders_total",
		Help:      "Appointment reminders by result.",
	}, []string{"result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Outcome labels a result: "ok" for nil, the rejection reason for domain
// failures and "error" for anything else.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if reason, ok := rejection.ReasonOf(err); ok {
		return string(reason)
	}
	return "error"
}

func Handler() http.Handler {
	return promhttp.Handler()
}
