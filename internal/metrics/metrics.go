// Package metrics exposes Prometheus instrumentation for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "event_manager"

// Registry is the registry served on /metrics.
var Registry = prometheus.NewRegistry()

// Registration outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeSoldOut  = "sold_out"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	// RegistrationsTotal counts attendee registrations by outcome.
	RegistrationsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Attendee registrations by outcome",
		},
		[]string{"outcome"},
	)

	// TicketsSoldTotal counts individual tickets sold.
	TicketsSoldTotal = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_sold_total",
			Help:      "Tickets sold across all events",
		},
	)

	// NotificationsTotal counts confirmation deliveries by outcome.
	NotificationsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Registration confirmations by outcome (sent, failed)",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}
