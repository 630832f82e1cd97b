package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DeliveryAttempts counts finished delivery attempts by method and outcome.
	DeliveryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_delivery_attempts_total",
		Help: "Notification delivery attempts by method and status.",
	}, []string{"method", "status"})

	// DeliveryDuration observes how long a single delivery attempt took.
	DeliveryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notification_delivery_duration_seconds",
		Help:    "Duration of notification delivery attempts.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	// OwnerEscalations counts owner deliveries synthesized after failures.
	OwnerEscalations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notification_owner_escalations_total",
		Help: "Owner deliveries created because other deliveries failed.",
	})

	// EnqueueFailures counts notifications whose delivery task could not be queued.
	EnqueueFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notification_enqueue_failures_total",
		Help: "Notifications whose delivery processing could not be queued.",
	})
)
