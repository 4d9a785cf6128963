package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransitionsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_order_transitions_total",
		Help: "Order status transitions applied, by target status.",
	}, []string{"status"})

	TransitionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_order_transitions_rejected_total",
		Help: "Order status transitions rejected, by reason.",
	}, []string{"reason"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_notifications_total",
		Help: "Notification delivery attempts, by sink and outcome.",
	}, []string{"sink", "outcome"})

	NotificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "delivery_notifications_dropped_total",
		Help: "Notifications dropped because the dispatch queue was full.",
	})

	SearchesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "delivery_searches_recorded_total",
		Help: "Search events recorded by the popularity aggregator.",
	})
)
