package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Fan-out metrics
	FanoutNotificationsCreated prometheus.Counter
	FanoutNotificationsFailed  prometheus.Counter
	FanoutLatency              prometheus.Histogram
	FanoutRecipients           prometheus.Histogram

	// Read-state metrics
	ReadStateTransitions *prometheus.CounterVec

	// Store metrics
	StoreOperations *prometheus.CounterVec
	StoreLatency    *prometheus.HistogramVec

	// Dispatch metrics
	BrokerPublishes *prometheus.CounterVec
	EmailCopies     *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		FanoutNotificationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_notifications_created_total",
			Help:      "Total number of notifications created by fan-out",
		}),
		FanoutNotificationsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_notifications_failed_total",
			Help:      "Total number of per-recipient fan-out writes that failed",
		}),
		FanoutLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fanout_duration_seconds",
			Help:      "Time spent fanning a notification out to all recipients",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		FanoutRecipients: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fanout_recipients",
			Help:      "Recipient set size per fan-out call",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}),
		ReadStateTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "read_state_transitions_total",
			Help:      "Total number of unread-to-read transitions",
		}, []string{"operation"}),
		StoreOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Total number of notification store operations",
		}, []string{"operation", "status"}),
		StoreLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Duration of notification store operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		BrokerPublishes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broker_publishes_total",
			Help:      "Total number of notification events published to the broker",
		}, []string{"status"}),
		EmailCopies: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_copies_total",
			Help:      "Total number of best-effort email copies attempted",
		}, []string{"status"}),
	}
}
