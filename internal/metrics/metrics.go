package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ustagram_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ustagram_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// NotificationsDispatched counts dispatcher outcomes per notification type.
	// outcome is one of delivered, skipped, failed.
	NotificationsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ustagram_notifications_dispatched_total",
			Help: "Notifications handled by the dispatcher",
		},
		[]string{"type", "outcome"},
	)

	RealtimePublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ustagram_realtime_messages_published_total",
			Help: "Messages queued to realtime connections",
		},
		[]string{"event"},
	)

	// RealtimeDropped counts messages lost because a connection's send buffer was full
	RealtimeDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ustagram_realtime_messages_dropped_total",
			Help: "Messages dropped for slow realtime connections",
		},
		[]string{"event"},
	)

	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ustagram_realtime_active_connections",
			Help: "Currently registered realtime connections",
		},
	)
)

var registerOnce sync.Once

// Init registers every collector with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCount,
			RequestDuration,
			NotificationsDispatched,
			RealtimePublished,
			RealtimeDropped,
			ActiveConnections,
		)
	})
}
