package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce             sync.Once
	feedFetchesTotal         *prometheus.CounterVec
	realtimeEventsTotal      *prometheus.CounterVec
	realtimeSubscribersGauge prometheus.Gauge
	optimisticRollbacksTotal prometheus.Counter
	notificationsTotal       *prometheus.CounterVec
	uploadsTotal             *prometheus.CounterVec
	uploadRejectedTotal      *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the sync layer.
func RegisterMetrics() {
	registerOnce.Do(func() {
		feedFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feconecta_feed_fetches_total",
			Help: "Total number of feed page fetches issued.",
		}, []string{"kind"})

		realtimeEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feconecta_realtime_events_total",
			Help: "Realtime change events published, by table and type.",
		}, []string{"table", "type"})

		realtimeSubscribersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feconecta_realtime_subscribers",
			Help: "Currently active realtime subscriptions.",
		})

		optimisticRollbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feconecta_optimistic_rollbacks_total",
			Help: "Optimistic UI updates rolled back after a remote failure.",
		})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feconecta_notifications_total",
			Help: "Notifications created, by type.",
		}, []string{"type"})

		uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feconecta_uploads_total",
			Help: "Media uploads accepted, by detected kind.",
		}, []string{"kind"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feconecta_uploads_rejected_total",
			Help: "Media uploads rejected, by reason.",
		}, []string{"reason"})

		prometheus.MustRegister(
			feedFetchesTotal,
			realtimeEventsTotal,
			realtimeSubscribersGauge,
			optimisticRollbacksTotal,
			notificationsTotal,
			uploadsTotal,
			uploadRejectedTotal,
		)
	})
}

// FeedFetches exposes the counter for feed page fetches.
func FeedFetches() *prometheus.CounterVec {
	RegisterMetrics()
	return feedFetchesTotal
}

// RealtimeEvents exposes the counter for published change events.
func RealtimeEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return realtimeEventsTotal
}

// RealtimeSubscribers exposes the gauge of active subscriptions.
func RealtimeSubscribers() prometheus.Gauge {
	RegisterMetrics()
	return realtimeSubscribersGauge
}

// OptimisticRollbacks exposes the counter for rolled-back optimistic updates.
func OptimisticRollbacks() prometheus.Counter {
	RegisterMetrics()
	return optimisticRollbacksTotal
}

// NotificationsCreated exposes the counter for created notifications.
func NotificationsCreated() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// Uploads exposes the counter for accepted media uploads.
func Uploads() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadsTotal
}

// UploadsRejected exposes the counter for rejected media uploads.
func UploadsRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}
