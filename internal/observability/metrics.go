package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	requestsTotal      *prometheus.CounterVec
	latencySeconds     *prometheus.HistogramVec
	errorsTotal        *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	realtimeClients    prometheus.Gauge
	activityWrites     *prometheus.CounterVec
	uploadsRejected    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adminhub_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "adminhub_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adminhub_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adminhub_notifications_published_total",
			Help: "Notifications persisted and pushed, labelled by severity.",
		}, []string{"type"})

		realtimeClients = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adminhub_realtime_clients_active",
			Help: "Currently connected realtime notification clients.",
		})

		activityWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adminhub_activity_entries_total",
			Help: "Activity log entries written, labelled by action.",
		}, []string{"action"})

		uploadsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adminhub_uploads_rejected_total",
			Help: "Uploads rejected during validation, labelled by reason.",
		}, []string{"reason"})

		prometheus.MustRegister(
			requestsTotal,
			latencySeconds,
			errorsTotal,
			notificationsTotal,
			realtimeClients,
			activityWrites,
			uploadsRejected,
		)
	})
}

// Requests exposes the counter for served requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the request latency histogram.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// NotificationsPublished exposes the notification publish counter.
func NotificationsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// RealtimeClients exposes the connected realtime client gauge.
func RealtimeClients() prometheus.Gauge {
	RegisterMetrics()
	return realtimeClients
}

// ActivityEntries exposes the activity write counter.
func ActivityEntries() *prometheus.CounterVec {
	RegisterMetrics()
	return activityWrites
}

// UploadsRejected exposes the rejected upload counter.
func UploadsRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadsRejected
}
