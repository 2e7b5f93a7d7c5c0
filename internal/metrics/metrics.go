// Package metrics holds the Prometheus instrumentation for the watch-party service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watch_party_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watch_party_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watch_party_api_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"method"},
	)

	// Domain
	PartiesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watch_parties_created_total",
			Help: "Total number of watch parties created",
		},
	)

	PartiesFinalized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watch_parties_finalized_total",
			Help: "Total number of watch parties finalized",
		},
	)

	PartiesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watch_parties_deleted_total",
			Help: "Total number of watch parties deleted",
		},
	)

	ParticipantsAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watch_party_participants_added_total",
			Help: "Total number of participants added after party creation",
		},
	)

	VotesCast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watch_party_votes_cast_total",
			Help: "Total number of availability votes recorded",
		},
		[]string{"available"},
	)

	// Side effects
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watch_party_events_published_total",
			Help: "Total number of party events handed to a publisher",
		},
		[]string{"sink", "result"},
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watch_party_emails_sent_total",
			Help: "Total number of notification emails attempted",
		},
		[]string{"template", "result"},
	)

	// WebSocket
	WSConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watch_party_websocket_connections_active",
			Help: "Current number of active live-update connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watch_party_websocket_messages_sent_total",
			Help: "Total number of live-update messages sent",
		},
	)
)

// RecordAPIRequest records one served request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordPublish records the outcome of handing an event to sink.
func RecordPublish(sink string, err error) {
	EventsPublished.WithLabelValues(sink, result(err)).Inc()
}

// RecordEmail records the outcome of sending one templated email.
func RecordEmail(template string, err error) {
	EmailsSent.WithLabelValues(template, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
