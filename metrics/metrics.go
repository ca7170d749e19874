package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Calls into the OS media subsystem, labelled by operation
	// (session_manager, media_properties, playback_info, play, pause, ...)
	DownstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediabridge_downstream_duration_seconds",
			Help:    "Duration of media session calls that completed within budget",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DownstreamTimeouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediabridge_downstream_timeouts_total",
			Help: "Media session calls abandoned after exceeding their budget",
		},
		[]string{"operation"},
	)

	SessionChurn = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediabridge_session_churn_total",
			Help: "Times the active media session identity changed between polls",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediabridge_http_requests_total",
			Help: "HTTP requests handled, by route and status code",
		},
		[]string{"route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediabridge_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	PeerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediabridge_peer_requests_total",
			Help: "Requests to the peer bridge by result (success, failure, rejected)",
		},
		[]string{"result"},
	)

	PeerBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediabridge_peer_breaker_state",
			Help: "Peer circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	HistoryEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediabridge_history_updates_total",
			Help: "History recorder updates by kind (inserted, updated, unchanged, deactivated)",
		},
		[]string{"kind"},
	)
)
