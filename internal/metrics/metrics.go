package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "relay"

var (
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_connections",
		Help:      "Number of open WebSocket connections, authenticated or not",
	})

	RegisteredUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "registered_users",
		Help:      "Number of users with a live registered connection",
	})

	HandshakeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "handshake_failures_total",
		Help:      "Rejected connection handshakes",
	}, []string{"reason"})

	SessionsReplaced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_replaced_total",
		Help:      "Connections displaced by a newer login of the same user",
	})

	MessagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_processed_total",
		Help:      "Chat messages handled by outcome",
	}, []string{"outcome"})

	SignalingEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signaling_events_total",
		Help:      "Call signaling events by kind and outcome",
	}, []string{"kind", "outcome"})

	LedgerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ledger_operation_duration_seconds",
		Help:      "Message ledger operation latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

// Message outcomes.
const (
	OutcomeDelivered = "delivered"
	OutcomeStored    = "stored"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
	OutcomeRead      = "read"
)

// Signaling outcomes.
const (
	OutcomeForwarded = "forwarded"
	OutcomeDropped   = "dropped"
	OutcomeInvalid   = "invalid"
)
