package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Database query latency (seconds)
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	// MQ consumption latency (milliseconds)
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// Work-order transition counter
	WorkOrderTransitionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workorder_transition_count",
			Help: "Total number of committed work order status transitions",
		},
		[]string{"from", "to"},
	)

	// Rejected lifecycle commands, by error kind
	CommandRejectedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workorder_command_rejected_count",
			Help: "Total number of rejected lifecycle commands",
		},
		[]string{"command", "kind"}, // kind: unauthorized, invalid_state, validation, not_found
	)

	// Escrow cents moved through the ledger
	EscrowMovementCents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escrow_movement_cents_total",
			Help: "Total escrow cents moved, by movement type",
		},
		[]string{"movement"}, // movement: funded, released, refunded
	)

	// Notifications written by the worker
	NotificationCreatedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_created_count",
			Help: "Total number of notifications created",
		},
		[]string{"event_type"},
	)

	// Outbox dispatch outcomes
	OutboxDispatchCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_dispatch_count",
			Help: "Total number of outbox events dispatched, by outcome",
		},
		[]string{"outcome"}, // outcome: sent, retried, failed
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

func RecordTransition(from, to string) {
	WorkOrderTransitionCount.WithLabelValues(from, to).Inc()
}

func RecordCommandRejected(command, kind string) {
	CommandRejectedCount.WithLabelValues(command, kind).Inc()
}

func RecordEscrowMovement(movement string, cents int64) {
	EscrowMovementCents.WithLabelValues(movement).Add(float64(cents))
}

func IncrementNotificationCreated(eventType string) {
	NotificationCreatedCount.WithLabelValues(eventType).Inc()
}

func IncrementOutboxDispatch(outcome string) {
	OutboxDispatchCount.WithLabelValues(outcome).Inc()
}
