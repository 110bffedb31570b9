package mq

import "time"

// Routing keys for lifecycle events on the ekko.events exchange. The worker
// binds "workorder.#" plus the delivery and escrow keys to build user-facing
// notifications.
const (
	RoutingWorkOrderCreated   = "workorder.created"
	RoutingWorkOrderStarted   = "workorder.started"
	RoutingWorkOrderCancelled = "workorder.cancelled"
	RoutingWorkOrderCompleted = "workorder.completed"
	RoutingWorkOrderDisputed  = "workorder.disputed"
	RoutingWorkOrderResolved  = "workorder.dispute_resolved"

	RoutingDeliverySubmitted = "delivery.submitted"
	RoutingDeliveryApproved  = "delivery.approved"
	RoutingDeliveryRevision  = "delivery.revision_requested"

	RoutingEscrowFunded   = "escrow.funded"
	RoutingEscrowReleased = "escrow.released"
	RoutingEscrowRefunded = "escrow.refunded"
)

// WorkOrderEventPayload is the envelope for every lifecycle event: who acted,
// who should be told, and which work order it concerns. EventID is filled in
// by the outbox dispatcher for consumer-side dedup.
type WorkOrderEventPayload struct {
	EventID     int64     `json:"event_id,omitempty"`
	WorkOrderID int64     `json:"work_order_id"`
	ActorID     int64     `json:"actor_id"`
	RecipientID int64     `json:"recipient_id"`
	OccurredAt  time.Time `json:"occurred_at"`

	// Optional detail, present depending on the routing key.
	DeliveryID   int64  `json:"delivery_id,omitempty"`
	MilestoneID  int64  `json:"milestone_id,omitempty"`
	AmountCents  int64  `json:"amount_cents,omitempty"`
	RevisionNote string `json:"revision_note,omitempty"`
	Reason       string `json:"reason,omitempty"`
}
