package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "workorder-service/contracts/mq"
	"workorder-service/internal/service/notification"
	"workorder-service/pkg/util"
)

// NotificationHandler turns lifecycle events into notification rows for the
// recipient. Handler errors requeue the message; duplicates are dropped via
// the Redis deduper keyed on the outbox event id.
type NotificationHandler struct {
	notifications *notification.Service
	deduper       *util.Deduper
	logger        *zap.Logger
}

func NewNotificationHandler(notifications *notification.Service, deduper *util.Deduper, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		deduper:       deduper,
		logger:        logger,
	}
}

// Handle is the MessageHandler bound to the worker's queues.
func (h *NotificationHandler) Handle(ctx context.Context, routingKey string, data json.RawMessage) error {
	var payload mqcontracts.WorkOrderEventPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		// Malformed payloads never become parseable; drop instead of requeueing.
		h.logger.Error("Dropping malformed event payload",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		return nil
	}
	if payload.RecipientID == 0 {
		h.logger.Warn("Event without recipient, skipping",
			zap.String("routing_key", routingKey),
			zap.Int64("work_order_id", payload.WorkOrderID),
		)
		return nil
	}

	if !h.deduper.AcquireOnce(ctx, "notifications", payload.EventID) {
		return nil
	}

	message := messageFor(routingKey, payload)
	if message == "" {
		h.logger.Warn("Unknown routing key, skipping",
			zap.String("routing_key", routingKey),
		)
		return nil
	}

	if _, err := h.notifications.Create(ctx, payload.RecipientID, routingKey, payload.WorkOrderID, message); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

func messageFor(routingKey string, p mqcontracts.WorkOrderEventPayload) string {
	switch routingKey {
	case mqcontracts.RoutingWorkOrderCreated:
		return fmt.Sprintf("Work order #%d has been created.", p.WorkOrderID)
	case mqcontracts.RoutingWorkOrderStarted:
		return fmt.Sprintf("Work on order #%d has started.", p.WorkOrderID)
	case mqcontracts.RoutingWorkOrderCancelled:
		return fmt.Sprintf("Work order #%d was cancelled.", p.WorkOrderID)
	case mqcontracts.RoutingWorkOrderCompleted:
		return fmt.Sprintf("Work order #%d is complete.", p.WorkOrderID)
	case mqcontracts.RoutingWorkOrderDisputed:
		return fmt.Sprintf("Work order #%d is in dispute: %s", p.WorkOrderID, p.Reason)
	case mqcontracts.RoutingWorkOrderResolved:
		return fmt.Sprintf("The dispute on work order #%d has been resolved.", p.WorkOrderID)
	case mqcontracts.RoutingDeliverySubmitted:
		return fmt.Sprintf("A delivery was submitted on work order #%d.", p.WorkOrderID)
	case mqcontracts.RoutingDeliveryApproved:
		return fmt.Sprintf("Your delivery on work order #%d was approved.", p.WorkOrderID)
	case mqcontracts.RoutingDeliveryRevision:
		return fmt.Sprintf("A revision was requested on work order #%d: %s", p.WorkOrderID, p.RevisionNote)
	case mqcontracts.RoutingEscrowFunded:
		return fmt.Sprintf("Escrow for work order #%d was funded (%s).", p.WorkOrderID, formatCents(p.AmountCents))
	case mqcontracts.RoutingEscrowReleased:
		return fmt.Sprintf("%s was released to you on work order #%d.", formatCents(p.AmountCents), p.WorkOrderID)
	case mqcontracts.RoutingEscrowRefunded:
		return fmt.Sprintf("%s was refunded on work order #%d.", formatCents(p.AmountCents), p.WorkOrderID)
	default:
		return ""
	}
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
