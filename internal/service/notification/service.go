package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"workorder-service/internal/model"
	"workorder-service/internal/repository"
	"workorder-service/pkg/metrics"
)

const defaultListLimit = 50

// Service writes and reads user notifications. The worker calls Create off
// consumed events; the API serves the list and read-marking endpoints.
type Service struct {
	notifications *repository.NotificationRepository
	logger        *zap.Logger
}

func NewService(notifications *repository.NotificationRepository, logger *zap.Logger) *Service {
	return &Service{notifications: notifications, logger: logger}
}

func (s *Service) Create(ctx context.Context, userID int64, eventType string, workOrderID int64, message string) (*model.Notification, error) {
	n := &model.Notification{
		UserID:      userID,
		EventType:   eventType,
		WorkOrderID: workOrderID,
		Message:     message,
	}
	id, err := s.notifications.Insert(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	n.ID = id

	metrics.IncrementNotificationCreated(eventType)
	s.logger.Debug("Notification created",
		zap.Int64("notification_id", id),
		zap.Int64("user_id", userID),
		zap.String("event_type", eventType),
	)
	return n, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]model.Notification, error) {
	return s.notifications.ListByUser(ctx, userID, defaultListLimit)
}

// MarkRead is scoped to the owner; marking someone else's notification is a
// silent no-op.
func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	return s.notifications.MarkAsRead(ctx, id, userID)
}
