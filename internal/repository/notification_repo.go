package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"workorder-service/internal/model"
)

type NotificationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewNotificationRepository(db *pgxpool.Pool, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *model.Notification) (int64, error) {
	defer observe("insert", "notifications")()
	r.logger.Debug("Inserting notification",
		zap.Int64("user_id", n.UserID),
		zap.String("event_type", n.EventType),
		zap.Int64("work_order_id", n.WorkOrderID),
	)

	query := `
        INSERT INTO notifications (user_id, event_type, work_order_id, message)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	var id int64
	err := r.db.QueryRow(ctx, query, n.UserID, n.EventType, n.WorkOrderID, n.Message).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert notification", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Notification inserted successfully",
		zap.Int64("id", id),
		zap.Int64("user_id", n.UserID),
	)
	return id, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Notification, error) {
	defer observe("select", "notifications")()
	query := `
        SELECT id, user_id, event_type, work_order_id, message, is_read, created_at
        FROM notifications
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		r.logger.Error("Failed to list notifications", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.EventType,
			&n.WorkOrderID,
			&n.Message,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan notification", zap.Error(err))
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkAsRead is scoped to the owning user so one user cannot mark another's
// notifications.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, userID int64) error {
	defer observe("update", "notifications")()
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`
	_, err := r.db.Exec(ctx, query, id, userID)
	return err
}
