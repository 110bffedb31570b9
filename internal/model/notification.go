package model

import "time"

// Notification is a user-facing alert derived from a lifecycle event by the
// worker. Creation is fire-and-forget from the lifecycle service's view.
type Notification struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	EventType   string    `json:"event_type"`
	WorkOrderID int64     `json:"work_order_id"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}
