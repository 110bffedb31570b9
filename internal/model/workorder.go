package model

import "time"

// WorkOrderStatus is the closed set of lifecycle states for a work order.
type WorkOrderStatus string

const (
	WorkOrderPending    WorkOrderStatus = "PENDING"
	WorkOrderAccepted   WorkOrderStatus = "ACCEPTED"
	WorkOrderInProgress WorkOrderStatus = "IN_PROGRESS"
	WorkOrderDelivered  WorkOrderStatus = "DELIVERED"
	WorkOrderInRevision WorkOrderStatus = "IN_REVISION"
	WorkOrderCompleted  WorkOrderStatus = "COMPLETED"
	WorkOrderCancelled  WorkOrderStatus = "CANCELLED"
	WorkOrderDisputed   WorkOrderStatus = "DISPUTED"
)

// WorkOrderStatuses lists every valid status, for validation and tests.
var WorkOrderStatuses = []WorkOrderStatus{
	WorkOrderPending,
	WorkOrderAccepted,
	WorkOrderInProgress,
	WorkOrderDelivered,
	WorkOrderInRevision,
	WorkOrderCompleted,
	WorkOrderCancelled,
	WorkOrderDisputed,
}

// BudgetType describes how the agreed rate is interpreted.
type BudgetType string

const (
	BudgetFixed     BudgetType = "FIXED"
	BudgetHourly    BudgetType = "HOURLY"
	BudgetMilestone BudgetType = "MILESTONE"
)

// WorkOrder is an accepted engagement between a client and a creative. It is
// the aggregate root: milestones, deliveries and the escrow ledger are scoped
// to it and never outlive it. Work orders are never deleted, only transitioned
// to CANCELLED.
type WorkOrder struct {
	ID              int64           `json:"id"`
	ClientID        int64           `json:"client_id"`
	CreativeID      int64           `json:"creative_id"`
	ProjectID       int64           `json:"project_id"`
	AgreedRateCents int64           `json:"agreed_rate_cents"`
	BudgetType      BudgetType      `json:"budget_type"`
	Status          WorkOrderStatus `json:"status"`
	Deadline        *time.Time      `json:"deadline,omitempty"`
	StartedAt       *time.Time      `json:"started_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// StatusDisplay is the presentation descriptor for one lifecycle state.
type StatusDisplay struct {
	Label string `json:"label"`
	Tone  string `json:"tone"` // neutral / info / warning / success / danger
}

// Display maps a status to its presentation descriptor. The switch is
// exhaustive over WorkOrderStatuses and panics on an unknown value instead of
// silently falling back, so an unhandled state fails loudly.
func (s WorkOrderStatus) Display() StatusDisplay {
	switch s {
	case WorkOrderPending:
		return StatusDisplay{Label: "Awaiting start", Tone: "neutral"}
	case WorkOrderAccepted:
		return StatusDisplay{Label: "Accepted", Tone: "info"}
	case WorkOrderInProgress:
		return StatusDisplay{Label: "In progress", Tone: "info"}
	case WorkOrderDelivered:
		return StatusDisplay{Label: "Delivered", Tone: "warning"}
	case WorkOrderInRevision:
		return StatusDisplay{Label: "In revision", Tone: "warning"}
	case WorkOrderCompleted:
		return StatusDisplay{Label: "Completed", Tone: "success"}
	case WorkOrderCancelled:
		return StatusDisplay{Label: "Cancelled", Tone: "danger"}
	case WorkOrderDisputed:
		return StatusDisplay{Label: "Disputed", Tone: "danger"}
	}
	panic("unhandled work order status: " + string(s))
}
