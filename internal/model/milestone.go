package model

import "time"

type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "PENDING"
	MilestoneInProgress MilestoneStatus = "IN_PROGRESS"
	MilestoneDelivered  MilestoneStatus = "DELIVERED"
	MilestoneInRevision MilestoneStatus = "IN_REVISION"
	MilestoneApproved   MilestoneStatus = "APPROVED"
)

var MilestoneStatuses = []MilestoneStatus{
	MilestonePending,
	MilestoneInProgress,
	MilestoneDelivered,
	MilestoneInRevision,
	MilestoneApproved,
}

// Milestone is a priced, ordered phase of a work order. Position values are
// unique within a work order and define the sequence; status only advances
// through the delivery flow, never through milestone CRUD.
type Milestone struct {
	ID          int64           `json:"id"`
	WorkOrderID int64           `json:"work_order_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	AmountCents int64           `json:"amount_cents"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Status      MilestoneStatus `json:"status"`
	Position    int             `json:"position"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (s MilestoneStatus) Display() StatusDisplay {
	switch s {
	case MilestonePending:
		return StatusDisplay{Label: "Pending", Tone: "neutral"}
	case MilestoneInProgress:
		return StatusDisplay{Label: "In progress", Tone: "info"}
	case MilestoneDelivered:
		return StatusDisplay{Label: "Delivered", Tone: "warning"}
	case MilestoneInRevision:
		return StatusDisplay{Label: "In revision", Tone: "warning"}
	case MilestoneApproved:
		return StatusDisplay{Label: "Approved", Tone: "success"}
	}
	panic("unhandled milestone status: " + string(s))
}
