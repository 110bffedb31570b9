package model

import "time"

type DeliveryStatus string

const (
	DeliveryPendingReview     DeliveryStatus = "PENDING_REVIEW"
	DeliveryApproved          DeliveryStatus = "APPROVED"
	DeliveryRevisionRequested DeliveryStatus = "REVISION_REQUESTED"
)

var DeliveryStatuses = []DeliveryStatus{
	DeliveryPendingReview,
	DeliveryApproved,
	DeliveryRevisionRequested,
}

// MaxDeliveryMessageLen bounds the submission message.
const MaxDeliveryMessageLen = 5000

// MaxDeliveryAttachments bounds the attachment URL list.
const MaxDeliveryAttachments = 10

// Delivery is a creative's submission of work against a work order, optionally
// tied to one milestone of the same work order. Each delivery is reviewed
// exactly once: it moves to APPROVED or REVISION_REQUESTED and stays there.
type Delivery struct {
	ID           int64          `json:"id"`
	WorkOrderID  int64          `json:"work_order_id"`
	MilestoneID  *int64         `json:"milestone_id,omitempty"`
	Message      string         `json:"message"`
	Attachments  []string       `json:"attachments,omitempty"`
	Status       DeliveryStatus `json:"status"`
	RevisionNote string         `json:"revision_note,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (s DeliveryStatus) Display() StatusDisplay {
	switch s {
	case DeliveryPendingReview:
		return StatusDisplay{Label: "Pending review", Tone: "warning"}
	case DeliveryApproved:
		return StatusDisplay{Label: "Approved", Tone: "success"}
	case DeliveryRevisionRequested:
		return StatusDisplay{Label: "Revision requested", Tone: "danger"}
	}
	panic("unhandled delivery status: " + string(s))
}
