package model

import "time"

type EscrowStatus string

const (
	EscrowPending           EscrowStatus = "PENDING"
	EscrowFunded            EscrowStatus = "FUNDED"
	EscrowPartiallyReleased EscrowStatus = "PARTIALLY_RELEASED"
	EscrowReleased          EscrowStatus = "RELEASED"
	EscrowRefunded          EscrowStatus = "REFUNDED"
)

var EscrowStatuses = []EscrowStatus{
	EscrowPending,
	EscrowFunded,
	EscrowPartiallyReleased,
	EscrowReleased,
	EscrowRefunded,
}

// Escrow is the funds ledger attached 1:1 to a work order. Amounts are integer
// cents. The ledger invariant 0 <= released <= funded <= total must hold after
// every mutation, including rejected ones.
type Escrow struct {
	ID                  int64        `json:"id"`
	WorkOrderID         int64        `json:"work_order_id"`
	TotalAmountCents    int64        `json:"total_amount_cents"`
	FundedAmountCents   int64        `json:"funded_amount_cents"`
	ReleasedAmountCents int64        `json:"released_amount_cents"`
	Status              EscrowStatus `json:"status"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// RemainingCents is the funded amount not yet released, i.e. what a
// cancellation refunds.
func (e *Escrow) RemainingCents() int64 {
	return e.FundedAmountCents - e.ReleasedAmountCents
}

func (s EscrowStatus) Display() StatusDisplay {
	switch s {
	case EscrowPending:
		return StatusDisplay{Label: "Awaiting funding", Tone: "neutral"}
	case EscrowFunded:
		return StatusDisplay{Label: "Funded", Tone: "info"}
	case EscrowPartiallyReleased:
		return StatusDisplay{Label: "Partially released", Tone: "warning"}
	case EscrowReleased:
		return StatusDisplay{Label: "Released", Tone: "success"}
	case EscrowRefunded:
		return StatusDisplay{Label: "Refunded", Tone: "danger"}
	}
	panic("unhandled escrow status: " + string(s))
}
