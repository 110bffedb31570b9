package workorder

import (
	"workorder-service/internal/model"
)

// CompletionPolicy decides whether approving the given delivery completes the
// whole work order. The exact business rule was never pinned down by product,
// so it is injected rather than hard-coded; the default below is the
// conservative reading.
type CompletionPolicy func(agg *Aggregate, approved *model.Delivery) bool

// DefaultCompletionPolicy: a delivery tied to a milestone completes the order
// only once every milestone is approved; a free-standing delivery (fixed-price,
// no milestone breakdown) completes the order on approval.
func DefaultCompletionPolicy(agg *Aggregate, approved *model.Delivery) bool {
	if approved.MilestoneID == nil {
		return true
	}
	for _, m := range agg.Milestones {
		if m.Status != model.MilestoneApproved {
			return false
		}
	}
	return true
}

// ManualCompletionPolicy never completes on approval; completion stays an
// explicit client decision. Kept for tenants that want the strictest reading.
func ManualCompletionPolicy(agg *Aggregate, approved *model.Delivery) bool {
	return false
}
