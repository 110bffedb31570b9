package workorder

import (
	"testing"

	"workorder-service/internal/model"
)

func TestDefaultCompletionPolicy(t *testing.T) {
	agg := newTestAggregate(t, 100_00)

	freeStanding := &model.Delivery{}
	if !DefaultCompletionPolicy(agg, freeStanding) {
		t.Error("free-standing delivery should complete the order")
	}

	m1 := addMilestone(t, agg, 11, 50_00, "a")
	m2 := addMilestone(t, agg, 12, 50_00, "b")

	tied := &model.Delivery{MilestoneID: &m1.ID}
	if DefaultCompletionPolicy(agg, tied) {
		t.Error("delivery must not complete while milestones are unapproved")
	}

	m1.Status = model.MilestoneApproved
	if DefaultCompletionPolicy(agg, tied) {
		t.Error("one approved of two is not completion")
	}

	m2.Status = model.MilestoneApproved
	if !DefaultCompletionPolicy(agg, tied) {
		t.Error("all milestones approved should complete the order")
	}
}

func TestManualCompletionPolicy(t *testing.T) {
	agg := newTestAggregate(t, 100_00)
	if ManualCompletionPolicy(agg, &model.Delivery{}) {
		t.Error("manual policy never completes on approval")
	}
}

// ApproveDelivery threads the injected policy through.
func TestApproveDeliveryWithManualPolicy(t *testing.T) {
	agg := newTestAggregate(t, 100_00)
	fundAndStart(t, agg)
	d := submit(t, agg, 1, nil)

	outcome, err := agg.ApproveDelivery(clientID, d.ID, ManualCompletionPolicy, testNow)
	if err != nil {
		t.Fatalf("ApproveDelivery: %v", err)
	}
	if outcome.Completed {
		t.Error("manual policy must not complete the order")
	}
	if agg.Order.Status != model.WorkOrderInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", agg.Order.Status)
	}
}
