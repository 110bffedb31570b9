package workorder

import (
	"testing"

	"workorder-service/internal/model"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from, to model.WorkOrderStatus
	}{
		{model.WorkOrderPending, model.WorkOrderInProgress},
		{model.WorkOrderPending, model.WorkOrderCancelled},
		{model.WorkOrderInProgress, model.WorkOrderDelivered},
		{model.WorkOrderDelivered, model.WorkOrderInRevision},
		{model.WorkOrderDelivered, model.WorkOrderInProgress},
		{model.WorkOrderDelivered, model.WorkOrderCompleted},
		{model.WorkOrderInRevision, model.WorkOrderDelivered},
		{model.WorkOrderInRevision, model.WorkOrderInProgress},
		{model.WorkOrderInProgress, model.WorkOrderDisputed},
		{model.WorkOrderDisputed, model.WorkOrderCompleted},
		{model.WorkOrderDisputed, model.WorkOrderCancelled},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from, to model.WorkOrderStatus
	}{
		{model.WorkOrderPending, model.WorkOrderDelivered},
		{model.WorkOrderPending, model.WorkOrderCompleted},
		{model.WorkOrderInProgress, model.WorkOrderCompleted},
		{model.WorkOrderCompleted, model.WorkOrderInProgress},
		{model.WorkOrderCancelled, model.WorkOrderPending},
		{model.WorkOrderDisputed, model.WorkOrderInProgress},
		{model.WorkOrderCompleted, model.WorkOrderCancelled},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

// Every status is either terminal or has at least one exit, and the map covers
// the whole status set.
func TestTransitionTableCoversAllStatuses(t *testing.T) {
	for _, s := range model.WorkOrderStatuses {
		next, ok := validTransitions[s]
		if !ok {
			t.Errorf("status %s missing from transition table", s)
			continue
		}
		for _, to := range next {
			if _, ok := validTransitions[to]; !ok {
				t.Errorf("%s -> %s targets a status missing from the table", s, to)
			}
		}
	}
	if len(validTransitions) != len(model.WorkOrderStatuses) {
		t.Errorf("transition table has %d entries, statuses %d", len(validTransitions), len(model.WorkOrderStatuses))
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range model.WorkOrderStatuses {
		want := s == model.WorkOrderCompleted || s == model.WorkOrderCancelled
		if got := IsTerminal(s); got != want {
			t.Errorf("IsTerminal(%s) = %v, want %v", s, got, want)
		}
	}
}
