package model

import "testing"

// Every declared status must have a display descriptor; an unknown status
// panics instead of falling back to something misleading.
func TestWorkOrderStatusDisplay(t *testing.T) {
	for _, s := range WorkOrderStatuses {
		d := s.Display()
		if d.Label == "" || d.Tone == "" {
			t.Errorf("Display(%s) = %+v, incomplete descriptor", s, d)
		}
	}
}

func TestWorkOrderStatusDisplayPanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Display on an unknown status should panic")
		}
	}()
	WorkOrderStatus("BOGUS").Display()
}

func TestMilestoneStatusDisplay(t *testing.T) {
	for _, s := range MilestoneStatuses {
		d := s.Display()
		if d.Label == "" || d.Tone == "" {
			t.Errorf("Display(%s) = %+v, incomplete descriptor", s, d)
		}
	}
}

func TestDeliveryStatusDisplay(t *testing.T) {
	for _, s := range DeliveryStatuses {
		d := s.Display()
		if d.Label == "" || d.Tone == "" {
			t.Errorf("Display(%s) = %+v, incomplete descriptor", s, d)
		}
	}
}

func TestEscrowRemainingCents(t *testing.T) {
	e := Escrow{FundedAmountCents: 100_00, ReleasedAmountCents: 35_00}
	if got := e.RemainingCents(); got != 65_00 {
		t.Errorf("RemainingCents = %d, want 6500", got)
	}
}
