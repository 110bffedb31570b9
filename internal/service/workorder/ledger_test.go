package workorder

import (
	"testing"

	"workorder-service/internal/model"
)

func newEscrow(total int64) *model.Escrow {
	return &model.Escrow{TotalAmountCents: total, Status: model.EscrowPending}
}

func TestFundFull(t *testing.T) {
	e := newEscrow(100_00)
	if err := fundFull(e); err != nil {
		t.Fatalf("fundFull: %v", err)
	}
	if e.FundedAmountCents != 100_00 || e.Status != model.EscrowFunded {
		t.Errorf("escrow = %+v", e)
	}

	if err := fundFull(e); KindOf(err) != KindInvalidState {
		t.Errorf("double fund: expected invalid_state, got %v", err)
	}
}

func TestRelease(t *testing.T) {
	e := newEscrow(100_00)

	if err := release(e, 10_00); KindOf(err) != KindInvalidState {
		t.Errorf("release before funding: expected invalid_state, got %v", err)
	}

	if err := fundFull(e); err != nil {
		t.Fatal(err)
	}

	if err := release(e, -1); KindOf(err) != KindValidation {
		t.Errorf("negative release: expected validation, got %v", err)
	}
	if err := release(e, 150_00); KindOf(err) != KindInvalidState {
		t.Errorf("over-release: expected invalid_state, got %v", err)
	}
	if e.ReleasedAmountCents != 0 {
		t.Errorf("rejected release mutated escrow: released = %d", e.ReleasedAmountCents)
	}

	if err := release(e, 40_00); err != nil {
		t.Fatalf("release: %v", err)
	}
	if e.Status != model.EscrowPartiallyReleased {
		t.Errorf("status = %s, want PARTIALLY_RELEASED", e.Status)
	}
	if got := e.RemainingCents(); got != 60_00 {
		t.Errorf("remaining = %d, want 6000", got)
	}

	// Releasing past the remainder is rejected even from PARTIALLY_RELEASED.
	if err := release(e, 60_01); KindOf(err) != KindInvalidState {
		t.Errorf("release past remainder: expected invalid_state, got %v", err)
	}

	if err := release(e, 60_00); err != nil {
		t.Fatalf("final release: %v", err)
	}
	if e.Status != model.EscrowReleased {
		t.Errorf("status = %s, want RELEASED", e.Status)
	}
	if err := release(e, 1); KindOf(err) != KindInvalidState {
		t.Errorf("release after full release: expected invalid_state, got %v", err)
	}
}

func TestReleaseRemainder(t *testing.T) {
	e := newEscrow(100_00)
	if err := fundFull(e); err != nil {
		t.Fatal(err)
	}
	if err := release(e, 25_00); err != nil {
		t.Fatal(err)
	}

	released, err := releaseRemainder(e)
	if err != nil {
		t.Fatalf("releaseRemainder: %v", err)
	}
	if released != 75_00 {
		t.Errorf("released = %d, want 7500", released)
	}
	if e.Status != model.EscrowReleased {
		t.Errorf("status = %s, want RELEASED", e.Status)
	}
}

func TestRefund(t *testing.T) {
	t.Run("pending is a no-op", func(t *testing.T) {
		e := newEscrow(100_00)
		refunded, err := refund(e)
		if err != nil {
			t.Fatalf("refund: %v", err)
		}
		if refunded != 0 || e.Status != model.EscrowPending {
			t.Errorf("refunded = %d, status = %s", refunded, e.Status)
		}
	})

	t.Run("funded refunds everything", func(t *testing.T) {
		e := newEscrow(100_00)
		if err := fundFull(e); err != nil {
			t.Fatal(err)
		}
		refunded, err := refund(e)
		if err != nil {
			t.Fatalf("refund: %v", err)
		}
		if refunded != 100_00 {
			t.Errorf("refunded = %d, want 10000", refunded)
		}
		if e.Status != model.EscrowRefunded {
			t.Errorf("status = %s, want REFUNDED", e.Status)
		}
		if err := CheckLedgerInvariant(e); err != nil {
			t.Errorf("invariant: %v", err)
		}
	})

	t.Run("partial release keeps released funds", func(t *testing.T) {
		e := newEscrow(100_00)
		if err := fundFull(e); err != nil {
			t.Fatal(err)
		}
		if err := release(e, 30_00); err != nil {
			t.Fatal(err)
		}
		refunded, err := refund(e)
		if err != nil {
			t.Fatalf("refund: %v", err)
		}
		if refunded != 70_00 {
			t.Errorf("refunded = %d, want 7000", refunded)
		}
		if e.ReleasedAmountCents != 30_00 || e.FundedAmountCents != 30_00 {
			t.Errorf("ledger after refund: released %d funded %d", e.ReleasedAmountCents, e.FundedAmountCents)
		}
	})

	t.Run("fully released is a no-op", func(t *testing.T) {
		e := newEscrow(100_00)
		if err := fundFull(e); err != nil {
			t.Fatal(err)
		}
		if _, err := releaseRemainder(e); err != nil {
			t.Fatal(err)
		}
		refunded, err := refund(e)
		if err != nil {
			t.Fatalf("refund: %v", err)
		}
		if refunded != 0 || e.Status != model.EscrowReleased {
			t.Errorf("refunded = %d, status = %s", refunded, e.Status)
		}
	})

	t.Run("double refund rejected", func(t *testing.T) {
		e := newEscrow(100_00)
		if err := fundFull(e); err != nil {
			t.Fatal(err)
		}
		if _, err := refund(e); err != nil {
			t.Fatal(err)
		}
		if _, err := refund(e); KindOf(err) != KindInvalidState {
			t.Errorf("second refund: expected invalid_state, got %v", err)
		}
	})
}

func TestCheckLedgerInvariant(t *testing.T) {
	cases := []struct {
		name    string
		escrow  model.Escrow
		wantErr bool
	}{
		{"zero", model.Escrow{}, false},
		{"balanced", model.Escrow{TotalAmountCents: 100, FundedAmountCents: 100, ReleasedAmountCents: 50}, false},
		{"negative released", model.Escrow{ReleasedAmountCents: -1}, true},
		{"released over funded", model.Escrow{TotalAmountCents: 100, FundedAmountCents: 50, ReleasedAmountCents: 60}, true},
		{"funded over total", model.Escrow{TotalAmountCents: 100, FundedAmountCents: 120}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckLedgerInvariant(&tc.escrow)
			if (err != nil) != tc.wantErr {
				t.Errorf("err = %v, wantErr = %v", err, tc.wantErr)
			}
		})
	}
}
