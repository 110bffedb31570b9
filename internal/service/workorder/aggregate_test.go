package workorder

import (
	"testing"
	"time"

	"workorder-service/internal/model"
)

const (
	clientID   = int64(1)
	creativeID = int64(2)
	strangerID = int64(99)
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestAggregate(t *testing.T, rateCents int64) *Aggregate {
	t.Helper()
	project := &model.Project{
		ID:         10,
		ClientID:   clientID,
		BudgetType: model.BudgetFixed,
	}
	wo, esc, err := NewWorkOrder(project, creativeID, rateCents, testNow)
	if err != nil {
		t.Fatalf("NewWorkOrder: %v", err)
	}
	wo.ID = 100
	esc.ID = 200
	esc.WorkOrderID = wo.ID
	return &Aggregate{Order: wo, Escrow: esc}
}

func fundAndStart(t *testing.T, agg *Aggregate) {
	t.Helper()
	if err := agg.FundEscrow(clientID, testNow); err != nil {
		t.Fatalf("FundEscrow: %v", err)
	}
	if err := agg.Start(creativeID, testNow); err != nil {
		t.Fatalf("Start: %v", err)
	}
}

func addMilestone(t *testing.T, agg *Aggregate, id, amountCents int64, title string) *model.Milestone {
	t.Helper()
	m, err := agg.AddMilestone(clientID, title, "", amountCents, nil, testNow)
	if err != nil {
		t.Fatalf("AddMilestone(%s): %v", title, err)
	}
	m.ID = id
	return m
}

func submit(t *testing.T, agg *Aggregate, deliveryID int64, milestoneID *int64) *model.Delivery {
	t.Helper()
	d, err := agg.SubmitDelivery(creativeID, "work attached", nil, milestoneID, testNow)
	if err != nil {
		t.Fatalf("SubmitDelivery: %v", err)
	}
	d.ID = deliveryID
	return d
}

func wantKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s: %v", kind, got, err)
	}
}

func TestNewWorkOrder(t *testing.T) {
	project := &model.Project{ID: 10, ClientID: clientID, BudgetType: model.BudgetFixed}

	wo, esc, err := NewWorkOrder(project, creativeID, 50_00, testNow)
	if err != nil {
		t.Fatalf("NewWorkOrder: %v", err)
	}
	if wo.Status != model.WorkOrderPending {
		t.Errorf("status = %s, want PENDING", wo.Status)
	}
	if esc.Status != model.EscrowPending {
		t.Errorf("escrow status = %s, want PENDING", esc.Status)
	}
	if esc.TotalAmountCents != 50_00 {
		t.Errorf("escrow total = %d, want 5000", esc.TotalAmountCents)
	}

	if _, _, err := NewWorkOrder(project, clientID, 50_00, testNow); KindOf(err) != KindValidation {
		t.Errorf("same client and creative: expected validation error, got %v", err)
	}
	if _, _, err := NewWorkOrder(project, creativeID, -1, testNow); KindOf(err) != KindValidation {
		t.Errorf("negative rate: expected validation error, got %v", err)
	}
}

// Fixed-price happy path: fund, start, submit, approve. One delivery with no
// milestone breakdown completes the order and releases the whole escrow.
func TestFixedPriceLifecycle(t *testing.T) {
	agg := newTestAggregate(t, 120_00)
	fundAndStart(t, agg)

	if agg.Order.Status != model.WorkOrderInProgress {
		t.Fatalf("status = %s, want IN_PROGRESS", agg.Order.Status)
	}
	if agg.Order.StartedAt == nil {
		t.Fatal("StartedAt not stamped")
	}

	d := submit(t, agg, 1, nil)
	if agg.Order.Status != model.WorkOrderDelivered {
		t.Fatalf("status after submit = %s, want DELIVERED", agg.Order.Status)
	}

	outcome, err := agg.ApproveDelivery(clientID, d.ID, nil, testNow)
	if err != nil {
		t.Fatalf("ApproveDelivery: %v", err)
	}
	if !outcome.Completed {
		t.Error("approval of a free-standing delivery should complete the order")
	}
	if outcome.ReleasedCents != 120_00 {
		t.Errorf("released = %d, want 12000", outcome.ReleasedCents)
	}
	if agg.Order.Status != model.WorkOrderCompleted {
		t.Errorf("status = %s, want COMPLETED", agg.Order.Status)
	}
	if agg.Order.CompletedAt == nil {
		t.Error("CompletedAt not stamped")
	}
	if agg.Escrow.Status != model.EscrowReleased {
		t.Errorf("escrow status = %s, want RELEASED", agg.Escrow.Status)
	}
	if err := CheckLedgerInvariant(agg.Escrow); err != nil {
		t.Errorf("ledger invariant: %v", err)
	}
}

// Milestone path: approving a non-final milestone releases its share and hands
// the order back to the creative; the final approval completes everything.
func TestMilestoneLifecycle(t *testing.T) {
	agg := newTestAggregate(t, 100_00)
	m1 := addMilestone(t, agg, 11, 60_00, "draft")
	m2 := addMilestone(t, agg, 12, 40_00, "final")
	fundAndStart(t, agg)

	d1 := submit(t, agg, 1, &m1.ID)
	if m1.Status != model.MilestoneDelivered {
		t.Fatalf("m1 status = %s, want DELIVERED", m1.Status)
	}

	outcome, err := agg.ApproveDelivery(clientID, d1.ID, nil, testNow)
	if err != nil {
		t.Fatalf("approve m1: %v", err)
	}
	if outcome.Completed {
		t.Fatal("approving the first of two milestones must not complete the order")
	}
	if outcome.ReleasedCents != 60_00 {
		t.Errorf("released = %d, want 6000", outcome.ReleasedCents)
	}
	if agg.Order.Status != model.WorkOrderInProgress {
		t.Errorf("status = %s, want IN_PROGRESS for the next phase", agg.Order.Status)
	}
	if agg.Escrow.Status != model.EscrowPartiallyReleased {
		t.Errorf("escrow status = %s, want PARTIALLY_RELEASED", agg.Escrow.Status)
	}

	d2 := submit(t, agg, 2, &m2.ID)
	outcome, err = agg.ApproveDelivery(clientID, d2.ID, nil, testNow)
	if err != nil {
		t.Fatalf("approve m2: %v", err)
	}
	if !outcome.Completed {
		t.Error("approving the last milestone should complete the order")
	}
	if outcome.ReleasedCents != 40_00 {
		t.Errorf("released = %d, want 4000", outcome.ReleasedCents)
	}
	if agg.Order.Status != model.WorkOrderCompleted {
		t.Errorf("status = %s, want COMPLETED", agg.Order.Status)
	}
	if agg.Escrow.ReleasedAmountCents != 100_00 {
		t.Errorf("total released = %d, want 10000", agg.Escrow.ReleasedAmountCents)
	}
	if err := CheckLedgerInvariant(agg.Escrow); err != nil {
		t.Errorf("ledger invariant: %v", err)
	}
}

// Revision loop: reject with a note, resubmit, approve.
func TestRevisionLoop(t *testing.T) {
	agg := newTestAggregate(t, 80_00)
	fundAndStart(t, agg)

	d1 := submit(t, agg, 1, nil)

	if _, err := agg.RequestRevision(clientID, d1.ID, "   ", testNow); KindOf(err) != KindValidation {
		t.Errorf("blank note: expected validation error, got %v", err)
	}

	rejected, err := agg.RequestRevision(clientID, d1.ID, "wrong colors", testNow)
	if err != nil {
		t.Fatalf("RequestRevision: %v", err)
	}
	if rejected.Status != model.DeliveryRevisionRequested {
		t.Errorf("delivery status = %s, want REVISION_REQUESTED", rejected.Status)
	}
	if rejected.RevisionNote != "wrong colors" {
		t.Errorf("revision note = %q", rejected.RevisionNote)
	}
	if agg.Order.Status != model.WorkOrderInRevision {
		t.Fatalf("status = %s, want IN_REVISION", agg.Order.Status)
	}

	// Rejected deliveries cannot be approved or re-rejected.
	if _, err := agg.ApproveDelivery(clientID, d1.ID, nil, testNow); KindOf(err) != KindInvalidState {
		t.Errorf("approve rejected delivery: expected invalid_state, got %v", err)
	}
	if _, err := agg.RequestRevision(clientID, d1.ID, "again", testNow); KindOf(err) != KindInvalidState {
		t.Errorf("re-reject delivery: expected invalid_state, got %v", err)
	}

	d2 := submit(t, agg, 2, nil)
	if agg.Order.Status != model.WorkOrderDelivered {
		t.Fatalf("status after resubmit = %s, want DELIVERED", agg.Order.Status)
	}

	outcome, err := agg.ApproveDelivery(clientID, d2.ID, nil, testNow)
	if err != nil {
		t.Fatalf("approve resubmission: %v", err)
	}
	if !outcome.Completed {
		t.Error("approving the resubmission should complete the order")
	}
}

// Dispute freezes the order; only an admin resolution moves it.
func TestDispute(t *testing.T) {
	t.Run("refund", func(t *testing.T) {
		agg := newTestAggregate(t, 100_00)
		fundAndStart(t, agg)

		if err := agg.OpenDispute(strangerID, "bad", testNow); KindOf(err) != KindUnauthorized {
			t.Errorf("stranger dispute: expected unauthorized, got %v", err)
		}
		if err := agg.OpenDispute(clientID, "", testNow); KindOf(err) != KindValidation {
			t.Errorf("empty reason: expected validation, got %v", err)
		}
		if err := agg.OpenDispute(clientID, "not what we agreed", testNow); err != nil {
			t.Fatalf("OpenDispute: %v", err)
		}
		if agg.Order.Status != model.WorkOrderDisputed {
			t.Fatalf("status = %s, want DISPUTED", agg.Order.Status)
		}

		// Everything is frozen while disputed.
		if _, err := agg.Cancel(clientID, testNow); KindOf(err) != KindInvalidState {
			t.Errorf("cancel while disputed: expected invalid_state, got %v", err)
		}
		if _, err := agg.SubmitDelivery(creativeID, "late work", nil, nil, testNow); KindOf(err) != KindInvalidState {
			t.Errorf("submit while disputed: expected invalid_state, got %v", err)
		}
		if err := agg.OpenDispute(creativeID, "me too", testNow); KindOf(err) != KindInvalidState {
			t.Errorf("double dispute: expected invalid_state, got %v", err)
		}

		outcome, err := agg.ResolveDispute(ResolutionRefund, testNow)
		if err != nil {
			t.Fatalf("ResolveDispute: %v", err)
		}
		if outcome.RefundedCents != 100_00 {
			t.Errorf("refunded = %d, want 10000", outcome.RefundedCents)
		}
		if agg.Order.Status != model.WorkOrderCancelled {
			t.Errorf("status = %s, want CANCELLED", agg.Order.Status)
		}
		if agg.Escrow.Status != model.EscrowRefunded {
			t.Errorf("escrow status = %s, want REFUNDED", agg.Escrow.Status)
		}
	})

	t.Run("release", func(t *testing.T) {
		agg := newTestAggregate(t, 100_00)
		fundAndStart(t, agg)
		if err := agg.OpenDispute(creativeID, "client vanished", testNow); err != nil {
			t.Fatalf("OpenDispute: %v", err)
		}

		outcome, err := agg.ResolveDispute(ResolutionRelease, testNow)
		if err != nil {
			t.Fatalf("ResolveDispute: %v", err)
		}
		if !outcome.Completed {
			t.Error("RELEASE resolution should complete the order")
		}
		if outcome.ReleasedCents != 100_00 {
			t.Errorf("released = %d, want 10000", outcome.ReleasedCents)
		}
		if agg.Order.Status != model.WorkOrderCompleted {
			t.Errorf("status = %s, want COMPLETED", agg.Order.Status)
		}
	})

	t.Run("bad verdict", func(t *testing.T) {
		agg := newTestAggregate(t, 100_00)
		fundAndStart(t, agg)
		if err := agg.OpenDispute(clientID, "reason", testNow); err != nil {
			t.Fatalf("OpenDispute: %v", err)
		}
		if _, err := agg.ResolveDispute("SPLIT", testNow); KindOf(err) != KindValidation {
			t.Errorf("unknown resolution: expected validation, got %v", err)
		}
	})

	t.Run("not disputed", func(t *testing.T) {
		agg := newTestAggregate(t, 100_00)
		if _, err := agg.ResolveDispute(ResolutionRelease, testNow); KindOf(err) != KindInvalidState {
			t.Errorf("resolve without dispute: expected invalid_state, got %v", err)
		}
	})
}

func TestStartGuards(t *testing.T) {
	agg := newTestAggregate(t, 100_00)

	if err := agg.Start(creativeID, testNow); KindOf(err) != KindInvalidState {
		t.Errorf("start before funding: expected invalid_state, got %v", err)
	}
	if err := agg.FundEscrow(creativeID, testNow); KindOf(err) != KindUnauthorized {
		t.Errorf("creative funding escrow: expected unauthorized, got %v", err)
	}
	if err := agg.FundEscrow(clientID, testNow); err != nil {
		t.Fatalf("FundEscrow: %v", err)
	}
	if err := agg.FundEscrow(clientID, testNow); KindOf(err) != KindInvalidState {
		t.Errorf("double funding: expected invalid_state, got %v", err)
	}
	if err := agg.Start(clientID, testNow); KindOf(err) != KindUnauthorized {
		t.Errorf("client starting: expected unauthorized, got %v", err)
	}
	if err := agg.Start(creativeID, testNow); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := agg.Start(creativeID, testNow); KindOf(err) != KindInvalidState {
		t.Errorf("double start: expected invalid_state, got %v", err)
	}
}

// A cancellation refunds exactly once; the second cancel is rejected.
func TestCancelRefundsOnce(t *testing.T) {
	agg := newTestAggregate(t, 100_00)
	fundAndStart(t, agg)

	if _, err := agg.Cancel(strangerID, testNow); KindOf(err) != KindUnauthorized {
		t.Errorf("stranger cancel: expected unauthorized, got %v", err)
	}

	refunded, err := agg.Cancel(clientID, testNow)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if refunded != 100_00 {
		t.Errorf("refunded = %d, want 10000", refunded)
	}
	if agg.Order.Status != model.WorkOrderCancelled {
		t.Errorf("status = %s, want CANCELLED", agg.Order.Status)
	}

	if _, err := agg.Cancel(clientID, testNow); KindOf(err) != KindInvalidState {
		t.Errorf("second cancel: expected invalid_state, got %v", err)
	}
	if agg.Escrow.Status != model.EscrowRefunded {
		t.Errorf("escrow status = %s, want REFUNDED", agg.Escrow.Status)
	}
}

// Cancelling before funding refunds nothing and leaves the escrow PENDING.
func TestCancelUnfunded(t *testing.T) {
	agg := newTestAggregate(t, 100_00)

	refunded, err := agg.Cancel(creativeID, testNow)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if refunded != 0 {
		t.Errorf("refunded = %d, want 0", refunded)
	}
	if agg.Escrow.Status != model.EscrowPending {
		t.Errorf("escrow status = %s, want PENDING", agg.Escrow.Status)
	}
}

// After a partial release, cancellation refunds only the remainder.
func TestCancelAfterPartialRelease(t *testing.T) {
	agg := newTestAggregate(t, 100_00)
	m1 := addMilestone(t, agg, 11, 30_00, "draft")
	addMilestone(t, agg, 12, 70_00, "final")
	fundAndStart(t, agg)

	d1 := submit(t, agg, 1, &m1.ID)
	if _, err := agg.ApproveDelivery(clientID, d1.ID, nil, testNow); err != nil {
		t.Fatalf("approve m1: %v", err)
	}

	refunded, err := agg.Cancel(clientID, testNow)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if refunded != 70_00 {
		t.Errorf("refunded = %d, want 7000", refunded)
	}
	if agg.Escrow.ReleasedAmountCents != 30_00 {
		t.Errorf("released stays at %d, want 3000", agg.Escrow.ReleasedAmountCents)
	}
	if err := CheckLedgerInvariant(agg.Escrow); err != nil {
		t.Errorf("ledger invariant: %v", err)
	}
}

func TestSubmitDeliveryValidation(t *testing.T) {
	agg := newTestAggregate(t, 100_00)
	fundAndStart(t, agg)

	if _, err := agg.SubmitDelivery(clientID, "msg", nil, nil, testNow); KindOf(err) != KindUnauthorized {
		t.Errorf("client submitting: expected unauthorized, got %v", err)
	}
	if _, err := agg.SubmitDelivery(creativeID, "  ", nil, nil, testNow); KindOf(err) != KindValidation {
		t.Errorf("blank message: expected validation, got %v", err)
	}

	long := make([]byte, model.MaxDeliveryMessageLen+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := agg.SubmitDelivery(creativeID, string(long), nil, nil, testNow); KindOf(err) != KindValidation {
		t.Errorf("oversized message: expected validation, got %v", err)
	}

	many := make([]string, model.MaxDeliveryAttachments+1)
	if _, err := agg.SubmitDelivery(creativeID, "msg", many, nil, testNow); KindOf(err) != KindValidation {
		t.Errorf("too many attachments: expected validation, got %v", err)
	}

	foreign := int64(777)
	if _, err := agg.SubmitDelivery(creativeID, "msg", nil, &foreign, testNow); KindOf(err) != KindNotFound {
		t.Errorf("foreign milestone: expected not_found, got %v", err)
	}
}

func TestSubmitAgainstApprovedMilestone(t *testing.T) {
	agg := newTestAggregate(t, 100_00)
	m1 := addMilestone(t, agg, 11, 40_00, "draft")
	addMilestone(t, agg, 12, 60_00, "final")
	fundAndStart(t, agg)

	d1 := submit(t, agg, 1, &m1.ID)
	if _, err := agg.ApproveDelivery(clientID, d1.ID, nil, testNow); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if _, err := agg.SubmitDelivery(creativeID, "again", nil, &m1.ID, testNow); KindOf(err) != KindInvalidState {
		t.Errorf("submit against approved milestone: expected invalid_state, got %v", err)
	}
}

func TestApproveDeliveryGuards(t *testing.T) {
	agg := newTestAggregate(t, 100_00)
	fundAndStart(t, agg)
	d := submit(t, agg, 1, nil)

	if _, err := agg.ApproveDelivery(creativeID, d.ID, nil, testNow); KindOf(err) != KindUnauthorized {
		t.Errorf("creative approving own work: expected unauthorized, got %v", err)
	}
	if _, err := agg.ApproveDelivery(clientID, 555, nil, testNow); KindOf(err) != KindNotFound {
		t.Errorf("unknown delivery: expected not_found, got %v", err)
	}

	if _, err := agg.ApproveDelivery(clientID, d.ID, nil, testNow); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := agg.ApproveDelivery(clientID, d.ID, nil, testNow); KindOf(err) != KindInvalidState {
		t.Errorf("double approve: expected invalid_state, got %v", err)
	}
}

func TestMilestoneCRUD(t *testing.T) {
	agg := newTestAggregate(t, 100_00)

	if _, err := agg.AddMilestone(strangerID, "x", "", 10_00, nil, testNow); KindOf(err) != KindUnauthorized {
		t.Errorf("stranger adding milestone: expected unauthorized, got %v", err)
	}
	if _, err := agg.AddMilestone(clientID, "  ", "", 10_00, nil, testNow); KindOf(err) != KindValidation {
		t.Errorf("blank title: expected validation, got %v", err)
	}
	if _, err := agg.AddMilestone(clientID, "x", "", -1, nil, testNow); KindOf(err) != KindValidation {
		t.Errorf("negative amount: expected validation, got %v", err)
	}

	m1 := addMilestone(t, agg, 11, 30_00, "first")
	m2 := addMilestone(t, agg, 12, 70_00, "second")
	if m1.Position != 1 || m2.Position != 2 {
		t.Errorf("positions = %d, %d; want 1, 2", m1.Position, m2.Position)
	}
	if got := agg.MilestoneTotalCents(); got != 100_00 {
		t.Errorf("milestone total = %d, want 10000", got)
	}

	if _, err := agg.UpdateMilestone(clientID, m1.ID, "renamed", "desc", 35_00, nil, testNow); err != nil {
		t.Fatalf("UpdateMilestone: %v", err)
	}
	if m1.Title != "renamed" || m1.AmountCents != 35_00 {
		t.Errorf("update not applied: %+v", m1)
	}

	if err := agg.RemoveMilestone(creativeID, m2.ID); err != nil {
		t.Fatalf("RemoveMilestone: %v", err)
	}
	if len(agg.Milestones) != 1 {
		t.Fatalf("milestones = %d, want 1", len(agg.Milestones))
	}

	// Milestones in the delivery flow are frozen.
	fundAndStart(t, agg)
	submit(t, agg, 1, &m1.ID)
	if _, err := agg.UpdateMilestone(clientID, m1.ID, "again", "", 10_00, nil, testNow); KindOf(err) != KindInvalidState {
		t.Errorf("editing delivered milestone: expected invalid_state, got %v", err)
	}
	if err := agg.RemoveMilestone(clientID, m1.ID); KindOf(err) != KindInvalidState {
		t.Errorf("removing delivered milestone: expected invalid_state, got %v", err)
	}
}

func TestReorderMilestones(t *testing.T) {
	agg := newTestAggregate(t, 100_00)
	m1 := addMilestone(t, agg, 11, 30_00, "a")
	m2 := addMilestone(t, agg, 12, 30_00, "b")
	m3 := addMilestone(t, agg, 13, 40_00, "c")

	cases := []struct {
		name string
		ids  []int64
		kind Kind
	}{
		{"too short", []int64{m1.ID, m2.ID}, KindValidation},
		{"duplicate", []int64{m1.ID, m1.ID, m2.ID}, KindValidation},
		{"foreign id", []int64{m1.ID, m2.ID, 999}, KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := agg.ReorderMilestones(clientID, tc.ids)
			wantKind(t, err, tc.kind)
			// Rejection leaves the old positions.
			if m1.Position != 1 || m2.Position != 2 || m3.Position != 3 {
				t.Errorf("positions mutated on rejected reorder: %d %d %d", m1.Position, m2.Position, m3.Position)
			}
		})
	}

	if err := agg.ReorderMilestones(creativeID, []int64{m3.ID, m1.ID, m2.ID}); err != nil {
		t.Fatalf("ReorderMilestones: %v", err)
	}
	if m3.Position != 1 || m1.Position != 2 || m2.Position != 3 {
		t.Errorf("positions = m3:%d m1:%d m2:%d; want 1 2 3", m3.Position, m1.Position, m2.Position)
	}
}

// Terminal orders reject everything that would mutate them.
func TestTerminalOrderFrozen(t *testing.T) {
	agg := newTestAggregate(t, 100_00)
	fundAndStart(t, agg)
	d := submit(t, agg, 1, nil)
	if _, err := agg.ApproveDelivery(clientID, d.ID, nil, testNow); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if _, err := agg.Cancel(clientID, testNow); KindOf(err) != KindInvalidState {
		t.Errorf("cancel completed order: expected invalid_state, got %v", err)
	}
	if err := agg.OpenDispute(clientID, "too late", testNow); KindOf(err) != KindInvalidState {
		t.Errorf("dispute completed order: expected invalid_state, got %v", err)
	}
	if _, err := agg.AddMilestone(clientID, "late", "", 10_00, nil, testNow); KindOf(err) != KindInvalidState {
		t.Errorf("add milestone to completed order: expected invalid_state, got %v", err)
	}
	if _, err := agg.SubmitDelivery(creativeID, "more", nil, nil, testNow); KindOf(err) != KindInvalidState {
		t.Errorf("submit to completed order: expected invalid_state, got %v", err)
	}
}
