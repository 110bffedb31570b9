package workorder

import (
	"fmt"
	"strings"
	"time"

	"workorder-service/internal/model"
)

// Aggregate is one work order with everything scoped to it: milestones,
// deliveries and the escrow ledger. The four entities form a single
// consistency boundary; the service loads the aggregate under a row lock,
// applies exactly one command, and persists the result in the same
// transaction. Commands validate before they mutate, so a rejected command
// leaves the aggregate untouched.
type Aggregate struct {
	Order      *model.WorkOrder
	Milestones []*model.Milestone
	Deliveries []*model.Delivery
	Escrow     *model.Escrow
}

// NewWorkOrder builds a fresh work order and its PENDING escrow from an
// accepted project. This is the only creation path; a work order is created
// exactly once, when a direct request or a gig application is accepted.
func NewWorkOrder(project *model.Project, creativeID, rateCents int64, now time.Time) (*model.WorkOrder, *model.Escrow, error) {
	const op = "createWorkOrder"
	if creativeID == project.ClientID {
		return nil, nil, Validation(op, "client and creative must be distinct")
	}
	if rateCents < 0 {
		return nil, nil, Validation(op, "agreed rate must not be negative")
	}

	wo := &model.WorkOrder{
		ClientID:        project.ClientID,
		CreativeID:      creativeID,
		ProjectID:       project.ID,
		AgreedRateCents: rateCents,
		BudgetType:      project.BudgetType,
		Status:          model.WorkOrderPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	esc := &model.Escrow{
		TotalAmountCents: rateCents,
		Status:           model.EscrowPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return wo, esc, nil
}

func (a *Aggregate) isClient(actorID int64) bool {
	return actorID == a.Order.ClientID
}

func (a *Aggregate) isCreative(actorID int64) bool {
	return actorID == a.Order.CreativeID
}

func (a *Aggregate) isParty(actorID int64) bool {
	return a.isClient(actorID) || a.isCreative(actorID)
}

func (a *Aggregate) findMilestone(id int64) *model.Milestone {
	for _, m := range a.Milestones {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (a *Aggregate) findDelivery(id int64) *model.Delivery {
	for _, d := range a.Deliveries {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// transition moves the order to the next status or rejects the command.
func (a *Aggregate) transition(op string, to model.WorkOrderStatus, now time.Time) error {
	from := a.Order.Status
	if !CanTransition(from, to) {
		if IsTerminal(from) {
			return InvalidState(op, fmt.Sprintf("work order is %s and cannot change", from))
		}
		return InvalidState(op, fmt.Sprintf("cannot move work order from %s to %s", from, to))
	}
	a.Order.Status = to
	a.Order.UpdatedAt = now
	return nil
}

// MilestoneTotalCents is the derived contract total for MILESTONE-budget
// orders. Display value only; it is not cross-checked against the agreed rate.
func (a *Aggregate) MilestoneTotalCents() int64 {
	var total int64
	for _, m := range a.Milestones {
		total += m.AmountCents
	}
	return total
}

// Start moves a PENDING order into IN_PROGRESS. Only the creative may start,
// and only once the client has funded escrow in full.
func (a *Aggregate) Start(actorID int64, now time.Time) error {
	const op = "start"
	if !a.isCreative(actorID) {
		return Unauthorized(op, "only the creative may start the work order")
	}
	if a.Order.Status != model.WorkOrderPending {
		return InvalidState(op, fmt.Sprintf("work order is %s, expected %s", a.Order.Status, model.WorkOrderPending))
	}
	if a.Escrow.Status != model.EscrowFunded {
		return InvalidState(op, "escrow is not funded")
	}
	if err := a.transition(op, model.WorkOrderInProgress, now); err != nil {
		return err
	}
	started := now
	a.Order.StartedAt = &started
	return nil
}

// Cancel moves any non-terminal, non-disputed order to CANCELLED and refunds
// the unreleased escrow remainder. Either party may cancel. A second cancel is
// rejected with a state error, so a cancellation never refunds twice.
func (a *Aggregate) Cancel(actorID int64, now time.Time) (refundedCents int64, err error) {
	const op = "cancel"
	if !a.isParty(actorID) {
		return 0, Unauthorized(op, "only the client or the creative may cancel")
	}
	if IsTerminal(a.Order.Status) {
		return 0, InvalidState(op, fmt.Sprintf("work order is already %s", a.Order.Status))
	}
	if a.Order.Status == model.WorkOrderDisputed {
		return 0, InvalidState(op, "work order is disputed; an admin must resolve it")
	}

	refundedCents, err = refund(a.Escrow)
	if err != nil {
		return 0, err
	}
	if err := a.transition(op, model.WorkOrderCancelled, now); err != nil {
		return 0, err
	}
	a.Escrow.UpdatedAt = now
	return refundedCents, nil
}

// FundEscrow lets the client fund the full escrow total in one atomic step.
func (a *Aggregate) FundEscrow(actorID int64, now time.Time) error {
	const op = "fundEscrow"
	if !a.isClient(actorID) {
		return Unauthorized(op, "only the client may fund escrow")
	}
	if IsTerminal(a.Order.Status) || a.Order.Status == model.WorkOrderDisputed {
		return InvalidState(op, fmt.Sprintf("work order is %s", a.Order.Status))
	}
	if err := fundFull(a.Escrow); err != nil {
		return err
	}
	a.Escrow.UpdatedAt = now
	return nil
}

// SubmitDelivery records a creative's submission. Allowed while the order is
// IN_PROGRESS or IN_REVISION; either way the order surfaces as DELIVERED,
// waiting on review. A referenced milestone must belong to this work order and
// not already be approved.
func (a *Aggregate) SubmitDelivery(actorID int64, message string, attachments []string, milestoneID *int64, now time.Time) (*model.Delivery, error) {
	const op = "submitDelivery"
	if !a.isCreative(actorID) {
		return nil, Unauthorized(op, "only the creative may submit a delivery")
	}
	switch a.Order.Status {
	case model.WorkOrderInProgress, model.WorkOrderInRevision:
	default:
		return nil, InvalidState(op, fmt.Sprintf("work order is %s, deliveries need %s or %s",
			a.Order.Status, model.WorkOrderInProgress, model.WorkOrderInRevision))
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, Validation(op, "delivery message must not be empty")
	}
	if len(message) > model.MaxDeliveryMessageLen {
		return nil, Validation(op, fmt.Sprintf("delivery message exceeds %d characters", model.MaxDeliveryMessageLen))
	}
	if len(attachments) > model.MaxDeliveryAttachments {
		return nil, Validation(op, fmt.Sprintf("at most %d attachments allowed", model.MaxDeliveryAttachments))
	}

	var milestone *model.Milestone
	if milestoneID != nil {
		milestone = a.findMilestone(*milestoneID)
		if milestone == nil {
			return nil, NotFound(op, "milestone does not belong to this work order")
		}
		if milestone.Status == model.MilestoneApproved {
			return nil, InvalidState(op, "milestone is already approved")
		}
	}

	if err := a.transition(op, model.WorkOrderDelivered, now); err != nil {
		return nil, err
	}
	if milestone != nil {
		milestone.Status = model.MilestoneDelivered
		milestone.UpdatedAt = now
	}

	delivery := &model.Delivery{
		WorkOrderID: a.Order.ID,
		MilestoneID: milestoneID,
		Message:     message,
		Attachments: attachments,
		Status:      model.DeliveryPendingReview,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	a.Deliveries = append(a.Deliveries, delivery)
	return delivery, nil
}

// ApproveOutcome describes what an approval changed beyond the delivery row.
type ApproveOutcome struct {
	Delivery      *model.Delivery
	Milestone     *model.Milestone // nil for free-standing deliveries
	Completed     bool
	ReleasedCents int64
}

// ApproveDelivery records the client's acceptance of a delivery. A milestone
// delivery releases that milestone's amount from escrow; whether the approval
// completes the whole order is the policy's call. Completion stamps
// completedAt and releases the escrow remainder.
func (a *Aggregate) ApproveDelivery(actorID, deliveryID int64, policy CompletionPolicy, now time.Time) (*ApproveOutcome, error) {
	const op = "approveDelivery"
	if !a.isClient(actorID) {
		return nil, Unauthorized(op, "only the client may approve a delivery")
	}
	delivery := a.findDelivery(deliveryID)
	if delivery == nil {
		return nil, NotFound(op, "delivery not found on this work order")
	}
	if delivery.Status != model.DeliveryPendingReview {
		return nil, InvalidState(op, fmt.Sprintf("delivery is %s, expected %s", delivery.Status, model.DeliveryPendingReview))
	}

	delivery.Status = model.DeliveryApproved
	delivery.UpdatedAt = now

	outcome := &ApproveOutcome{Delivery: delivery}

	if delivery.MilestoneID != nil {
		milestone := a.findMilestone(*delivery.MilestoneID)
		if milestone == nil {
			return nil, NotFound(op, "milestone does not belong to this work order")
		}
		milestone.Status = model.MilestoneApproved
		milestone.UpdatedAt = now
		outcome.Milestone = milestone

		// Release this milestone's share, capped at what is still held.
		share := milestone.AmountCents
		if remaining := a.Escrow.RemainingCents(); share > remaining {
			share = remaining
		}
		if share > 0 {
			if err := release(a.Escrow, share); err != nil {
				return nil, err
			}
			a.Escrow.UpdatedAt = now
			outcome.ReleasedCents = share
		}
	}

	if policy == nil {
		policy = DefaultCompletionPolicy
	}
	if policy(a, delivery) {
		if err := a.transition(op, model.WorkOrderCompleted, now); err != nil {
			return nil, err
		}
		completed := now
		a.Order.CompletedAt = &completed
		if a.Escrow.RemainingCents() > 0 {
			released, err := releaseRemainder(a.Escrow)
			if err != nil {
				return nil, err
			}
			a.Escrow.UpdatedAt = now
			outcome.ReleasedCents += released
		}
		outcome.Completed = true
		return outcome, nil
	}

	// Not the final approval: hand the order back to the creative for the
	// next phase.
	if a.Order.Status == model.WorkOrderDelivered || a.Order.Status == model.WorkOrderInRevision {
		if err := a.transition(op, model.WorkOrderInProgress, now); err != nil {
			return nil, err
		}
	}
	return outcome, nil
}

// RequestRevision records the client's rejection of a delivery. The note is
// mandatory; the delivery, its milestone and the order all surface the
// revision state so the creative can resubmit.
func (a *Aggregate) RequestRevision(actorID, deliveryID int64, note string, now time.Time) (*model.Delivery, error) {
	const op = "requestRevision"
	if !a.isClient(actorID) {
		return nil, Unauthorized(op, "only the client may request a revision")
	}
	delivery := a.findDelivery(deliveryID)
	if delivery == nil {
		return nil, NotFound(op, "delivery not found on this work order")
	}
	if delivery.Status != model.DeliveryPendingReview {
		return nil, InvalidState(op, fmt.Sprintf("delivery is %s, expected %s", delivery.Status, model.DeliveryPendingReview))
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, Validation(op, "revision note must not be empty")
	}

	if a.Order.Status != model.WorkOrderInRevision {
		if err := a.transition(op, model.WorkOrderInRevision, now); err != nil {
			return nil, err
		}
	}

	delivery.Status = model.DeliveryRevisionRequested
	delivery.RevisionNote = note
	delivery.UpdatedAt = now

	if delivery.MilestoneID != nil {
		if milestone := a.findMilestone(*delivery.MilestoneID); milestone != nil {
			milestone.Status = model.MilestoneInRevision
			milestone.UpdatedAt = now
		}
	}
	return delivery, nil
}

// editable reports whether milestone CRUD is still allowed.
func (a *Aggregate) editable() bool {
	return !IsTerminal(a.Order.Status)
}

// AddMilestone appends a new PENDING milestone at the next position. Either
// party may shape the milestone plan while the order is editable.
func (a *Aggregate) AddMilestone(actorID int64, title, description string, amountCents int64, dueDate *time.Time, now time.Time) (*model.Milestone, error) {
	const op = "addMilestone"
	if !a.isParty(actorID) {
		return nil, Unauthorized(op, "only the client or the creative may add milestones")
	}
	if !a.editable() {
		return nil, InvalidState(op, fmt.Sprintf("work order is %s and no longer editable", a.Order.Status))
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, Validation(op, "milestone title must not be empty")
	}
	if amountCents < 0 {
		return nil, Validation(op, "milestone amount must not be negative")
	}

	next := 0
	for _, m := range a.Milestones {
		if m.Position > next {
			next = m.Position
		}
	}

	milestone := &model.Milestone{
		WorkOrderID: a.Order.ID,
		Title:       title,
		Description: description,
		AmountCents: amountCents,
		DueDate:     dueDate,
		Status:      model.MilestonePending,
		Position:    next + 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	a.Milestones = append(a.Milestones, milestone)
	return milestone, nil
}

// UpdateMilestone edits a milestone that has not entered the delivery flow.
func (a *Aggregate) UpdateMilestone(actorID, milestoneID int64, title, description string, amountCents int64, dueDate *time.Time, now time.Time) (*model.Milestone, error) {
	const op = "updateMilestone"
	if !a.isParty(actorID) {
		return nil, Unauthorized(op, "only the client or the creative may edit milestones")
	}
	if !a.editable() {
		return nil, InvalidState(op, fmt.Sprintf("work order is %s and no longer editable", a.Order.Status))
	}
	milestone := a.findMilestone(milestoneID)
	if milestone == nil {
		return nil, NotFound(op, "milestone does not belong to this work order")
	}
	if milestone.Status != model.MilestonePending {
		return nil, InvalidState(op, fmt.Sprintf("milestone is %s and can no longer be edited", milestone.Status))
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, Validation(op, "milestone title must not be empty")
	}
	if amountCents < 0 {
		return nil, Validation(op, "milestone amount must not be negative")
	}

	milestone.Title = title
	milestone.Description = description
	milestone.AmountCents = amountCents
	milestone.DueDate = dueDate
	milestone.UpdatedAt = now
	return milestone, nil
}

// RemoveMilestone drops a still-PENDING milestone. Positions of the remaining
// milestones keep their relative order; gaps are fine, the sequence only has
// to stay strictly ordered.
func (a *Aggregate) RemoveMilestone(actorID, milestoneID int64) error {
	const op = "removeMilestone"
	if !a.isParty(actorID) {
		return Unauthorized(op, "only the client or the creative may remove milestones")
	}
	if !a.editable() {
		return InvalidState(op, fmt.Sprintf("work order is %s and no longer editable", a.Order.Status))
	}
	milestone := a.findMilestone(milestoneID)
	if milestone == nil {
		return NotFound(op, "milestone does not belong to this work order")
	}
	if milestone.Status != model.MilestonePending {
		return InvalidState(op, fmt.Sprintf("milestone is %s and can no longer be removed", milestone.Status))
	}

	kept := a.Milestones[:0]
	for _, m := range a.Milestones {
		if m.ID != milestoneID {
			kept = append(kept, m)
		}
	}
	a.Milestones = kept
	return nil
}

// ReorderMilestones rewrites milestone positions to match the given id list.
// The input must be an exact permutation of the current milestone ids; a
// missing, duplicated or foreign id rejects the whole command and leaves the
// order unchanged.
func (a *Aggregate) ReorderMilestones(actorID int64, orderedIDs []int64) error {
	const op = "reorderMilestones"
	if !a.isParty(actorID) {
		return Unauthorized(op, "only the client or the creative may reorder milestones")
	}
	if !a.editable() {
		return InvalidState(op, fmt.Sprintf("work order is %s and no longer editable", a.Order.Status))
	}
	if len(orderedIDs) != len(a.Milestones) {
		return Validation(op, fmt.Sprintf("expected %d milestone ids, got %d", len(a.Milestones), len(orderedIDs)))
	}

	seen := make(map[int64]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if seen[id] {
			return Validation(op, fmt.Sprintf("milestone id %d appears twice", id))
		}
		seen[id] = true
		if a.findMilestone(id) == nil {
			return Validation(op, fmt.Sprintf("milestone id %d does not belong to this work order", id))
		}
	}

	for i, id := range orderedIDs {
		m := a.findMilestone(id)
		m.Position = i + 1
	}
	return nil
}

// OpenDispute freezes a non-terminal order in DISPUTED. Start, cancel and the
// delivery flow are all blocked until an admin resolves it.
func (a *Aggregate) OpenDispute(actorID int64, reason string, now time.Time) error {
	const op = "openDispute"
	if !a.isParty(actorID) {
		return Unauthorized(op, "only the client or the creative may open a dispute")
	}
	if strings.TrimSpace(reason) == "" {
		return Validation(op, "dispute reason must not be empty")
	}
	if a.Order.Status == model.WorkOrderDisputed {
		return InvalidState(op, "work order is already disputed")
	}
	return a.transition(op, model.WorkOrderDisputed, now)
}

// DisputeResolution is the admin's verdict on a disputed order.
type DisputeResolution string

const (
	// ResolutionRelease completes the order and pays the creative.
	ResolutionRelease DisputeResolution = "RELEASE"
	// ResolutionRefund cancels the order and refunds the client.
	ResolutionRefund DisputeResolution = "REFUND"
)

// ResolveOutcome describes where a dispute resolution moved the money.
type ResolveOutcome struct {
	Completed     bool
	ReleasedCents int64
	RefundedCents int64
}

// ResolveDispute settles a DISPUTED order. The caller's admin role is checked
// at the transport boundary; the aggregate only enforces state.
func (a *Aggregate) ResolveDispute(resolution DisputeResolution, now time.Time) (*ResolveOutcome, error) {
	const op = "resolveDispute"
	if a.Order.Status != model.WorkOrderDisputed {
		return nil, InvalidState(op, fmt.Sprintf("work order is %s, expected %s", a.Order.Status, model.WorkOrderDisputed))
	}

	outcome := &ResolveOutcome{}
	switch resolution {
	case ResolutionRelease:
		if err := a.transition(op, model.WorkOrderCompleted, now); err != nil {
			return nil, err
		}
		completed := now
		a.Order.CompletedAt = &completed
		if a.Escrow.RemainingCents() > 0 {
			released, err := releaseRemainder(a.Escrow)
			if err != nil {
				return nil, err
			}
			a.Escrow.UpdatedAt = now
			outcome.ReleasedCents = released
		}
		outcome.Completed = true
	case ResolutionRefund:
		refunded, err := refund(a.Escrow)
		if err != nil {
			return nil, err
		}
		if err := a.transition(op, model.WorkOrderCancelled, now); err != nil {
			return nil, err
		}
		a.Escrow.UpdatedAt = now
		outcome.RefundedCents = refunded
	default:
		return nil, Validation(op, fmt.Sprintf("unknown resolution %q", resolution))
	}
	return outcome, nil
}
