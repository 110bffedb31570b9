package workorder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	mqcontracts "workorder-service/contracts/mq"
	"workorder-service/internal/model"
	"workorder-service/internal/repository"
	"workorder-service/pkg/metrics"
	"workorder-service/pkg/outbox"
	"workorder-service/pkg/rbac"
)

// Service executes lifecycle commands. Each command is one transaction: lock
// the work order row, load the aggregate, apply the pure command, persist the
// result and its outbox events, commit. A failed command rolls the whole
// transaction back, so invariants never leak into the store.
type Service struct {
	db           *pgxpool.Pool
	workOrders   *repository.WorkOrderRepository
	milestones   *repository.MilestoneRepository
	deliveries   *repository.DeliveryRepository
	escrows      *repository.EscrowRepository
	projects     *repository.ProjectRepository
	applications *repository.ApplicationRepository
	outbox       *outbox.Repository
	policy       CompletionPolicy
	logger       *zap.Logger
}

func NewService(
	db *pgxpool.Pool,
	workOrders *repository.WorkOrderRepository,
	milestones *repository.MilestoneRepository,
	deliveries *repository.DeliveryRepository,
	escrows *repository.EscrowRepository,
	projects *repository.ProjectRepository,
	applications *repository.ApplicationRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		db:           db,
		workOrders:   workOrders,
		milestones:   milestones,
		deliveries:   deliveries,
		escrows:      escrows,
		projects:     projects,
		applications: applications,
		outbox:       outbox.NewRepository(db),
		policy:       DefaultCompletionPolicy,
		logger:       logger,
	}
}

// WithCompletionPolicy overrides the completion rule applied on approvals.
func (s *Service) WithCompletionPolicy(policy CompletionPolicy) *Service {
	s.policy = policy
	return s
}

// View is the full aggregate as returned to callers, with the derived
// milestone total and display descriptor precomputed.
type View struct {
	WorkOrder           *model.WorkOrder    `json:"work_order"`
	Milestones          []*model.Milestone  `json:"milestones"`
	Deliveries          []*model.Delivery   `json:"deliveries"`
	Escrow              *model.Escrow       `json:"escrow"`
	MilestoneTotalCents int64               `json:"milestone_total_cents"`
	StatusDisplay       model.StatusDisplay `json:"status_display"`
}

// loadAggregateTx loads everything scoped to one work order under its row lock.
func (s *Service) loadAggregateTx(ctx context.Context, tx pgx.Tx, workOrderID int64) (*Aggregate, error) {
	wo, err := s.workOrders.GetForUpdate(ctx, tx, workOrderID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, NotFound("getWorkOrder", fmt.Sprintf("work order %d does not exist", workOrderID))
		}
		return nil, fmt.Errorf("failed to load work order %d: %w", workOrderID, err)
	}

	milestones, err := s.milestones.ListByWorkOrderTx(ctx, tx, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestones: %w", err)
	}
	deliveries, err := s.deliveries.ListByWorkOrderTx(ctx, tx, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load deliveries: %w", err)
	}
	escrow, err := s.escrows.GetByWorkOrderTx(ctx, tx, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load escrow: %w", err)
	}

	return &Aggregate{
		Order:      wo,
		Milestones: milestones,
		Deliveries: deliveries,
		Escrow:     escrow,
	}, nil
}

// inTx runs fn inside one command transaction against the aggregate, records
// the status transition metric on commit, and returns the mutated aggregate.
func (s *Service) inTx(ctx context.Context, workOrderID int64, fn func(tx pgx.Tx, agg *Aggregate) error) (*Aggregate, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	agg, err := s.loadAggregateTx(ctx, tx, workOrderID)
	if err != nil {
		return nil, err
	}
	from := agg.Order.Status

	if err := fn(tx, agg); err != nil {
		return nil, err
	}

	// Belt and braces: nothing leaves the transaction with a broken ledger.
	if err := CheckLedgerInvariant(agg.Escrow); err != nil {
		return nil, fmt.Errorf("ledger invariant violated, aborting: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if to := agg.Order.Status; to != from {
		metrics.RecordTransition(string(from), string(to))
	}
	return agg, nil
}

// counterparty returns the other side of the work order relative to the actor.
func counterparty(wo *model.WorkOrder, actorID int64) int64 {
	if actorID == wo.ClientID {
		return wo.CreativeID
	}
	return wo.ClientID
}

func (s *Service) emit(ctx context.Context, tx pgx.Tx, routingKey string, aggregateType string, payload mqcontracts.WorkOrderEventPayload) error {
	if err := outbox.InsertEventInTx(ctx, tx, s.outbox, aggregateType, payload.WorkOrderID, routingKey, payload); err != nil {
		return fmt.Errorf("failed to record %s event: %w", routingKey, err)
	}
	return nil
}

// GetByID returns the full aggregate. Only the two parties and admins may see
// a work order; everyone else gets the same not-found as a missing id, so
// existence does not leak. Reads take no row lock.
func (s *Service) GetByID(ctx context.Context, actorID int64, role string, workOrderID int64) (*View, error) {
	wo, err := s.workOrders.GetByID(ctx, workOrderID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, NotFound("getWorkOrder", fmt.Sprintf("work order %d does not exist", workOrderID))
		}
		return nil, fmt.Errorf("failed to load work order %d: %w", workOrderID, err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	milestones, err := s.milestones.ListByWorkOrderTx(ctx, tx, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestones: %w", err)
	}
	deliveries, err := s.deliveries.ListByWorkOrderTx(ctx, tx, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load deliveries: %w", err)
	}
	escrow, err := s.escrows.GetByWorkOrderTx(ctx, tx, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load escrow: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	agg := &Aggregate{Order: wo, Milestones: milestones, Deliveries: deliveries, Escrow: escrow}
	if !agg.isParty(actorID) && !rbac.HasPermission(role, rbac.PermissionListAllWorkOrders) {
		return nil, NotFound("getWorkOrder", fmt.Sprintf("work order %d does not exist", workOrderID))
	}

	return &View{
		WorkOrder:           agg.Order,
		Milestones:          agg.Milestones,
		Deliveries:          agg.Deliveries,
		Escrow:              agg.Escrow,
		MilestoneTotalCents: agg.MilestoneTotalCents(),
		StatusDisplay:       agg.Order.Status.Display(),
	}, nil
}

// ListByUser returns the caller's work orders, both sides of the table.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]model.WorkOrder, error) {
	return s.workOrders.ListByUser(ctx, userID)
}

// Start begins work: creative only, PENDING order, funded escrow.
func (s *Service) Start(ctx context.Context, actorID, workOrderID int64) (*model.WorkOrder, error) {
	now := time.Now()
	agg, err := s.inTx(ctx, workOrderID, func(tx pgx.Tx, agg *Aggregate) error {
		if err := agg.Start(actorID, now); err != nil {
			return err
		}
		if err := s.workOrders.UpdateTx(ctx, tx, agg.Order); err != nil {
			return err
		}
		return s.emit(ctx, tx, mqcontracts.RoutingWorkOrderStarted, "workorder", mqcontracts.WorkOrderEventPayload{
			WorkOrderID: workOrderID,
			ActorID:     actorID,
			RecipientID: counterparty(agg.Order, actorID),
			OccurredAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Work order started",
		zap.Int64("work_order_id", workOrderID),
		zap.Int64("creative_id", actorID),
	)
	return agg.Order, nil
}

// Cancel ends a non-terminal order and refunds the unreleased escrow.
func (s *Service) Cancel(ctx context.Context, actorID, workOrderID int64) (*model.WorkOrder, error) {
	now := time.Now()
	var refunded int64
	agg, err := s.inTx(ctx, workOrderID, func(tx pgx.Tx, agg *Aggregate) error {
		var err error
		refunded, err = agg.Cancel(actorID, now)
		if err != nil {
			return err
		}
		if err := s.workOrders.UpdateTx(ctx, tx, agg.Order); err != nil {
			return err
		}
		if err := s.escrows.UpdateTx(ctx, tx, agg.Escrow); err != nil {
			return err
		}
		if err := s.emit(ctx, tx, mqcontracts.RoutingWorkOrderCancelled, "workorder", mqcontracts.WorkOrderEventPayload{
			WorkOrderID: workOrderID,
			ActorID:     actorID,
			RecipientID: counterparty(agg.Order, actorID),
			OccurredAt:  now,
		}); err != nil {
			return err
		}
		if refunded > 0 {
			return s.emit(ctx, tx, mqcontracts.RoutingEscrowRefunded, "escrow", mqcontracts.WorkOrderEventPayload{
				WorkOrderID: workOrderID,
				ActorID:     actorID,
				RecipientID: agg.Order.ClientID,
				AmountCents: refunded,
				OccurredAt:  now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Work order cancelled",
		zap.Int64("work_order_id", workOrderID),
		zap.Int64("actor_id", actorID),
		zap.Int64("refunded_cents", refunded),
	)
	if refunded > 0 {
		metrics.RecordEscrowMovement("refunded", refunded)
	}
	return agg.Order, nil
}

// FundEscrow funds the full escrow total in one atomic step.
func (s *Service) FundEscrow(ctx context.Context, actorID, workOrderID int64) (*model.Escrow, error) {
	now := time.Now()
	agg, err := s.inTx(ctx, workOrderID, func(tx pgx.Tx, agg *Aggregate) error {
		if err := agg.FundEscrow(actorID, now); err != nil {
			return err
		}
		if err := s.escrows.UpdateTx(ctx, tx, agg.Escrow); err != nil {
			return err
		}
		return s.emit(ctx, tx, mqcontracts.RoutingEscrowFunded, "escrow", mqcontracts.WorkOrderEventPayload{
			WorkOrderID: workOrderID,
			ActorID:     actorID,
			RecipientID: agg.Order.CreativeID,
			AmountCents: agg.Escrow.FundedAmountCents,
			OccurredAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Escrow funded",
		zap.Int64("work_order_id", workOrderID),
		zap.Int64("funded_cents", agg.Escrow.FundedAmountCents),
	)
	metrics.RecordEscrowMovement("funded", agg.Escrow.FundedAmountCents)
	return agg.Escrow, nil
}

// SubmitDeliveryInput carries a creative's submission.
type SubmitDeliveryInput struct {
	Message     string
	Attachments []string
	MilestoneID *int64
}

// SubmitDelivery records a submission and surfaces the order as DELIVERED.
func (s *Service) SubmitDelivery(ctx context.Context, actorID, workOrderID int64, in SubmitDeliveryInput) (*model.Delivery, error) {
	now := time.Now()
	var delivery *model.Delivery
	_, err := s.inTx(ctx, workOrderID, func(tx pgx.Tx, agg *Aggregate) error {
		var err error
		delivery, err = agg.SubmitDelivery(actorID, in.Message, in.Attachments, in.MilestoneID, now)
		if err != nil {
			return err
		}

		id, err := s.deliveries.InsertTx(ctx, tx, delivery)
		if err != nil {
			return err
		}
		delivery.ID = id

		if err := s.workOrders.UpdateTx(ctx, tx, agg.Order); err != nil {
			return err
		}
		if in.MilestoneID != nil {
			if m := agg.findMilestone(*in.MilestoneID); m != nil {
				if err := s.milestones.UpdateTx(ctx, tx, m); err != nil {
					return err
				}
			}
		}

		payload := mqcontracts.WorkOrderEventPayload{
			WorkOrderID: workOrderID,
			ActorID:     actorID,
			RecipientID: agg.Order.ClientID,
			DeliveryID:  delivery.ID,
			OccurredAt:  now,
		}
		if in.MilestoneID != nil {
			payload.MilestoneID = *in.MilestoneID
		}
		return s.emit(ctx, tx, mqcontracts.RoutingDeliverySubmitted, "delivery", payload)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Delivery submitted",
		zap.Int64("work_order_id", workOrderID),
		zap.Int64("delivery_id", delivery.ID),
	)
	return delivery, nil
}

// resolveWorkOrderID maps a delivery id to its work order so the command can
// take the work order lock first.
func (s *Service) resolveWorkOrderID(ctx context.Context, op string, deliveryID int64) (int64, error) {
	workOrderID, err := s.deliveries.FindWorkOrderID(ctx, deliveryID)
	if err != nil {
		if err == repository.ErrNotFound {
			return 0, NotFound(op, fmt.Sprintf("delivery %d does not exist", deliveryID))
		}
		return 0, fmt.Errorf("failed to resolve delivery %d: %w", deliveryID, err)
	}
	return workOrderID, nil
}

// ApproveDelivery accepts a delivery, releases escrow per milestone share, and
// completes the order when the completion policy says so.
func (s *Service) ApproveDelivery(ctx context.Context, actorID, deliveryID int64) (*ApproveOutcome, error) {
	workOrderID, err := s.resolveWorkOrderID(ctx, "approveDelivery", deliveryID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var outcome *ApproveOutcome
	_, err = s.inTx(ctx, workOrderID, func(tx pgx.Tx, agg *Aggregate) error {
		var err error
		outcome, err = agg.ApproveDelivery(actorID, deliveryID, s.policy, now)
		if err != nil {
			return err
		}

		if err := s.deliveries.UpdateTx(ctx, tx, outcome.Delivery); err != nil {
			return err
		}
		if outcome.Milestone != nil {
			if err := s.milestones.UpdateTx(ctx, tx, outcome.Milestone); err != nil {
				return err
			}
		}
		if err := s.workOrders.UpdateTx(ctx, tx, agg.Order); err != nil {
			return err
		}
		if err := s.escrows.UpdateTx(ctx, tx, agg.Escrow); err != nil {
			return err
		}

		if err := s.emit(ctx, tx, mqcontracts.RoutingDeliveryApproved, "delivery", mqcontracts.WorkOrderEventPayload{
			WorkOrderID: workOrderID,
			ActorID:     actorID,
			RecipientID: agg.Order.CreativeID,
			DeliveryID:  deliveryID,
			OccurredAt:  now,
		}); err != nil {
			return err
		}
		if outcome.ReleasedCents > 0 {
			if err := s.emit(ctx, tx, mqcontracts.RoutingEscrowReleased, "escrow", mqcontracts.WorkOrderEventPayload{
				WorkOrderID: workOrderID,
				ActorID:     actorID,
				RecipientID: agg.Order.CreativeID,
				AmountCents: outcome.ReleasedCents,
				OccurredAt:  now,
			}); err != nil {
				return err
			}
		}
		if outcome.Completed {
			return s.emit(ctx, tx, mqcontracts.RoutingWorkOrderCompleted, "workorder", mqcontracts.WorkOrderEventPayload{
				WorkOrderID: workOrderID,
				ActorID:     actorID,
				RecipientID: agg.Order.CreativeID,
				OccurredAt:  now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Delivery approved",
		zap.Int64("work_order_id", workOrderID),
		zap.Int64("delivery_id", deliveryID),
		zap.Bool("completed", outcome.Completed),
		zap.Int64("released_cents", outcome.ReleasedCents),
	)
	if outcome.ReleasedCents > 0 {
		metrics.RecordEscrowMovement("released", outcome.ReleasedCents)
	}
	return outcome, nil
}

// RequestRevision rejects a delivery back to the creative with a mandatory note.
func (s *Service) RequestRevision(ctx context.Context, actorID, deliveryID int64, note string) (*model.Delivery, error) {
	workOrderID, err := s.resolveWorkOrderID(ctx, "requestRevision", deliveryID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var delivery *model.Delivery
	_, err = s.inTx(ctx, workOrderID, func(tx pgx.Tx, agg *Aggregate) error {
		var err error
		delivery, err = agg.RequestRevision(actorID, deliveryID, note, now)
		if err != nil {
			return err
		}

		if err := s.deliveries.UpdateTx(ctx, tx, delivery); err != nil {
			return err
		}
		if err := s.workOrders.UpdateTx(ctx, tx, agg.Order); err != nil {
			return err
		}
		if delivery.MilestoneID != nil {
			if m := agg.findMilestone(*delivery.MilestoneID); m != nil {
				if err := s.milestones.UpdateTx(ctx, tx, m); err != nil {
					return err
				}
			}
		}

		return s.emit(ctx, tx, mqcontracts.RoutingDeliveryRevision, "delivery", mqcontracts.WorkOrderEventPayload{
			WorkOrderID:  workOrderID,
			ActorID:      actorID,
			RecipientID:  agg.Order.CreativeID,
			DeliveryID:   deliveryID,
			RevisionNote: delivery.RevisionNote,
			OccurredAt:   now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Revision requested",
		zap.Int64("work_order_id", workOrderID),
		zap.Int64("delivery_id", deliveryID),
	)
	return delivery, nil
}

// AddMilestoneInput carries a new milestone.
type AddMilestoneInput struct {
	Title       string
	Description string
	AmountCents int64
	DueDate     *time.Time
}

func (s *Service) AddMilestone(ctx context.Context, actorID, workOrderID int64, in AddMilestoneInput) (*model.Milestone, error) {
	now := time.Now()
	var milestone *model.Milestone
	_, err := s.inTx(ctx, workOrderID, func(tx pgx.Tx, agg *Aggregate) error {
		var err error
		milestone, err = agg.AddMilestone(actorID, in.Title, in.Description, in.AmountCents, in.DueDate, now)
		if err != nil {
			return err
		}
		id, err := s.milestones.InsertTx(ctx, tx, milestone)
		if err != nil {
			return err
		}
		milestone.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return milestone, nil
}

func (s *Service) UpdateMilestone(ctx context.Context, actorID, workOrderID, milestoneID int64, in AddMilestoneInput) (*model.Milestone, error) {
	now := time.Now()
	var milestone *model.Milestone
	_, err := s.inTx(ctx, workOrderID, func(tx pgx.Tx, agg *Aggregate) error {
		var err error
		milestone, err = agg.UpdateMilestone(actorID, milestoneID, in.Title, in.Description, in.AmountCents, in.DueDate, now)
		if err != nil {
			return err
		}
		return s.milestones.UpdateTx(ctx, tx, milestone)
	})
	if err != nil {
		return nil, err
	}
	return milestone, nil
}

func (s *Service) RemoveMilestone(ctx context.Context, actorID, workOrderID, milestoneID int64) error {
	_, err := s.inTx(ctx, workOrderID, func(tx pgx.Tx, agg *Aggregate) error {
		if err := agg.RemoveMilestone(actorID, milestoneID); err != nil {
			return err
		}
		return s.milestones.DeleteTx(ctx, tx, milestoneID)
	})
	return err
}

// ReorderMilestones rewrites the sequence to match the given permutation of
// milestone ids and returns the reordered list.
func (s *Service) ReorderMilestones(ctx context.Context, actorID, workOrderID int64, orderedIDs []int64) ([]*model.Milestone, error) {
	agg, err := s.inTx(ctx, workOrderID, func(tx pgx.Tx, agg *Aggregate) error {
		if err := agg.ReorderMilestones(actorID, orderedIDs); err != nil {
			return err
		}
		for _, m := range agg.Milestones {
			if err := s.milestones.UpdateTx(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Return in the new sequence.
	ordered := make([]*model.Milestone, len(agg.Milestones))
	copy(ordered, agg.Milestones)
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].Position < ordered[i].Position {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}
	return ordered, nil
}

// OpenDispute freezes the order pending admin resolution.
func (s *Service) OpenDispute(ctx context.Context, actorID, workOrderID int64, reason string) (*model.WorkOrder, error) {
	now := time.Now()
	agg, err := s.inTx(ctx, workOrderID, func(tx pgx.Tx, agg *Aggregate) error {
		if err := agg.OpenDispute(actorID, reason, now); err != nil {
			return err
		}
		if err := s.workOrders.UpdateTx(ctx, tx, agg.Order); err != nil {
			return err
		}
		return s.emit(ctx, tx, mqcontracts.RoutingWorkOrderDisputed, "workorder", mqcontracts.WorkOrderEventPayload{
			WorkOrderID: workOrderID,
			ActorID:     actorID,
			RecipientID: counterparty(agg.Order, actorID),
			Reason:      strings.TrimSpace(reason),
			OccurredAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Warn("Work order disputed",
		zap.Int64("work_order_id", workOrderID),
		zap.Int64("actor_id", actorID),
	)
	return agg.Order, nil
}

// ResolveDispute settles a disputed order. Admin only.
func (s *Service) ResolveDispute(ctx context.Context, actorID int64, role string, workOrderID int64, resolution DisputeResolution) (*model.WorkOrder, error) {
	if err := rbac.CheckPermission(role, rbac.PermissionResolveDispute); err != nil {
		return nil, Unauthorized("resolveDispute", "dispute resolution requires an admin")
	}

	now := time.Now()
	var outcome *ResolveOutcome
	agg, err := s.inTx(ctx, workOrderID, func(tx pgx.Tx, agg *Aggregate) error {
		var err error
		outcome, err = agg.ResolveDispute(resolution, now)
		if err != nil {
			return err
		}
		if err := s.workOrders.UpdateTx(ctx, tx, agg.Order); err != nil {
			return err
		}
		if err := s.escrows.UpdateTx(ctx, tx, agg.Escrow); err != nil {
			return err
		}

		if err := s.emit(ctx, tx, mqcontracts.RoutingWorkOrderResolved, "workorder", mqcontracts.WorkOrderEventPayload{
			WorkOrderID: workOrderID,
			ActorID:     actorID,
			RecipientID: agg.Order.ClientID,
			OccurredAt:  now,
		}); err != nil {
			return err
		}
		if outcome.ReleasedCents > 0 {
			if err := s.emit(ctx, tx, mqcontracts.RoutingEscrowReleased, "escrow", mqcontracts.WorkOrderEventPayload{
				WorkOrderID: workOrderID,
				ActorID:     actorID,
				RecipientID: agg.Order.CreativeID,
				AmountCents: outcome.ReleasedCents,
				OccurredAt:  now,
			}); err != nil {
				return err
			}
		}
		if outcome.RefundedCents > 0 {
			if err := s.emit(ctx, tx, mqcontracts.RoutingEscrowRefunded, "escrow", mqcontracts.WorkOrderEventPayload{
				WorkOrderID: workOrderID,
				ActorID:     actorID,
				RecipientID: agg.Order.ClientID,
				AmountCents: outcome.RefundedCents,
				OccurredAt:  now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Dispute resolved",
		zap.Int64("work_order_id", workOrderID),
		zap.String("resolution", string(resolution)),
		zap.Int64("released_cents", outcome.ReleasedCents),
		zap.Int64("refunded_cents", outcome.RefundedCents),
	)
	if outcome.ReleasedCents > 0 {
		metrics.RecordEscrowMovement("released", outcome.ReleasedCents)
	}
	if outcome.RefundedCents > 0 {
		metrics.RecordEscrowMovement("refunded", outcome.RefundedCents)
	}
	return agg.Order, nil
}
