package project

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
	"workorder-service/internal/service/workorder"
	"workorder-service/pkg/outbox"
)

// Service handles the intake side of the marketplace: gig postings, direct
// requests and applications. Accepting either path creates the work order and
// its escrow in the same transaction as the status flip, so a project can
// never be ACCEPTED without a work order behind it.
type Service struct {
	db           *pgxpool.Pool
	projects     *repository.ProjectRepository
	applications *repository.ApplicationRepository
	workOrders   *repository.WorkOrderRepository
	escrows      *repository.EscrowRepository
	outbox       *outbox.Repository
	logger       *zap.Logger
}

func NewService(
	db *pgxpool.Pool,
	projects *repository.ProjectRepository,
	applications *repository.ApplicationRepository,
	workOrders *repository.WorkOrderRepository,
	escrows *repository.EscrowRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		db:           db,
		projects:     projects,
		applications: applications,
		workOrders:   workOrders,
		escrows:      escrows,
		outbox:       outbox.NewRepository(db),
		logger:       logger,
	}
}

// CreateInput carries a new gig posting or direct request.
type CreateInput struct {
	Title               string
	Description         string
	RateCents           int64
	BudgetType          model.BudgetType
	RequestedCreativeID *int64
}

// Create posts a gig, or sends a direct request when a creative is named.
func (s *Service) Create(ctx context.Context, actorID int64, in CreateInput) (*model.Project, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, workorder.Validation("createProject", "title must not be empty")
	}
	if in.RateCents < 0 {
		return nil, workorder.Validation("createProject", "rate must not be negative")
	}
	switch in.BudgetType {
	case model.BudgetFixed, model.BudgetHourly, model.BudgetMilestone:
	default:
		return nil, workorder.Validation("createProject", fmt.Sprintf("unknown budget type %q", in.BudgetType))
	}

	status := model.ProjectOpen
	if in.RequestedCreativeID != nil {
		if *in.RequestedCreativeID == actorID {
			return nil, workorder.Validation("createProject", "cannot send a direct request to yourself")
		}
		status = model.ProjectRequested
	}

	p := &model.Project{
		ClientID:            actorID,
		Title:               title,
		Description:         strings.TrimSpace(in.Description),
		RateCents:           in.RateCents,
		BudgetType:          in.BudgetType,
		Status:              status,
		RequestedCreativeID: in.RequestedCreativeID,
	}

	id, err := s.projects.Insert(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	p.ID = id

	s.logger.Info("Project created",
		zap.Int64("project_id", id),
		zap.Int64("client_id", actorID),
		zap.String("status", string(status)),
	)
	return p, nil
}

// ApplyInput carries a creative's bid on an open gig.
type ApplyInput struct {
	CoverLetter       string
	ProposedRateCents int64
}

// Apply records a bid on an open gig. Clients cannot bid on their own gigs.
func (s *Service) Apply(ctx context.Context, actorID, projectID int64, in ApplyInput) (*model.Application, error) {
	p, err := s.getProject(ctx, "applyToProject", projectID)
	if err != nil {
		return nil, err
	}
	if p.ClientID == actorID {
		return nil, workorder.Unauthorized("applyToProject", "cannot apply to your own gig")
	}
	if p.Status != model.ProjectOpen {
		return nil, workorder.InvalidState("applyToProject", fmt.Sprintf("project is %s, not OPEN", p.Status))
	}
	if in.ProposedRateCents < 0 {
		return nil, workorder.Validation("applyToProject", "proposed rate must not be negative")
	}

	a := &model.Application{
		ProjectID:         projectID,
		CreativeID:        actorID,
		CoverLetter:       strings.TrimSpace(in.CoverLetter),
		ProposedRateCents: in.ProposedRateCents,
		Status:            model.ApplicationPending,
	}
	id, err := s.applications.Insert(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	a.ID = id

	s.logger.Info("Application submitted",
		zap.Int64("project_id", projectID),
		zap.Int64("application_id", id),
		zap.Int64("creative_id", actorID),
	)
	return a, nil
}

// AcceptDirectRequest lets the requested creative accept, creating the work
// order at the project rate.
func (s *Service) AcceptDirectRequest(ctx context.Context, actorID, projectID int64) (*model.WorkOrder, error) {
	const op = "acceptDirectRequest"
	now := time.Now()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := s.getProjectForUpdate(ctx, tx, op, projectID)
	if err != nil {
		return nil, err
	}
	if p.RequestedCreativeID == nil || *p.RequestedCreativeID != actorID {
		return nil, workorder.Unauthorized(op, "only the requested creative may accept")
	}
	if p.Status != model.ProjectRequested {
		return nil, workorder.InvalidState(op, fmt.Sprintf("project is %s, not REQUESTED", p.Status))
	}

	wo, err := s.createWorkOrderTx(ctx, tx, p, actorID, p.RateCents, actorID, now)
	if err != nil {
		return nil, err
	}
	if err := s.projects.UpdateStatusTx(ctx, tx, projectID, model.ProjectAccepted); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Direct request accepted",
		zap.Int64("project_id", projectID),
		zap.Int64("work_order_id", wo.ID),
	)
	return wo, nil
}

// DeclineDirectRequest lets the requested creative turn the request down.
func (s *Service) DeclineDirectRequest(ctx context.Context, actorID, projectID int64) error {
	const op = "declineDirectRequest"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := s.getProjectForUpdate(ctx, tx, op, projectID)
	if err != nil {
		return err
	}
	if p.RequestedCreativeID == nil || *p.RequestedCreativeID != actorID {
		return workorder.Unauthorized(op, "only the requested creative may decline")
	}
	if p.Status != model.ProjectRequested {
		return workorder.InvalidState(op, fmt.Sprintf("project is %s, not REQUESTED", p.Status))
	}

	if err := s.projects.UpdateStatusTx(ctx, tx, projectID, model.ProjectDeclined); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Direct request declined", zap.Int64("project_id", projectID))
	return nil
}

// AcceptApplication lets the client pick a bid: the work order is created at
// the proposed rate and every other pending bid is declined.
func (s *Service) AcceptApplication(ctx context.Context, actorID, applicationID int64) (*model.WorkOrder, error) {
	const op = "acceptApplication"
	now := time.Now()

	a, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, workorder.NotFound(op, fmt.Sprintf("application %d does not exist", applicationID))
		}
		return nil, fmt.Errorf("failed to load application %d: %w", applicationID, err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := s.getProjectForUpdate(ctx, tx, op, a.ProjectID)
	if err != nil {
		return nil, err
	}
	if p.ClientID != actorID {
		return nil, workorder.Unauthorized(op, "only the gig owner may accept an application")
	}
	if p.Status != model.ProjectOpen {
		return nil, workorder.InvalidState(op, fmt.Sprintf("project is %s, not OPEN", p.Status))
	}
	if a.Status != model.ApplicationPending {
		return nil, workorder.InvalidState(op, fmt.Sprintf("application is %s, not PENDING", a.Status))
	}

	wo, err := s.createWorkOrderTx(ctx, tx, p, a.CreativeID, a.ProposedRateCents, actorID, now)
	if err != nil {
		return nil, err
	}
	if err := s.applications.UpdateStatusTx(ctx, tx, applicationID, model.ApplicationAccepted); err != nil {
		return nil, err
	}
	if err := s.applications.DeclineOthersTx(ctx, tx, a.ProjectID, applicationID); err != nil {
		return nil, err
	}
	if err := s.projects.UpdateStatusTx(ctx, tx, a.ProjectID, model.ProjectAccepted); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Application accepted",
		zap.Int64("application_id", applicationID),
		zap.Int64("project_id", a.ProjectID),
		zap.Int64("work_order_id", wo.ID),
	)
	return wo, nil
}

// createWorkOrderTx builds the work order and its escrow off the project and
// records the created event, all inside the caller's transaction.
func (s *Service) createWorkOrderTx(ctx context.Context, tx pgx.Tx, p *model.Project, creativeID, rateCents, actorID int64, now time.Time) (*model.WorkOrder, error) {
	wo, escrow, err := workorder.NewWorkOrder(p, creativeID, rateCents, now)
	if err != nil {
		return nil, err
	}

	woID, err := s.workOrders.InsertTx(ctx, tx, wo)
	if err != nil {
		return nil, err
	}
	wo.ID = woID
	escrow.WorkOrderID = woID

	escrowID, err := s.escrows.InsertTx(ctx, tx, escrow)
	if err != nil {
		return nil, err
	}
	escrow.ID = escrowID

	recipientID := creativeID
	if actorID == creativeID {
		recipientID = p.ClientID
	}
	payload := mqcontracts.WorkOrderEventPayload{
		WorkOrderID: woID,
		ActorID:     actorID,
		RecipientID: recipientID,
		OccurredAt:  now,
	}
	if err := outbox.InsertEventInTx(ctx, tx, s.outbox, "workorder", woID, mqcontracts.RoutingWorkOrderCreated, payload); err != nil {
		return nil, fmt.Errorf("failed to record created event: %w", err)
	}
	return wo, nil
}

func (s *Service) getProject(ctx context.Context, op string, id int64) (*model.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, workorder.NotFound(op, fmt.Sprintf("project %d does not exist", id))
		}
		return nil, fmt.Errorf("failed to load project %d: %w", id, err)
	}
	return p, nil
}

func (s *Service) getProjectForUpdate(ctx context.Context, tx pgx.Tx, op string, id int64) (*model.Project, error) {
	p, err := s.projects.GetForUpdate(ctx, tx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, workorder.NotFound(op, fmt.Sprintf("project %d does not exist", id))
		}
		return nil, fmt.Errorf("failed to load project %d: %w", id, err)
	}
	return p, nil
}
