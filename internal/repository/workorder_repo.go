package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"workorder-service/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type WorkOrderRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewWorkOrderRepository(db *pgxpool.Pool, logger *zap.Logger) *WorkOrderRepository {
	return &WorkOrderRepository{
		db:     db,
		logger: logger,
	}
}

const workOrderColumns = `
	id, client_id, creative_id, project_id, agreed_rate_cents, budget_type,
	status, deadline, started_at, completed_at, created_at, updated_at
`

func scanWorkOrder(row pgx.Row) (*model.WorkOrder, error) {
	var wo model.WorkOrder
	err := row.Scan(
		&wo.ID,
		&wo.ClientID,
		&wo.CreativeID,
		&wo.ProjectID,
		&wo.AgreedRateCents,
		&wo.BudgetType,
		&wo.Status,
		&wo.Deadline,
		&wo.StartedAt,
		&wo.CompletedAt,
		&wo.CreatedAt,
		&wo.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &wo, nil
}

func (r *WorkOrderRepository) InsertTx(ctx context.Context, tx pgx.Tx, wo *model.WorkOrder) (int64, error) {
	defer observe("insert", "work_orders")()
	r.logger.Debug("Inserting work order",
		zap.Int64("client_id", wo.ClientID),
		zap.Int64("creative_id", wo.CreativeID),
		zap.Int64("project_id", wo.ProjectID),
	)

	query := `
        INSERT INTO work_orders (client_id, creative_id, project_id, agreed_rate_cents, budget_type, status, deadline)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	var id int64
	err := tx.QueryRow(ctx, query,
		wo.ClientID,
		wo.CreativeID,
		wo.ProjectID,
		wo.AgreedRateCents,
		wo.BudgetType,
		wo.Status,
		wo.Deadline,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert work order", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Work order inserted successfully",
		zap.Int64("id", id),
		zap.Int64("project_id", wo.ProjectID),
	)
	return id, nil
}

// GetForUpdate loads a work order under a row lock. Every lifecycle command
// goes through this lock so conflicting transitions on one work order are
// linearized by the database.
func (r *WorkOrderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.WorkOrder, error) {
	defer observe("select_for_update", "work_orders")()
	query := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE id = $1 FOR UPDATE`
	return scanWorkOrder(tx.QueryRow(ctx, query, id))
}

func (r *WorkOrderRepository) GetByID(ctx context.Context, id int64) (*model.WorkOrder, error) {
	defer observe("select", "work_orders")()
	query := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE id = $1`
	return scanWorkOrder(r.db.QueryRow(ctx, query, id))
}

// ListByUser returns every work order the user is a party to, newest first.
func (r *WorkOrderRepository) ListByUser(ctx context.Context, userID int64) ([]model.WorkOrder, error) {
	defer observe("select", "work_orders")()
	query := `
        SELECT ` + workOrderColumns + `
        FROM work_orders
        WHERE client_id = $1 OR creative_id = $1
        ORDER BY created_at DESC
    `

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list work orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []model.WorkOrder
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			r.logger.Error("Failed to scan work order", zap.Error(err))
			return nil, err
		}
		orders = append(orders, *wo)
	}
	return orders, rows.Err()
}

// UpdateTx persists the mutable lifecycle fields of a locked work order.
func (r *WorkOrderRepository) UpdateTx(ctx context.Context, tx pgx.Tx, wo *model.WorkOrder) error {
	defer observe("update", "work_orders")()
	query := `
        UPDATE work_orders
        SET status = $1, started_at = $2, completed_at = $3, updated_at = NOW()
        WHERE id = $4
    `
	tag, err := tx.Exec(ctx, query, wo.Status, wo.StartedAt, wo.CompletedAt, wo.ID)
	if err != nil {
		r.logger.Error("Failed to update work order",
			zap.Int64("id", wo.ID),
			zap.Error(err),
		)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("work order %d: %w", wo.ID, ErrNotFound)
	}
	return nil
}
