package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"workorder-service/internal/model"
)

type MilestoneRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMilestoneRepository(db *pgxpool.Pool, logger *zap.Logger) *MilestoneRepository {
	return &MilestoneRepository{
		db:     db,
		logger: logger,
	}
}

const milestoneColumns = `
	id, work_order_id, title, description, amount_cents, due_date, status, position, created_at, updated_at
`

func scanMilestone(row pgx.Row) (*model.Milestone, error) {
	var m model.Milestone
	err := row.Scan(
		&m.ID,
		&m.WorkOrderID,
		&m.Title,
		&m.Description,
		&m.AmountCents,
		&m.DueDate,
		&m.Status,
		&m.Position,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MilestoneRepository) InsertTx(ctx context.Context, tx pgx.Tx, m *model.Milestone) (int64, error) {
	defer observe("insert", "milestones")()
	r.logger.Debug("Inserting milestone",
		zap.Int64("work_order_id", m.WorkOrderID),
		zap.String("title", m.Title),
		zap.Int("position", m.Position),
	)

	query := `
        INSERT INTO milestones (work_order_id, title, description, amount_cents, due_date, status, position)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	var id int64
	err := tx.QueryRow(ctx, query,
		m.WorkOrderID,
		m.Title,
		m.Description,
		m.AmountCents,
		m.DueDate,
		m.Status,
		m.Position,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert milestone", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Milestone inserted successfully",
		zap.Int64("id", id),
		zap.Int64("work_order_id", m.WorkOrderID),
	)
	return id, nil
}

// ListByWorkOrderTx loads the milestones of a locked work order in sequence
// order. Runs inside the command transaction.
func (r *MilestoneRepository) ListByWorkOrderTx(ctx context.Context, tx pgx.Tx, workOrderID int64) ([]*model.Milestone, error) {
	defer observe("select", "milestones")()
	query := `
        SELECT ` + milestoneColumns + `
        FROM milestones
        WHERE work_order_id = $1
        ORDER BY position ASC
    `

	rows, err := tx.Query(ctx, query, workOrderID)
	if err != nil {
		r.logger.Error("Failed to list milestones", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var milestones []*model.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			r.logger.Error("Failed to scan milestone", zap.Error(err))
			return nil, err
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

func (r *MilestoneRepository) UpdateTx(ctx context.Context, tx pgx.Tx, m *model.Milestone) error {
	defer observe("update", "milestones")()
	query := `
        UPDATE milestones
        SET title = $1, description = $2, amount_cents = $3, due_date = $4,
            status = $5, position = $6, updated_at = NOW()
        WHERE id = $7
    `
	_, err := tx.Exec(ctx, query,
		m.Title,
		m.Description,
		m.AmountCents,
		m.DueDate,
		m.Status,
		m.Position,
		m.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update milestone",
			zap.Int64("id", m.ID),
			zap.Error(err),
		)
	}
	return err
}

func (r *MilestoneRepository) DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error {
	defer observe("delete", "milestones")()
	_, err := tx.Exec(ctx, `DELETE FROM milestones WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete milestone",
			zap.Int64("id", id),
			zap.Error(err),
		)
	}
	return err
}
