package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"workorder-service/internal/model"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

const projectColumns = `
	id, client_id, title, description, rate_cents, budget_type, status, requested_creative_id, created_at, updated_at
`

func scanProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	err := row.Scan(
		&p.ID,
		&p.ClientID,
		&p.Title,
		&p.Description,
		&p.RateCents,
		&p.BudgetType,
		&p.Status,
		&p.RequestedCreativeID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) (int64, error) {
	defer observe("insert", "projects")()
	r.logger.Debug("Inserting project",
		zap.Int64("client_id", p.ClientID),
		zap.String("title", p.Title),
		zap.String("status", string(p.Status)),
	)

	query := `
        INSERT INTO projects (client_id, title, description, rate_cents, budget_type, status, requested_creative_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	var id int64
	err := r.db.QueryRow(ctx, query,
		p.ClientID,
		p.Title,
		p.Description,
		p.RateCents,
		p.BudgetType,
		p.Status,
		p.RequestedCreativeID,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Project inserted successfully",
		zap.Int64("id", id),
		zap.Int64("client_id", p.ClientID),
	)
	return id, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*model.Project, error) {
	defer observe("select", "projects")()
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	return scanProject(r.db.QueryRow(ctx, query, id))
}

// GetForUpdate locks the project row while a request or application is being
// answered; two concurrent accepts cannot both create a work order.
func (r *ProjectRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Project, error) {
	defer observe("select_for_update", "projects")()
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 FOR UPDATE`
	return scanProject(tx.QueryRow(ctx, query, id))
}

func (r *ProjectRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id int64, status model.ProjectStatus) error {
	defer observe("update", "projects")()
	_, err := tx.Exec(ctx, `UPDATE projects SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		r.logger.Error("Failed to update project status",
			zap.Int64("id", id),
			zap.Error(err),
		)
	}
	return err
}
