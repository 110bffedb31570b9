package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"workorder-service/internal/model"
)

type ApplicationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewApplicationRepository(db *pgxpool.Pool, logger *zap.Logger) *ApplicationRepository {
	return &ApplicationRepository{
		db:     db,
		logger: logger,
	}
}

const applicationColumns = `
	id, project_id, creative_id, cover_letter, proposed_rate_cents, status, created_at
`

func scanApplication(row pgx.Row) (*model.Application, error) {
	var a model.Application
	err := row.Scan(
		&a.ID,
		&a.ProjectID,
		&a.CreativeID,
		&a.CoverLetter,
		&a.ProposedRateCents,
		&a.Status,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *ApplicationRepository) Insert(ctx context.Context, a *model.Application) (int64, error) {
	defer observe("insert", "applications")()
	r.logger.Debug("Inserting application",
		zap.Int64("project_id", a.ProjectID),
		zap.Int64("creative_id", a.CreativeID),
	)

	query := `
        INSERT INTO applications (project_id, creative_id, cover_letter, proposed_rate_cents, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	var id int64
	err := r.db.QueryRow(ctx, query,
		a.ProjectID,
		a.CreativeID,
		a.CoverLetter,
		a.ProposedRateCents,
		a.Status,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert application", zap.Error(err))
		return 0, err
	}
	return id, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*model.Application, error) {
	defer observe("select", "applications")()
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return scanApplication(r.db.QueryRow(ctx, query, id))
}

func (r *ApplicationRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id int64, status model.ApplicationStatus) error {
	defer observe("update", "applications")()
	_, err := tx.Exec(ctx, `UPDATE applications SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		r.logger.Error("Failed to update application status",
			zap.Int64("id", id),
			zap.Error(err),
		)
	}
	return err
}

// DeclineOthersTx declines every other pending application on the project once
// one has been accepted.
func (r *ApplicationRepository) DeclineOthersTx(ctx context.Context, tx pgx.Tx, projectID, acceptedID int64) error {
	defer observe("update", "applications")()
	query := `
        UPDATE applications
        SET status = $1
        WHERE project_id = $2 AND id <> $3 AND status = $4
    `
	_, err := tx.Exec(ctx, query, model.ApplicationDeclined, projectID, acceptedID, model.ApplicationPending)
	if err != nil {
		r.logger.Error("Failed to decline other applications",
			zap.Int64("project_id", projectID),
			zap.Error(err),
		)
	}
	return err
}
