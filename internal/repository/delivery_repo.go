package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"workorder-service/internal/model"
)

type DeliveryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewDeliveryRepository(db *pgxpool.Pool, logger *zap.Logger) *DeliveryRepository {
	return &DeliveryRepository{
		db:     db,
		logger: logger,
	}
}

const deliveryColumns = `
	id, work_order_id, milestone_id, message, attachments, status, revision_note, created_at, updated_at
`

func scanDelivery(row pgx.Row) (*model.Delivery, error) {
	var d model.Delivery
	err := row.Scan(
		&d.ID,
		&d.WorkOrderID,
		&d.MilestoneID,
		&d.Message,
		&d.Attachments,
		&d.Status,
		&d.RevisionNote,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DeliveryRepository) InsertTx(ctx context.Context, tx pgx.Tx, d *model.Delivery) (int64, error) {
	defer observe("insert", "deliveries")()
	r.logger.Debug("Inserting delivery",
		zap.Int64("work_order_id", d.WorkOrderID),
		zap.Int("attachment_count", len(d.Attachments)),
	)

	query := `
        INSERT INTO deliveries (work_order_id, milestone_id, message, attachments, status, revision_note)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	var id int64
	err := tx.QueryRow(ctx, query,
		d.WorkOrderID,
		d.MilestoneID,
		d.Message,
		d.Attachments,
		d.Status,
		d.RevisionNote,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert delivery", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Delivery inserted successfully",
		zap.Int64("id", id),
		zap.Int64("work_order_id", d.WorkOrderID),
	)
	return id, nil
}

// FindWorkOrderID resolves which work order a delivery belongs to, so
// delivery-keyed commands can take the work order lock first.
func (r *DeliveryRepository) FindWorkOrderID(ctx context.Context, deliveryID int64) (int64, error) {
	defer observe("select", "deliveries")()
	var workOrderID int64
	err := r.db.QueryRow(ctx, `SELECT work_order_id FROM deliveries WHERE id = $1`, deliveryID).Scan(&workOrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return workOrderID, nil
}

// ListByWorkOrderTx loads the deliveries of a locked work order, oldest first.
func (r *DeliveryRepository) ListByWorkOrderTx(ctx context.Context, tx pgx.Tx, workOrderID int64) ([]*model.Delivery, error) {
	defer observe("select", "deliveries")()
	query := `
        SELECT ` + deliveryColumns + `
        FROM deliveries
        WHERE work_order_id = $1
        ORDER BY created_at ASC, id ASC
    `

	rows, err := tx.Query(ctx, query, workOrderID)
	if err != nil {
		r.logger.Error("Failed to list deliveries", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var deliveries []*model.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			r.logger.Error("Failed to scan delivery", zap.Error(err))
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

func (r *DeliveryRepository) UpdateTx(ctx context.Context, tx pgx.Tx, d *model.Delivery) error {
	defer observe("update", "deliveries")()
	query := `
        UPDATE deliveries
        SET status = $1, revision_note = $2, updated_at = NOW()
        WHERE id = $3
    `
	_, err := tx.Exec(ctx, query, d.Status, d.RevisionNote, d.ID)
	if err != nil {
		r.logger.Error("Failed to update delivery",
			zap.Int64("id", d.ID),
			zap.Error(err),
		)
	}
	return err
}
