package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"workorder-service/internal/model"
)

type EscrowRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewEscrowRepository(db *pgxpool.Pool, logger *zap.Logger) *EscrowRepository {
	return &EscrowRepository{
		db:     db,
		logger: logger,
	}
}

const escrowColumns = `
	id, work_order_id, total_amount_cents, funded_amount_cents, released_amount_cents, status, created_at, updated_at
`

func scanEscrow(row pgx.Row) (*model.Escrow, error) {
	var e model.Escrow
	err := row.Scan(
		&e.ID,
		&e.WorkOrderID,
		&e.TotalAmountCents,
		&e.FundedAmountCents,
		&e.ReleasedAmountCents,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *EscrowRepository) InsertTx(ctx context.Context, tx pgx.Tx, e *model.Escrow) (int64, error) {
	defer observe("insert", "escrows")()
	r.logger.Debug("Inserting escrow",
		zap.Int64("work_order_id", e.WorkOrderID),
		zap.Int64("total_amount_cents", e.TotalAmountCents),
	)

	query := `
        INSERT INTO escrows (work_order_id, total_amount_cents, funded_amount_cents, released_amount_cents, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	var id int64
	err := tx.QueryRow(ctx, query,
		e.WorkOrderID,
		e.TotalAmountCents,
		e.FundedAmountCents,
		e.ReleasedAmountCents,
		e.Status,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert escrow", zap.Error(err))
		return 0, err
	}
	return id, nil
}

// GetByWorkOrderTx loads the escrow inside the command transaction. The work
// order row lock already serializes access, so no separate escrow lock is
// needed.
func (r *EscrowRepository) GetByWorkOrderTx(ctx context.Context, tx pgx.Tx, workOrderID int64) (*model.Escrow, error) {
	defer observe("select", "escrows")()
	query := `SELECT ` + escrowColumns + ` FROM escrows WHERE work_order_id = $1`
	return scanEscrow(tx.QueryRow(ctx, query, workOrderID))
}

func (r *EscrowRepository) UpdateTx(ctx context.Context, tx pgx.Tx, e *model.Escrow) error {
	defer observe("update", "escrows")()
	query := `
        UPDATE escrows
        SET total_amount_cents = $1, funded_amount_cents = $2, released_amount_cents = $3,
            status = $4, updated_at = NOW()
        WHERE id = $5
    `
	_, err := tx.Exec(ctx, query,
		e.TotalAmountCents,
		e.FundedAmountCents,
		e.ReleasedAmountCents,
		e.Status,
		e.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update escrow",
			zap.Int64("id", e.ID),
			zap.Error(err),
		)
	}
	return err
}
