package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"nightapp-server/internal/domain"
	"nightapp-server/internal/domain/model"
	"nightapp-server/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.PointsLedgerRepository = (*pointsLedgerRepo)(nil)

type pointsLedgerRepo struct{ pool *pgxpool.Pool }

func NewPointsLedgerRepo(pool *pgxpool.Pool) *pointsLedgerRepo {
	return &pointsLedgerRepo{pool: pool}
}

const ledgerColumns = `id, user_id, amount, kind, note, meta, created_at`

// Insert appends one ledger row. There is no update path; the ledger is
// append-only by construction.
func (r *pointsLedgerRepo) Insert(ctx context.Context, tx repository.Tx, t *model.PointsTransaction) error {
	const q = `
INSERT INTO points_transactions (id, user_id, amount, kind, note, meta, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);`

	_, err := execSQL(ctx, r.pool, tx, q, t.ID, t.UserID, t.Amount, t.Kind, t.Note, t.Meta, t.CreatedAt)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return domain.ErrAlreadyExists
			}
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *pointsLedgerRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.PointsTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	// ULIDs sort by creation time, so ordering by id needs no extra index.
	const q = `SELECT ` + ledgerColumns + ` FROM points_transactions WHERE user_id=$1 ORDER BY id DESC OFFSET $2 LIMIT $3;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, offset, limit)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.PointsTransaction
	for rows.Next() {
		t := new(model.PointsTransaction)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Kind, &t.Note, &t.Meta, &t.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *pointsLedgerRepo) SumAmountByKind(ctx context.Context, tx repository.Tx, kind model.PointsKind) (int64, error) {
	const q = `SELECT COALESCE(SUM(amount),0) FROM points_transactions WHERE kind=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, kind)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

// AdjustBalance applies a signed delta to the denormalized balance. The
// points_balance check constraint rejects overdraws, which surfaces as
// ErrInsufficientPoints so callers can treat it as a business outcome.
func (r *pointsLedgerRepo) AdjustBalance(ctx context.Context, tx repository.Tx, userID string, delta int64) error {
	const q = `UPDATE users SET points_balance = points_balance + $2, last_active_at = NOW() WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, userID, delta)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23514" {
				return domain.ErrInsufficientPoints
			}
			return domain.ErrOperationFailed
		}
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
