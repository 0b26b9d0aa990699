package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"nightapp-server/internal/domain"
	"nightapp-server/internal/domain/model"
	"nightapp-server/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.RedemptionRepository = (*redemptionRepo)(nil)

type redemptionRepo struct{ pool *pgxpool.Pool }

func NewRedemptionRepo(pool *pgxpool.Pool) *redemptionRepo {
	return &redemptionRepo{pool: pool}
}

func (r *redemptionRepo) Save(ctx context.Context, tx repository.Tx, rd *model.Redemption) error {
	const q = `INSERT INTO redemptions (id, user_id, reward_id, created_at) VALUES ($1,$2,$3,$4);`
	_, err := execSQL(ctx, r.pool, tx, q, rd.ID, rd.UserID, rd.RewardID, rd.CreatedAt)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *redemptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Redemption, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, user_id, reward_id, created_at FROM redemptions WHERE user_id=$1 ORDER BY created_at DESC OFFSET $2 LIMIT $3;`
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

	var out []*model.Redemption
	for rows.Next() {
		rd := new(model.Redemption)
		if err := rows.Scan(&rd.ID, &rd.UserID, &rd.RewardID, &rd.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, rd)
	}
	return out, nil
}

func (r *redemptionRepo) CountRedemptions(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM redemptions;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}
