package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"nightapp-server/internal/domain"
	"nightapp-server/internal/domain/model"
	"nightapp-server/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.RewardRepository = (*rewardRepo)(nil)

type rewardRepo struct{ pool *pgxpool.Pool }

func NewRewardRepo(pool *pgxpool.Pool) *rewardRepo {
	return &rewardRepo{pool: pool}
}

const rewardColumns = `id, name, description, cost_points, is_active, created_at`

func (r *rewardRepo) Save(ctx context.Context, tx repository.Tx, rw *model.Reward) error {
	const q = `
INSERT INTO rewards (id, name, description, cost_points, is_active, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  name=$2, description=$3, cost_points=$4, is_active=$5;`

	_, err := execSQL(ctx, r.pool, tx, q, rw.ID, rw.Name, rw.Description, rw.CostPoints, rw.IsActive, rw.CreatedAt)
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

func (r *rewardRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Reward, error) {
	q := `SELECT ` + rewardColumns + ` FROM rewards WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	rw := &model.Reward{}
	if err := row.Scan(&rw.ID, &rw.Name, &rw.Description, &rw.CostPoints, &rw.IsActive, &rw.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return rw, nil
}

func (r *rewardRepo) List(ctx context.Context, tx repository.Tx, activeOnly bool) ([]*model.Reward, error) {
	q := `SELECT ` + rewardColumns + ` FROM rewards`
	if activeOnly {
		q += ` WHERE is_active=TRUE`
	}
	q += ` ORDER BY cost_points ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Reward
	for rows.Next() {
		rw := new(model.Reward)
		if err := rows.Scan(&rw.ID, &rw.Name, &rw.Description, &rw.CostPoints, &rw.IsActive, &rw.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, rw)
	}
	return out, nil
}
