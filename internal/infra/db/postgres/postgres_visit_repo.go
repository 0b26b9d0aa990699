package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"nightapp-server/internal/domain"
	"nightapp-server/internal/domain/model"
	"nightapp-server/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.VisitRepository = (*visitRepo)(nil)

type visitRepo struct{ pool *pgxpool.Pool }

func NewVisitRepo(pool *pgxpool.Pool) *visitRepo {
	return &visitRepo{pool: pool}
}

// Save is a plain insert. Visits are immutable; there is no upsert path.
func (r *visitRepo) Save(ctx context.Context, tx repository.Tx, v *model.Visit) error {
	const q = `INSERT INTO visits (id, user_id, created_at) VALUES ($1,$2,$3);`
	_, err := execSQL(ctx, r.pool, tx, q, v.ID, v.UserID, v.CreatedAt)
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

func (r *visitRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Visit, error) {
	const q = `SELECT id, user_id, created_at FROM visits WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	v := &model.Visit{}
	if err := row.Scan(&v.ID, &v.UserID, &v.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return v, nil
}

func (r *visitRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Visit, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, user_id, created_at FROM visits WHERE user_id=$1 ORDER BY created_at DESC OFFSET $2 LIMIT $3;`
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

	var out []*model.Visit
	for rows.Next() {
		v := new(model.Visit)
		if err := rows.Scan(&v.ID, &v.UserID, &v.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *visitRepo) CountVisits(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM visits;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *visitRepo) CountVisitsSince(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM visits WHERE created_at >= $1;`, since)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}
