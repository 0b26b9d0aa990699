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
var _ repository.ActivityRepository = (*activityRepo)(nil)

type activityRepo struct{ pool *pgxpool.Pool }

func NewActivityRepo(pool *pgxpool.Pool) *activityRepo {
	return &activityRepo{pool: pool}
}

const activityColumns = `id, name, points, is_active, created_at`

func (r *activityRepo) Save(ctx context.Context, tx repository.Tx, a *model.Activity) error {
	const q = `
INSERT INTO activities (id, name, points, is_active, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET
  name=$2, points=$3, is_active=$4;`

	_, err := execSQL(ctx, r.pool, tx, q, a.ID, a.Name, a.Points, a.IsActive, a.CreatedAt)
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

func (r *activityRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Activity, error) {
	q := `SELECT ` + activityColumns + ` FROM activities WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanActivity(row)
}

// FindActiveByName is the lookup on the visit acceptance path; inactive rows
// are filtered here so an inactive activity is indistinguishable from a
// missing one.
func (r *activityRepo) FindActiveByName(ctx context.Context, tx repository.Tx, name string) (*model.Activity, error) {
	const q = `SELECT ` + activityColumns + ` FROM activities WHERE name=$1 AND is_active=TRUE;`
	row, err := pickRow(ctx, r.pool, tx, q, name)
	if err != nil {
		return nil, err
	}
	return scanActivity(row)
}

func (r *activityRepo) List(ctx context.Context, tx repository.Tx, activeOnly bool) ([]*model.Activity, error) {
	q := `SELECT ` + activityColumns + ` FROM activities`
	if activeOnly {
		q += ` WHERE is_active=TRUE`
	}
	q += ` ORDER BY created_at ASC;`
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

	var out []*model.Activity
	for rows.Next() {
		a := new(model.Activity)
		if err := rows.Scan(&a.ID, &a.Name, &a.Points, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, a)
	}
	return out, nil
}

func scanActivity(row pgx.Row) (*model.Activity, error) {
	a := &model.Activity{}
	if err := row.Scan(&a.ID, &a.Name, &a.Points, &a.IsActive, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return a, nil
}
