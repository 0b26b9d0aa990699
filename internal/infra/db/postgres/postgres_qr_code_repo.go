package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"nightapp-server/internal/domain"
	"nightapp-server/internal/domain/model"
	"nightapp-server/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.QRCodeRepository = (*qrCodeRepo)(nil)

type qrCodeRepo struct{ pool *pgxpool.Pool }

func NewQRCodeRepo(pool *pgxpool.Pool) *qrCodeRepo {
	return &qrCodeRepo{pool: pool}
}

const qrCodeColumns = `id, user_id, code, is_active, expires_at, created_at`

func (r *qrCodeRepo) Save(ctx context.Context, tx repository.Tx, qr *model.QRCode) error {
	const q = `
INSERT INTO qr_codes (id, user_id, code, is_active, expires_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  is_active=$4, expires_at=$5;`

	_, err := execSQL(ctx, r.pool, tx, q, qr.ID, qr.UserID, qr.Code, qr.IsActive, qr.ExpiresAt, qr.CreatedAt)
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

func (r *qrCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.QRCode, error) {
	q := `SELECT ` + qrCodeColumns + ` FROM qr_codes WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanQRCode(row)
}

// FindActiveByCode is the lookup on the visit acceptance path. Expiry is
// checked against the database clock so acceptance and the sweep worker agree
// on what "expired" means.
func (r *qrCodeRepo) FindActiveByCode(ctx context.Context, tx repository.Tx, code string) (*model.QRCode, error) {
	const q = `SELECT ` + qrCodeColumns + ` FROM qr_codes WHERE code=$1 AND is_active=TRUE AND expires_at > NOW();`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	return scanQRCode(row)
}

func (r *qrCodeRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, activeOnly bool) ([]*model.QRCode, error) {
	q := `SELECT ` + qrCodeColumns + ` FROM qr_codes WHERE user_id=$1`
	if activeOnly {
		q += ` AND is_active=TRUE AND expires_at > NOW()`
	}
	q += ` ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.QRCode
	for rows.Next() {
		qr := new(model.QRCode)
		if err := rows.Scan(&qr.ID, &qr.UserID, &qr.Code, &qr.IsActive, &qr.ExpiresAt, &qr.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, qr)
	}
	return out, nil
}

// DeactivateExpired is housekeeping for the sweep worker. Acceptance never
// calls this; it already rejects expired codes by timestamp.
func (r *qrCodeRepo) DeactivateExpired(ctx context.Context, tx repository.Tx, now time.Time) (int64, error) {
	const q = `UPDATE qr_codes SET is_active=FALSE WHERE is_active=TRUE AND expires_at <= $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, now)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return 0, err
		default:
			return 0, domain.ErrOperationFailed
		}
	}
	return cmd.RowsAffected(), nil
}

func scanQRCode(row pgx.Row) (*model.QRCode, error) {
	qr := &model.QRCode{}
	if err := row.Scan(&qr.ID, &qr.UserID, &qr.Code, &qr.IsActive, &qr.ExpiresAt, &qr.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return qr, nil
}
