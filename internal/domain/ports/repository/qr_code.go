package repository

import (
	"context"
	"time"

	"nightapp-server/internal/domain/model"
)

// -----------------------------
// QR Codes
// -----------------------------

type QRCodeRepository interface {
	Save(ctx context.Context, tx Tx, q *model.QRCode) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.QRCode, error)
	// FindActiveByCode resolves a code string to its row, restricted to rows
	// that are active and not yet expired at the database clock. Anything
	// else comes back as domain.ErrNotFound.
	FindActiveByCode(ctx context.Context, tx Tx, code string) (*model.QRCode, error)
	ListByUser(ctx context.Context, tx Tx, userID string, activeOnly bool) ([]*model.QRCode, error)
	// DeactivateExpired flips is_active off for every row whose expiry has
	// passed and returns how many rows were touched.
	DeactivateExpired(ctx context.Context, tx Tx, now time.Time) (int64, error)
}
