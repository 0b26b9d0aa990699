package repository

import (
	"context"

	"nightapp-server/internal/domain/model"
)

// -----------------------------
// Points Ledger
// -----------------------------

// PointsLedgerRepository persists the append-only points ledger. Ledger rows
// are never updated or deleted; the user's denormalized balance is adjusted
// in the same transaction as the insert.
type PointsLedgerRepository interface {
	Insert(ctx context.Context, tx Tx, t *model.PointsTransaction) error
	ListByUser(ctx context.Context, tx Tx, userID string, offset, limit int) ([]*model.PointsTransaction, error)
	// SumAmountByKind totals the Amount column for one kind across all users.
	SumAmountByKind(ctx context.Context, tx Tx, kind model.PointsKind) (int64, error)
	// AdjustBalance applies a signed delta to users.points_balance. The
	// balance check constraint turns an overdraw into ErrInsufficientPoints.
	AdjustBalance(ctx context.Context, tx Tx, userID string, delta int64) error
}
