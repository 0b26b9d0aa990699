package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"nightapp-server/internal/domain/model"
	"nightapp-server/internal/domain/ports/repository"
	"nightapp-server/internal/infra/logging"
	"nightapp-server/internal/infra/metrics"
)

// Compile-time check
var _ LedgerUseCase = (*ledgerUC)(nil)

// LedgerUseCase owns the points ledger. Every balance movement in the system
// goes through Record; nothing else writes ledger rows or touches the
// denormalized balance.
type LedgerUseCase interface {
	// Record appends one ledger row and moves the owner's balance by the
	// row's signed delta. It runs on the caller's transaction handle, so the
	// entry commits or rolls back together with whatever business write
	// produced it. An overdraw surfaces as domain.ErrInsufficientPoints.
	Record(ctx context.Context, tx repository.Tx, userID string, amount int64, kind model.PointsKind, note string, meta map[string]interface{}) (*model.PointsTransaction, error)
	Balance(ctx context.Context, userID string) (int64, error)
	History(ctx context.Context, userID string, offset, limit int) ([]*model.PointsTransaction, error)
}

type ledgerUC struct {
	entries repository.PointsLedgerRepository
	users   repository.UserRepository
	log     *zerolog.Logger
}

func NewLedgerUseCase(entries repository.PointsLedgerRepository, users repository.UserRepository, logger *zerolog.Logger) *ledgerUC {
	return &ledgerUC{entries: entries, users: users, log: logger}
}

func (u *ledgerUC) Record(ctx context.Context, tx repository.Tx, userID string, amount int64, kind model.PointsKind, note string, meta map[string]interface{}) (*model.PointsTransaction, error) {
	defer logging.TraceDuration(u.log, "LedgerUC.Record")()

	entry, err := model.NewPointsTransaction(userID, amount, kind, note, meta)
	if err != nil {
		return nil, err
	}
	if err := u.entries.Insert(ctx, tx, entry); err != nil {
		return nil, err
	}
	if err := u.entries.AdjustBalance(ctx, tx, userID, entry.Delta()); err != nil {
		return nil, err
	}

	metrics.IncPointsTransaction(string(kind), amount)
	return entry, nil
}

func (u *ledgerUC) Balance(ctx context.Context, userID string) (int64, error) {
	defer logging.TraceDuration(u.log, "LedgerUC.Balance")()

	usr, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return 0, err
	}
	return usr.PointsBalance, nil
}

func (u *ledgerUC) History(ctx context.Context, userID string, offset, limit int) ([]*model.PointsTransaction, error) {
	defer logging.TraceDuration(u.log, "LedgerUC.History")()
	return u.entries.ListByUser(ctx, repository.NoTX, userID, offset, limit)
}
