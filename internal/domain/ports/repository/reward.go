package repository

import (
	"context"

	"nightapp-server/internal/domain/model"
)

// -----------------------------
// Rewards & Redemptions
// -----------------------------

type RewardRepository interface {
	Save(ctx context.Context, tx Tx, r *model.Reward) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Reward, error)
	List(ctx context.Context, tx Tx, activeOnly bool) ([]*model.Reward, error)
}

type RedemptionRepository interface {
	Save(ctx context.Context, tx Tx, r *model.Redemption) error
	ListByUser(ctx context.Context, tx Tx, userID string, offset, limit int) ([]*model.Redemption, error)
	CountRedemptions(ctx context.Context, tx Tx) (int, error)
}
