package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"nightapp-server/internal/domain"
	"nightapp-server/internal/domain/model"
	"nightapp-server/internal/domain/ports/adapter"
	"nightapp-server/internal/domain/ports/repository"
	"nightapp-server/internal/infra/logging"
	"nightapp-server/internal/infra/metrics"
)

// Compile-time check
var _ RewardUseCase = (*rewardUC)(nil)

// Locker serializes redemptions per user so double-submits from a flaky
// client cannot race each other to the balance. The redis locker satisfies
// this interface.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

const redeemLockTTL = 10 * time.Second

type RewardUseCase interface {
	// Redeem spends points on a reward. The redemption row and the ledger
	// debit share one transaction; an overdraw rolls both back and surfaces
	// as domain.ErrInsufficientPoints.
	Redeem(ctx context.Context, userID, rewardID string) (*model.Redemption, error)
	Create(ctx context.Context, name, description string, costPoints int64) (*model.Reward, error)
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context, activeOnly bool) ([]*model.Reward, error)
	ListRedemptions(ctx context.Context, userID string, offset, limit int) ([]*model.Redemption, error)
}

type rewardUC struct {
	rewards     repository.RewardRepository
	redemptions repository.RedemptionRepository
	ledger      LedgerUseCase
	tm          repository.TransactionManager
	locker      Locker
	events      adapter.EventPublisher
	log         *zerolog.Logger
}

func NewRewardUseCase(
	rewards repository.RewardRepository,
	redemptions repository.RedemptionRepository,
	ledger LedgerUseCase,
	tm repository.TransactionManager,
	locker Locker,
	events adapter.EventPublisher,
	logger *zerolog.Logger,
) *rewardUC {
	return &rewardUC{
		rewards:     rewards,
		redemptions: redemptions,
		ledger:      ledger,
		tm:          tm,
		locker:      locker,
		events:      events,
		log:         logger,
	}
}

func (u *rewardUC) Redeem(ctx context.Context, userID, rewardID string) (*model.Redemption, error) {
	defer logging.TraceDuration(u.log, "RewardUC.Redeem")()

	lockKey := "redeem:" + userID
	token, err := u.locker.TryLock(ctx, lockKey, redeemLockTTL)
	if err != nil {
		metrics.IncRewardRedemption("locked")
		u.log.Warn().Str("user_id", userID).Msg("redemption already in progress")
		return nil, err
	}
	defer func() { _ = u.locker.Unlock(ctx, lockKey, token) }()

	var (
		redemption *model.Redemption
		reward     *model.Reward
	)
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		r, err := u.rewards.FindByID(ctx, tx, rewardID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrRewardUnavailable
			}
			return err
		}
		if !r.IsActive {
			return domain.ErrRewardUnavailable
		}

		rd, err := model.NewRedemption(userID, r.ID)
		if err != nil {
			return err
		}
		if err := u.redemptions.Save(ctx, tx, rd); err != nil {
			return err
		}

		meta := map[string]interface{}{
			"reward_id":     r.ID,
			"redemption_id": rd.ID,
		}
		if _, err := u.ledger.Record(ctx, tx, userID, r.CostPoints, model.PointsKindSpend, "Points spent on "+r.Name, meta); err != nil {
			return err
		}

		redemption, reward = rd, r
		return nil
	})
	if err != nil {
		metrics.IncRewardRedemption(redeemOutcome(err))
		u.log.Error().Err(err).
			Str("user_id", userID).
			Str("reward_id", rewardID).
			Msg("redemption failed")
		return nil, err
	}

	metrics.IncRewardRedemption("redeemed")
	u.log.Info().
		Str("user_id", userID).
		Str("reward", reward.Name).
		Int64("cost", reward.CostPoints).
		Msg("reward redeemed")

	_ = u.events.PublishRewardRedeemed(ctx, adapter.RewardRedeemedEvent{
		RedemptionID: redemption.ID,
		UserID:       userID,
		RewardID:     reward.ID,
		RewardName:   reward.Name,
		CostPoints:   reward.CostPoints,
		RedeemedAt:   redemption.CreatedAt,
	})
	return redemption, nil
}

func redeemOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientPoints):
		return "insufficient_points"
	case errors.Is(err, domain.ErrRewardUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

func (u *rewardUC) Create(ctx context.Context, name, description string, costPoints int64) (*model.Reward, error) {
	defer logging.TraceDuration(u.log, "RewardUC.Create")()

	r, err := model.NewReward("", name, description, costPoints)
	if err != nil {
		return nil, err
	}
	if err := u.rewards.Save(ctx, repository.NoTX, r); err != nil {
		return nil, err
	}
	u.log.Info().Str("reward", r.Name).Int64("cost", r.CostPoints).Msg("reward created")
	return r, nil
}

func (u *rewardUC) SetActive(ctx context.Context, id string, active bool) error {
	defer logging.TraceDuration(u.log, "RewardUC.SetActive")()

	r, err := u.rewards.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return err
	}
	if r.IsActive == active {
		return nil
	}
	r.IsActive = active
	return u.rewards.Save(ctx, repository.NoTX, r)
}

func (u *rewardUC) List(ctx context.Context, activeOnly bool) ([]*model.Reward, error) {
	defer logging.TraceDuration(u.log, "RewardUC.List")()
	return u.rewards.List(ctx, repository.NoTX, activeOnly)
}

func (u *rewardUC) ListRedemptions(ctx context.Context, userID string, offset, limit int) ([]*model.Redemption, error) {
	defer logging.TraceDuration(u.log, "RewardUC.ListRedemptions")()
	return u.redemptions.ListByUser(ctx, repository.NoTX, userID, offset, limit)
}
