package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"nightapp-server/internal/domain/model"
	"nightapp-server/internal/domain/ports/repository"
	"nightapp-server/internal/infra/logging"
)

// Compile-time check
var _ ActivityUseCase = (*activityUC)(nil)

// ActivityUseCase manages the catalog of point-earning activities.
type ActivityUseCase interface {
	Create(ctx context.Context, name string, points int64) (*model.Activity, error)
	SetActive(ctx context.Context, id string, active bool) error
	Get(ctx context.Context, id string) (*model.Activity, error)
	List(ctx context.Context, activeOnly bool) ([]*model.Activity, error)
}

type activityUC struct {
	activities repository.ActivityRepository
	log        *zerolog.Logger
}

func NewActivityUseCase(activities repository.ActivityRepository, logger *zerolog.Logger) *activityUC {
	return &activityUC{activities: activities, log: logger}
}

func (u *activityUC) Create(ctx context.Context, name string, points int64) (*model.Activity, error) {
	defer logging.TraceDuration(u.log, "ActivityUC.Create")()

	a, err := model.NewActivity("", name, points)
	if err != nil {
		return nil, err
	}
	if err := u.activities.Save(ctx, repository.NoTX, a); err != nil {
		return nil, err
	}
	u.log.Info().Str("activity", a.Name).Int64("points", a.Points).Msg("activity created")
	return a, nil
}

func (u *activityUC) SetActive(ctx context.Context, id string, active bool) error {
	defer logging.TraceDuration(u.log, "ActivityUC.SetActive")()

	a, err := u.activities.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return err
	}
	if a.IsActive == active {
		return nil
	}
	a.IsActive = active
	if err := u.activities.Save(ctx, repository.NoTX, a); err != nil {
		return err
	}
	u.log.Info().Str("activity", a.Name).Bool("active", active).Msg("activity toggled")
	return nil
}

func (u *activityUC) Get(ctx context.Context, id string) (*model.Activity, error) {
	defer logging.TraceDuration(u.log, "ActivityUC.Get")()
	return u.activities.FindByID(ctx, repository.NoTX, id)
}

func (u *activityUC) List(ctx context.Context, activeOnly bool) ([]*model.Activity, error) {
	defer logging.TraceDuration(u.log, "ActivityUC.List")()
	return u.activities.List(ctx, repository.NoTX, activeOnly)
}
