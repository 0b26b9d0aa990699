package repository

import (
	"context"

	"nightapp-server/internal/domain/model"
)

// -----------------------------
// Activities
// -----------------------------

type ActivityRepository interface {
	Save(ctx context.Context, tx Tx, a *model.Activity) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Activity, error)
	// FindActiveByName resolves an activity by name, restricted to active rows.
	// Inactive or unknown names come back as domain.ErrNotFound.
	FindActiveByName(ctx context.Context, tx Tx, name string) (*model.Activity, error)
	List(ctx context.Context, tx Tx, activeOnly bool) ([]*model.Activity, error)
}
