package repository

import (
	"context"
	"time"

	"nightapp-server/internal/domain/model"
)

// -----------------------------
// Visits
// -----------------------------

type VisitRepository interface {
	Save(ctx context.Context, tx Tx, v *model.Visit) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Visit, error)
	ListByUser(ctx context.Context, tx Tx, userID string, offset, limit int) ([]*model.Visit, error)
	CountVisits(ctx context.Context, tx Tx) (int, error)
	CountVisitsSince(ctx context.Context, tx Tx, since time.Time) (int, error)
}
