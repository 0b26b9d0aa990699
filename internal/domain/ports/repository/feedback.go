package repository

import (
	"context"
	"time"

	"nightapp-server/internal/domain/model"
)

// -----------------------------
// Feedback
// -----------------------------

type FeedbackRepository interface {
	Save(ctx context.Context, tx Tx, f *model.Feedback) error
	ListRecent(ctx context.Context, tx Tx, limit int) ([]*model.Feedback, error)
	// MoodCounts buckets feedback rows since the given instant by mood value.
	MoodCounts(ctx context.Context, tx Tx, since time.Time) (map[int]int, error)
}
