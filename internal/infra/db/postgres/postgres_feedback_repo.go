package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"nightapp-server/internal/domain"
	"nightapp-server/internal/domain/model"
	"nightapp-server/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.FeedbackRepository = (*feedbackRepo)(nil)

type feedbackRepo struct{ pool *pgxpool.Pool }

func NewFeedbackRepo(pool *pgxpool.Pool) *feedbackRepo {
	return &feedbackRepo{pool: pool}
}

// Save inserts one feedback row. Comment arrives already encrypted; this
// layer never sees plaintext.
func (r *feedbackRepo) Save(ctx context.Context, tx repository.Tx, f *model.Feedback) error {
	const q = `INSERT INTO feedback (id, user_id, mood, comment, created_at) VALUES ($1,$2,$3,$4,$5);`
	_, err := execSQL(ctx, r.pool, tx, q, f.ID, f.UserID, f.Mood, f.Comment, f.CreatedAt)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *feedbackRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.Feedback, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, user_id, mood, comment, created_at FROM feedback ORDER BY created_at DESC LIMIT $1;`
	rows, err := queryRows(ctx, r.pool, tx, q, limit)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Feedback
	for rows.Next() {
		f := new(model.Feedback)
		if err := rows.Scan(&f.ID, &f.UserID, &f.Mood, &f.Comment, &f.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, f)
	}
	return out, nil
}

func (r *feedbackRepo) MoodCounts(ctx context.Context, tx repository.Tx, since time.Time) (map[int]int, error) {
	const q = `SELECT mood, COUNT(*) FROM feedback WHERE created_at >= $1 GROUP BY mood;`
	rows, err := queryRows(ctx, r.pool, tx, q, since)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var mood, n int
		if err := rows.Scan(&mood, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[mood] = n
	}
	return out, nil
}
