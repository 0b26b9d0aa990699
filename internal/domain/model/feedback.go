package model

import (
	"time"

	"nightapp-server/internal/domain"

	"github.com/google/uuid"
)

const (
	MoodMin = 1
	MoodMax = 5
)

// Feedback is a member's mood rating for a night out, with an optional free
// text comment. The comment is encrypted before it reaches storage.
type Feedback struct {
	ID        string
	UserID    string
	Mood      int
	Comment   string
	CreatedAt time.Time
}

func NewFeedback(userID string, mood int, comment string) (*Feedback, error) {
	if userID == "" || mood < MoodMin || mood > MoodMax {
		return nil, domain.ErrInvalidArgument
	}
	return &Feedback{
		ID:        uuid.NewString(),
		UserID:    userID,
		Mood:      mood,
		Comment:   comment,
		CreatedAt: time.Now(),
	}, nil
}

func (f *Feedback) IsZero() bool { return f == nil || f.ID == "" }
