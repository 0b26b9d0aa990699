package model

import (
	"time"

	"nightapp-server/internal/domain"

	"github.com/google/uuid"
)

// Activity is something a member earns points for: entering the venue,
// a bar purchase, an event check-in. Only active activities are eligible
// when a visit is accepted.
type Activity struct {
	ID        string
	Name      string
	Points    int64
	IsActive  bool
	CreatedAt time.Time
}

func (a *Activity) IsZero() bool { return a == nil || a.ID == "" }

// NewActivity validates and constructs an activity worth a fixed number of points.
func NewActivity(id, name string, points int64) (*Activity, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if name == "" || points <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Activity{
		ID:        id,
		Name:      name,
		Points:    points,
		IsActive:  true,
		CreatedAt: time.Now(),
	}, nil
}
