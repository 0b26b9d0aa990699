package model

import (
	"time"

	"nightapp-server/internal/domain"

	"github.com/google/uuid"
)

// Reward is something points buy: a free drink, queue skip, merch.
type Reward struct {
	ID          string
	Name        string
	Description string
	CostPoints  int64
	IsActive    bool
	CreatedAt   time.Time
}

func (r *Reward) IsZero() bool { return r == nil || r.ID == "" }

func NewReward(id, name, description string, costPoints int64) (*Reward, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if name == "" || costPoints <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Reward{
		ID:          id,
		Name:        name,
		Description: description,
		CostPoints:  costPoints,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}, nil
}
