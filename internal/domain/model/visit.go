package model

import (
	"time"

	"nightapp-server/internal/domain"

	"github.com/google/uuid"
)

// Visit records that a member was at the venue once. It is deliberately
// minimal; what the visit was worth lives in the points ledger, keyed back
// here through transaction metadata.
type Visit struct {
	ID        string
	UserID    string
	CreatedAt time.Time
}

func NewVisit(userID string) (*Visit, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Visit{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now(),
	}, nil
}

func (v *Visit) IsZero() bool { return v == nil || v.ID == "" }
