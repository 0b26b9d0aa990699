package model

import (
	"time"

	"nightapp-server/internal/domain"

	"github.com/google/uuid"
)

// Redemption links a member to a reward they claimed. The points debit lives
// in the ledger, keyed back here through transaction metadata.
type Redemption struct {
	ID        string
	UserID    string
	RewardID  string
	CreatedAt time.Time
}

func NewRedemption(userID, rewardID string) (*Redemption, error) {
	if userID == "" || rewardID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Redemption{
		ID:        uuid.NewString(),
		UserID:    userID,
		RewardID:  rewardID,
		CreatedAt: time.Now(),
	}, nil
}

func (r *Redemption) IsZero() bool { return r == nil || r.ID == "" }
