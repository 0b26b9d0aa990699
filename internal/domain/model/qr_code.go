package model

import (
	"time"

	"nightapp-server/internal/domain"

	"github.com/google/uuid"
)

// QRCode is a member's scannable code. A code stays redeemable until it
// expires or is revoked; accepting a visit never consumes it, so the same
// code can back any number of visits inside its validity window.
type QRCode struct {
	ID        string
	UserID    string
	Code      string
	IsActive  bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

func NewQRCode(id, userID, code string, ttl time.Duration) (*QRCode, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if userID == "" || code == "" || ttl <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &QRCode{
		ID:        id,
		UserID:    userID,
		Code:      code,
		IsActive:  true,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

func (q *QRCode) IsZero() bool { return q == nil || q.ID == "" }

// Redeemable reports whether the code may back a visit at the given instant.
func (q *QRCode) Redeemable(at time.Time) bool {
	return q != nil && q.IsActive && q.ExpiresAt.After(at)
}
