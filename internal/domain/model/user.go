package model

import (
	"time"

	"nightapp-server/internal/domain"

	"github.com/google/uuid"
)

// User is a domain entity representing a registered app member. The points
// balance is denormalized from the ledger and kept in step inside the same
// transaction as every ledger write.
type User struct {
	ID            string
	Username      string
	DisplayName   string
	IsAdmin       bool
	PointsBalance int64
	RegisteredAt  time.Time
	LastActiveAt  time.Time
}

func NewUser(id, username, displayName string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if username == "" {
		return nil, domain.ErrInvalidArgument
	}
	if displayName == "" {
		displayName = username
	}
	u := &User{
		ID:            id,
		Username:      username,
		DisplayName:   displayName,
		IsAdmin:       false,
		PointsBalance: 0,
		RegisteredAt:  time.Now(),
		LastActiveAt:  time.Now(),
	}
	return u, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
func (u *User) Touch()       { u.LastActiveAt = time.Now() }
