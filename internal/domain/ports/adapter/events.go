package adapter

import (
	"context"
	"time"
)

// --- Event payloads ---

// VisitAcceptedEvent fans out once a visit has been committed. Consumers are
// downstream analytics and CRM jobs; nothing in the request path depends on
// delivery.
type VisitAcceptedEvent struct {
	VisitID      string    `json:"visit_id"`
	UserID       string    `json:"user_id"`
	ActivityID   string    `json:"activity_id"`
	ActivityName string    `json:"activity_name"`
	Points       int64     `json:"points"`
	Code         string    `json:"code"`
	AcceptedAt   time.Time `json:"accepted_at"`
}

// RewardRedeemedEvent fans out once a redemption has been committed.
type RewardRedeemedEvent struct {
	RedemptionID string    `json:"redemption_id"`
	UserID       string    `json:"user_id"`
	RewardID     string    `json:"reward_id"`
	RewardName   string    `json:"reward_name"`
	CostPoints   int64     `json:"cost_points"`
	RedeemedAt   time.Time `json:"redeemed_at"`
}

// EventPublisher is the hex port for the outbound event stream. Publishing is
// best-effort after commit; implementations must not be able to fail a
// business transaction.
type EventPublisher interface {
	PublishVisitAccepted(ctx context.Context, ev VisitAcceptedEvent) error
	PublishRewardRedeemed(ctx context.Context, ev RewardRedeemedEvent) error
	Close() error
}
