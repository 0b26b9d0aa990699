package events

import (
	"context"

	"nightapp-server/internal/domain/ports/adapter"
)

// NoopPublisher drops every event. It is the default when no broker URL is
// configured, which keeps single-node deployments free of a RabbitMQ
// dependency.
type NoopPublisher struct{}

var _ adapter.EventPublisher = (*NoopPublisher)(nil)

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (NoopPublisher) PublishVisitAccepted(context.Context, adapter.VisitAcceptedEvent) error {
	return nil
}

func (NoopPublisher) PublishRewardRedeemed(context.Context, adapter.RewardRedeemedEvent) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
