// Package events carries committed domain events to RabbitMQ. Publishing is
// best-effort: a broker outage is logged and counted but never fails the
// request that produced the event.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"nightapp-server/internal/domain/ports/adapter"
	"nightapp-server/internal/infra/metrics"
)

const (
	QueueVisitAccepted  = "visit.accepted"
	QueueRewardRedeemed = "reward.redeemed"
)

// AMQPPublisher publishes events to durable queues on the default exchange.
// The connection is opened lazily and re-opened after a broker restart.
type AMQPPublisher struct {
	url string
	log *zerolog.Logger

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	declared map[string]bool
}

var _ adapter.EventPublisher = (*AMQPPublisher)(nil)

func NewAMQPPublisher(url string, logger *zerolog.Logger) *AMQPPublisher {
	l := logger.With().Str("component", "amqp_publisher").Logger()
	return &AMQPPublisher{
		url:      url,
		log:      &l,
		declared: make(map[string]bool),
	}
}

func (p *AMQPPublisher) PublishVisitAccepted(ctx context.Context, ev adapter.VisitAcceptedEvent) error {
	return p.publish(ctx, QueueVisitAccepted, ev)
}

func (p *AMQPPublisher) PublishRewardRedeemed(ctx context.Context, ev adapter.RewardRedeemedEvent) error {
	return p.publish(ctx, QueueRewardRedeemed, ev)
}

func (p *AMQPPublisher) publish(ctx context.Context, queue string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		metrics.IncEventPublished(queue, "error")
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel(queue)
	if err != nil {
		// One retry on a fresh connection covers the common case of a
		// broker restart between two publishes.
		p.reset()
		if ch, err = p.channel(queue); err != nil {
			metrics.IncEventPublished(queue, "error")
			p.log.Warn().Err(err).Str("queue", queue).Msg("broker unavailable")
			return err
		}
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		p.reset()
		metrics.IncEventPublished(queue, "error")
		p.log.Warn().Err(err).Str("queue", queue).Msg("publish failed")
		return err
	}

	metrics.IncEventPublished(queue, "ok")
	return nil
}

// channel returns an open channel with the target queue declared. Callers must
// hold p.mu.
func (p *AMQPPublisher) channel(queue string) (*amqp.Channel, error) {
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			return nil, fmt.Errorf("dial broker: %w", err)
		}
		p.conn = conn
		p.ch = nil
		p.declared = make(map[string]bool)
	}
	if p.ch == nil {
		ch, err := p.conn.Channel()
		if err != nil {
			return nil, fmt.Errorf("open channel: %w", err)
		}
		p.ch = ch
	}
	if !p.declared[queue] {
		// Durable so events survive a broker restart.
		if _, err := p.ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("declare queue %s: %w", queue, err)
		}
		p.declared[queue] = true
	}
	return p.ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
	p.declared = make(map[string]bool)
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
