package events

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"nightapp-server/internal/domain/ports/adapter"
	"nightapp-server/internal/infra/metrics"
	"nightapp-server/internal/infra/worker"
)

const publishTimeout = 5 * time.Second

// AsyncPublisher hands publishing off to the worker pool so the request path
// returns as soon as the event is queued. A saturated pool drops the event
// rather than stalling the caller.
type AsyncPublisher struct {
	inner adapter.EventPublisher
	pool  *worker.Pool
	log   *zerolog.Logger
}

var _ adapter.EventPublisher = (*AsyncPublisher)(nil)

func NewAsyncPublisher(inner adapter.EventPublisher, pool *worker.Pool, logger *zerolog.Logger) *AsyncPublisher {
	l := logger.With().Str("component", "async_publisher").Logger()
	return &AsyncPublisher{inner: inner, pool: pool, log: &l}
}

func (p *AsyncPublisher) PublishVisitAccepted(_ context.Context, ev adapter.VisitAcceptedEvent) error {
	return p.submit(QueueVisitAccepted, func(ctx context.Context) error {
		return p.inner.PublishVisitAccepted(ctx, ev)
	})
}

func (p *AsyncPublisher) PublishRewardRedeemed(_ context.Context, ev adapter.RewardRedeemedEvent) error {
	return p.submit(QueueRewardRedeemed, func(ctx context.Context) error {
		return p.inner.PublishRewardRedeemed(ctx, ev)
	})
}

func (p *AsyncPublisher) submit(queue string, task worker.Task) error {
	err := p.pool.Submit(func(ctx context.Context) error {
		// The pool hands us the app lifetime context; cap each publish so a
		// hung broker cannot pin a worker.
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		return task(ctx)
	})
	if err != nil {
		metrics.IncEventPublished(queue, "dropped")
		p.log.Warn().Str("queue", queue).Msg("event dropped, worker queue full")
	}
	// Events are best-effort; a drop never surfaces to the caller.
	return nil
}

func (p *AsyncPublisher) Close() error { return p.inner.Close() }
