package redis

import (
	"context"
	"encoding/json"
	"time"

	"nightapp-server/internal/infra/metrics"
	"nightapp-server/internal/usecase"
)

const statsTotalsKey = "stats:totals"

// StatsCache decorates the stats use case with a short-lived redis cache.
// The totals query fans out across several tables; the dashboard polls it
// often enough that recomputing every hit is wasted work.
type StatsCache struct {
	inner  usecase.StatsUseCase
	client *redClient
	ttl    time.Duration
}

var _ usecase.StatsUseCase = (*StatsCache)(nil)

func NewStatsCache(inner usecase.StatsUseCase, client *redClient, ttl time.Duration) *StatsCache {
	return &StatsCache{
		inner:  inner,
		client: client,
		ttl:    ttl,
	}
}

func (c *StatsCache) Totals(ctx context.Context) (*usecase.StatsSummary, error) {
	if data, err := c.client.Get(ctx, statsTotalsKey); err == nil {
		var s usecase.StatsSummary
		if err := json.Unmarshal([]byte(data), &s); err == nil {
			metrics.IncCacheRequest("stats", "hit")
			return &s, nil
		}
	}
	metrics.IncCacheRequest("stats", "miss")

	s, err := c.inner.Totals(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(s); err == nil {
		// Cache write failures are invisible to callers; the next hit recomputes.
		_ = c.client.Set(ctx, statsTotalsKey, data, c.ttl)
	}
	return s, nil
}

func (c *StatsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, statsTotalsKey)
}
