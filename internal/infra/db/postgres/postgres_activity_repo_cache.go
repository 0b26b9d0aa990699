package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nightapp-server/internal/domain/model"
	"nightapp-server/internal/domain/ports/repository"
	"nightapp-server/internal/infra/metrics"
	red "nightapp-server/internal/infra/redis"
)

var _ repository.ActivityRepository = (*activityRepoCacheDecorator)(nil)

// activityRepoCacheDecorator caches activity reads in redis. The activity
// catalogue is tiny and nearly static while the app fetches it on every
// screen load, which makes it worth fronting with a cache.
type activityRepoCacheDecorator struct {
	inner repository.ActivityRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewActivityRepoCacheDecorator(inner repository.ActivityRepository, cache red.RedisClient) repository.ActivityRepository {
	return &activityRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   1 * time.Hour,
	}
}

func (d *activityRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Activity, error) {
	// Transactional reads bypass the cache; they may be part of a
	// read-modify-write that needs the row lock.
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}

	key := fmt.Sprintf("activity:%s", id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var a model.Activity
		if json.Unmarshal([]byte(val), &a) == nil {
			metrics.IncCacheRequest("activity", "hit")
			return &a, nil
		}
	}

	metrics.IncCacheRequest("activity", "miss")
	a, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if a != nil {
		bytes, _ := json.Marshal(a)
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return a, nil
}

func (d *activityRepoCacheDecorator) FindActiveByName(ctx context.Context, tx repository.Tx, name string) (*model.Activity, error) {
	if tx != nil {
		return d.inner.FindActiveByName(ctx, tx, name)
	}

	key := fmt.Sprintf("activity:name:%s", name)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var a model.Activity
		if json.Unmarshal([]byte(val), &a) == nil {
			metrics.IncCacheRequest("activity", "hit")
			return &a, nil
		}
	}

	metrics.IncCacheRequest("activity", "miss")
	a, err := d.inner.FindActiveByName(ctx, tx, name)
	if err != nil {
		return nil, err
	}
	if a != nil {
		bytes, _ := json.Marshal(a)
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return a, nil
}

// For write operations, we must invalidate the cache.
func (d *activityRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, a *model.Activity) error {
	d.cache.Del(ctx, fmt.Sprintf("activity:%s", a.ID))
	d.cache.Del(ctx, fmt.Sprintf("activity:name:%s", a.Name))
	// Also invalidate the cached lists
	d.cache.Del(ctx, "activities:all", "activities:active")
	return d.inner.Save(ctx, tx, a)
}

// Also cache the activity lists
func (d *activityRepoCacheDecorator) List(ctx context.Context, tx repository.Tx, activeOnly bool) ([]*model.Activity, error) {
	key := "activities:all"
	if activeOnly {
		key = "activities:active"
	}
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var as []*model.Activity
		if json.Unmarshal([]byte(val), &as) == nil {
			metrics.IncCacheRequest("activity_list", "hit")
			return as, nil
		}
	}

	metrics.IncCacheRequest("activity_list", "miss")
	as, err := d.inner.List(ctx, tx, activeOnly)
	if err != nil {
		return nil, err
	}
	if len(as) > 0 {
		bytes, _ := json.Marshal(as)
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return as, nil
}
