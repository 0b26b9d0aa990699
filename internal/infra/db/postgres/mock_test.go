//go:build !integration

package postgres

import (
	"context"
	"time"

	"nightapp-server/internal/domain/model"
	"nightapp-server/internal/domain/ports/repository"
	red "nightapp-server/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerActivityRepo mocks the database repository that the activity decorator wraps.
type mockInnerActivityRepo struct {
	SaveFunc             func(ctx context.Context, tx repository.Tx, a *model.Activity) error
	FindByIDFunc         func(ctx context.Context, tx repository.Tx, id string) (*model.Activity, error)
	FindActiveByNameFunc func(ctx context.Context, tx repository.Tx, name string) (*model.Activity, error)
	ListFunc             func(ctx context.Context, tx repository.Tx, activeOnly bool) ([]*model.Activity, error)
}

func (m *mockInnerActivityRepo) Save(ctx context.Context, tx repository.Tx, a *model.Activity) error {
	return m.SaveFunc(ctx, tx, a)
}
func (m *mockInnerActivityRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Activity, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerActivityRepo) FindActiveByName(ctx context.Context, tx repository.Tx, name string) (*model.Activity, error) {
	return m.FindActiveByNameFunc(ctx, tx, name)
}
func (m *mockInnerActivityRepo) List(ctx context.Context, tx repository.Tx, activeOnly bool) ([]*model.Activity, error) {
	return m.ListFunc(ctx, tx, activeOnly)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	PingFunc   func(ctx context.Context) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc  func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) Close() error { return m.CloseFunc() }
