//go:build !integration

package postgres

import (
	"context"
	"time"

	"telegram-event-reminder/internal/domain/model"
	"telegram-event-reminder/internal/domain/ports/repository"
	red "telegram-event-reminder/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerCompanyRepo mocks the database repository that the company decorator wraps.
type mockInnerCompanyRepo struct {
	SaveFunc       func(ctx context.Context, tx repository.Tx, c *model.Company) error
	FindByNameFunc func(ctx context.Context, tx repository.Tx, name string) (*model.Company, error)
	FindByIDFunc   func(ctx context.Context, tx repository.Tx, id int64) (*model.Company, error)
	ListAllFunc    func(ctx context.Context, tx repository.Tx) ([]*model.Company, error)
}

func (m *mockInnerCompanyRepo) Save(ctx context.Context, tx repository.Tx, c *model.Company) error {
	return m.SaveFunc(ctx, tx, c)
}
func (m *mockInnerCompanyRepo) FindByName(ctx context.Context, tx repository.Tx, name string) (*model.Company, error) {
	return m.FindByNameFunc(ctx, tx, name)
}
func (m *mockInnerCompanyRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Company, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerCompanyRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Company, error) {
	return m.ListAllFunc(ctx, tx)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc func(ctx context.Context, key string) (string, error)
	SetFunc func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc func(ctx context.Context, keys ...string) error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc == nil {
		return "", red.Nil
	}
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc == nil {
		return nil
	}
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error                      { return nil }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) { return 0, nil }
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}
func (m *mockRedisClient) Close() error { return nil }
