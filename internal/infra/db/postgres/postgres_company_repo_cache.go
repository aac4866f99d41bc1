package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"telegram-event-reminder/internal/domain/model"
	"telegram-event-reminder/internal/domain/ports/repository"
	"telegram-event-reminder/internal/infra/metrics"
	red "telegram-event-reminder/internal/infra/redis"
)

var _ repository.CompanyRepository = (*companyRepoCacheDecorator)(nil)

const companyListKey = "companies:all"

// companyRepoCacheDecorator serves the company keyboard and name lookups from Redis.
// Reads inside a transaction always go to the inner repository.
type companyRepoCacheDecorator struct {
	inner repository.CompanyRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewCompanyRepoCacheDecorator(inner repository.CompanyRepository, cache red.RedisClient, ttl time.Duration) repository.CompanyRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &companyRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func companyNameKey(name string) string {
	return "company:name:" + strings.ToLower(strings.TrimSpace(name))
}

func companyIDKey(id int64) string { return fmt.Sprintf("company:id:%d", id) }

// For write operations, we must invalidate the cache.
func (d *companyRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, c *model.Company) error {
	if err := d.inner.Save(ctx, tx, c); err != nil {
		return err
	}
	_ = d.cache.Del(ctx, companyListKey, companyNameKey(c.Name), companyIDKey(c.ID))
	return nil
}

func (d *companyRepoCacheDecorator) FindByName(ctx context.Context, tx repository.Tx, name string) (*model.Company, error) {
	if tx != nil {
		return d.inner.FindByName(ctx, tx, name)
	}
	return cached(ctx, d, "company", companyNameKey(name), func() (*model.Company, error) {
		return d.inner.FindByName(ctx, tx, name)
	})
}

func (d *companyRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Company, error) {
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}
	return cached(ctx, d, "company", companyIDKey(id), func() (*model.Company, error) {
		return d.inner.FindByID(ctx, tx, id)
	})
}

func (d *companyRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Company, error) {
	if tx != nil {
		return d.inner.ListAll(ctx, tx)
	}
	list, err := cached(ctx, d, "company_list", companyListKey, func() (*[]*model.Company, error) {
		l, err := d.inner.ListAll(ctx, tx)
		if err != nil || len(l) == 0 {
			return nil, err
		}
		return &l, nil
	})
	if err != nil || list == nil {
		return nil, err
	}
	return *list, nil
}

// cached returns the JSON value under key, falling back to load and storing its non-nil result.
func cached[T any](ctx context.Context, d *companyRepoCacheDecorator, name, key string, load func() (*T, error)) (*T, error) {
	if val, err := d.cache.Get(ctx, key); err == nil {
		var v T
		if json.Unmarshal([]byte(val), &v) == nil {
			metrics.IncCacheRequest(name, "hit")
			return &v, nil
		}
	}

	metrics.IncCacheRequest(name, "miss")
	v, err := load()
	if err != nil {
		return nil, err
	}
	if v != nil {
		if b, err := json.Marshal(v); err == nil {
			_ = d.cache.Set(ctx, key, b, d.ttl)
		}
	}
	return v, nil
}
