//go:build !integration

package redis

import (
	"context"
	"sync"
	"time"
)

// fakeRedis is an in-memory RedisClient that records expirations.
type fakeRedis struct {
	mu      sync.Mutex
	data    map[string]string
	ttls    map[string]time.Duration
	counter map[string]int64
	getErr  error
}

var _ RedisClient = (*fakeRedis)(nil)

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		data:    make(map[string]string),
		ttls:    make(map[string]time.Duration),
		counter: make(map[string]int64),
	}
}

func (f *fakeRedis) Ping(ctx context.Context) error { return nil }

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = expiration
	return nil
}

func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", Nil
	}
	return v, nil
}

func (f *fakeRedis) Incr(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter[key]++
	return f.counter[key], nil
}

func (f *fakeRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ttls[key] = expiration
	return nil
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeRedis) Close() error { return nil }
