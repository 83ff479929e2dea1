package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service defines cache operations interface. Values are stored as JSON;
// Get decodes into dest, which must be a pointer.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// GetTyped is Get with the destination type as a type parameter.
func GetTyped[T any](ctx context.Context, c Service, key string) (T, error) {
	var v T
	err := c.Get(ctx, key, &v)
	return v, err
}

var (
	_ Service = (*MemoryCache)(nil)
	_ Service = (*RedisCache)(nil)
	_ Service = (*LayeredCache)(nil)
	_ Service = NopCache{}
)
