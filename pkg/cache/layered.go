package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/creasty/defaults"
)

// LayeredCache puts a short-lived memory tier (L1) in front of a shared
// remote tier (L2). Locks and health always go to L2.
type LayeredCache struct {
	memCache *MemoryCache
	remote   Service
	memTTL   time.Duration
}

// NewLayeredCache wraps remote, usually a RedisCache.
func NewLayeredCache(remote Service, cfg LayeredConfig) *LayeredCache {
	_ = defaults.Set(&cfg)
	return &LayeredCache{
		memCache: NewMemoryCache(MemoryConfig{MaxSize: cfg.MemoryMaxSize, DefaultTTL: cfg.MemoryTTL}),
		remote:   remote,
		memTTL:   cfg.MemoryTTL,
	}
}

func (lc *LayeredCache) l1TTL(expiration time.Duration) time.Duration {
	if expiration <= 0 || expiration > lc.memTTL {
		return lc.memTTL
	}
	return expiration
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	// Write-through: L2 first so L1 never holds what L2 rejected.
	if err := lc.remote.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	_ = lc.memCache.Set(ctx, key, value, lc.l1TTL(expiration))
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
		if err := lc.memCache.Get(ctx, key, dest); err == nil {
		return nil
	}

	var raw json.RawMessage
	if err := lc.remote.Get(ctx, key, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return err
	}

	// Promote the encoded form so L1 decodes exactly what L2 held.
	lc.memCache.setRaw(key, raw, lc.memTTL)
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.memCache.Delete(ctx, keys...)
	return lc.remote.Delete(ctx, keys...)
}

func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	if ok, _ := lc.memCache.Exists(ctx, keys...); ok {
		return true, nil
	}
	return lc.remote.Exists(ctx, keys...)
}

func (lc *LayeredCache) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return lc.remote.TryLock(ctx, key, ttl)
}

func (lc *LayeredCache) Unlock(ctx context.Context, key string) error {
	return lc.remote.Unlock(ctx, key)
}

func (lc *LayeredCache) Ping(ctx context.Context) error {
	return lc.remote.Ping(ctx)
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	_ = lc.memCache.Close()
	return lc.remote.Close()
}
