package marketdata

import (
	"context"
	"errors"
	"time"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/domain/repository"
	"FinSignal/pkg/cache"
	applogger "FinSignal/pkg/logger"
)

const (
	lockTTL      = 30 * time.Second
	lockWait     = 100 * time.Millisecond
	lockAttempts = 20
)

// Cached serves repeated fetches for the same symbol and window from a cache.
// Concurrent misses for one key are collapsed behind a short lock; a caller
// that cannot get the lock waits for the holder's result and falls back to
// fetching itself.
type Cached struct {
	inner   repository.MarketDataProvider
	cache   cache.Service
	ttl     time.Duration
	store   repository.BarStore // optional write-through
	metrics repository.Metrics
	log     *applogger.Logger
}

type CachedOption func(*Cached)

// WithStore writes every remote fetch into s as well.
func WithStore(s repository.BarStore) CachedOption {
	return func(c *Cached) { c.store = s }
}

func WithMetrics(m repository.Metrics) CachedOption {
	return func(c *Cached) { c.metrics = m }
}

func WithLogger(l *applogger.Logger) CachedOption {
	return func(c *Cached) {
		if l != nil {
			c.log = l
		}
	}
}

func NewCached(inner repository.MarketDataProvider, c cache.Service, ttl time.Duration, opts ...CachedOption) *Cached {
	cp := &Cached{inner: inner, cache: c, ttl: ttl, log: applogger.Nop()}
	for _, opt := range opts {
		opt(cp)
	}
	if cp.cache == nil {
		cp.cache = cache.NopCache{}
	}
	cp.log = cp.log.With(applogger.String("provider", inner.Name()))
	return cp
}

func (c *Cached) Name() string { return c.inner.Name() }

type cachedBar struct {
	D string  `json:"d"`
	O float64 `json:"o"`
	H float64 `json:"h"`
	L float64 `json:"l"`
	C float64 `json:"c"`
	V int64   `json:"v"`
}

func encodeBars(s models.Series) []cachedBar {
	out := make([]cachedBar, len(s))
	for i, b := range s {
		out[i] = cachedBar{D: b.Date.Format("2006-01-02"), O: b.Open, H: b.High, L: b.Low, C: b.Close, V: b.Volume}
	}
	return out
}

func decodeBars(in []cachedBar) (models.Series, error) {
	out := make(models.Series, len(in))
	for i, b := range in {
		d, err := time.Parse("2006-01-02", b.D)
		if err != nil {
			return nil, err
		}
		out[i] = models.Bar{Date: d, Open: b.O, High: b.H, Low: b.L, Close: b.C, Volume: b.V}
	}
	return out, nil
}

func (c *Cached) lookup(ctx context.Context, key string) (models.Series, bool) {
	var raw []cachedBar
	if err := c.cache.Get(ctx, key, &raw); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.log.Warn("cache read failed", applogger.String("key", key), applogger.Error(err))
		}
		return nil, false
	}
	s, err := decodeBars(raw)
	if err != nil {
		c.log.Warn("cache entry corrupt", applogger.String("key", key), applogger.Error(err))
		_ = c.cache.Delete(ctx, key)
		return nil, false
	}
	return s, true
}

func (c *Cached) Fetch(ctx context.Context, symbol string, start, end time.Time) (models.Series, error) {
	key := cache.GenerateKeyWithParams("bars", c.inner.Name(), symbol, start, end)
	if s, ok := c.lookup(ctx, key); ok {
		return s, nil
	}

	lockKey := "lock:" + key
	locked, err := c.cache.TryLock(ctx, lockKey, lockTTL)
	if err != nil {
		c.log.Warn("cache lock failed", applogger.String("key", key), applogger.Error(err))
	}
	if locked {
		defer func() { _ = c.cache.Unlock(context.WithoutCancel(ctx), lockKey) }()
	} else if err == nil {
		if s, ok := c.waitFor(ctx, key); ok {
			return s, nil
		}
	}

	started := time.Now()
	s, err := c.inner.Fetch(ctx, symbol, start, end)
	if c.metrics != nil {
		c.metrics.RecordProviderLatency(c.inner.Name(), time.Since(started))
	}
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordError("provider_" + c.inner.Name())
		}
		return nil, err
	}

	// Empty answers are not cached so a newly listed symbol shows up promptly.
	if len(s) > 0 {
		if err := c.cache.Set(ctx, key, encodeBars(s), c.ttl); err != nil {
			c.log.Warn("cache write failed", applogger.String("key", key), applogger.Error(err))
		}
		if c.store != nil {
			if err := c.store.SaveBars(ctx, symbol, s); err != nil {
				c.log.Warn("bar store write failed", applogger.String("symbol", symbol), applogger.Error(err))
			}
		}
	}
	return s, nil
}

func (c *Cached) waitFor(ctx context.Context, key string) (models.Series, bool) {
	for i := 0; i < lockAttempts; i++ {
		select {
		case <-ctx.Done():
			return nil, false
		case <-time.After(lockWait):
		}
		if s, ok := c.lookup(ctx, key); ok {
			return s, true
		}
	}
	return nil, false
}
