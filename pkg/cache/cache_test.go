package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	Day   string  `json:"day"`
	Close float64 `json:"close"`
}

func newTestMemory(t *testing.T, cfg MemoryConfig) (*MemoryCache, *time.Time) {
	t.Helper()
	mc := NewMemoryCache(cfg)
	t.Cleanup(func() { _ = mc.Close() })
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return clock }
	return mc, &clock
}

func TestMemoryCacheRoundTripsStructs(t *testing.T) {
	mc, _ := newTestMemory(t, MemoryConfig{})
	ctx := context.Background()

	in := []point{{"2024-02-29", 101.5}, {"2024-03-01", 102}}
	require.NoError(t, mc.Set(ctx, "bars", in, time.Minute))

	var out []point
	require.NoError(t, mc.Get(ctx, "bars", &out))
	assert.Equal(t, in, out)

	in[0].Close = 0
	out = nil
	require.NoError(t, mc.Get(ctx, "bars", &out))
	assert.Equal(t, 101.5, out[0].Close, "stored copy is independent of the caller's slice")

	got, err := GetTyped[[]point](ctx, mc, "bars")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc, clock := newTestMemory(t, MemoryConfig{})
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", 1, time.Minute))
	*clock = clock.Add(2 * time.Minute)

	var v int
	assert.ErrorIs(t, mc.Get(ctx, "k", &v), ErrCacheMiss)
	ok, err := mc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc, clock := newTestMemory(t, MemoryConfig{MaxSize: 2})
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", 1, 0))
	*clock = clock.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "b", 2, 0))
	*clock = clock.Add(time.Second)

	var v int
	require.NoError(t, mc.Get(ctx, "a", &v)) // a is now newer than b
	*clock = clock.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "c", 3, 0))

	assert.Equal(t, 2, mc.Len())
	assert.ErrorIs(t, mc.Get(ctx, "b", &v), ErrCacheMiss)
	assert.NoError(t, mc.Get(ctx, "a", &v))
	assert.NoError(t, mc.Get(ctx, "c", &v))
}

func TestMemoryCacheLock(t *testing.T) {
	mc, clock := newTestMemory(t, MemoryConfig{})
	ctx := context.Background()

	ok, err := mc.TryLock(ctx, "lock:x", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = mc.TryLock(ctx, "lock:x", time.Second)
	assert.False(t, ok)

	*clock = clock.Add(2 * time.Second)
	ok, _ = mc.TryLock(ctx, "lock:x", time.Second)
	assert.True(t, ok, "expired lock can be taken again")

	require.NoError(t, mc.Unlock(ctx, "lock:x"))
	ok, _ = mc.TryLock(ctx, "lock:x", time.Second)
	assert.True(t, ok)
}

func TestNopCacheAlwaysMisses(t *testing.T) {
	var c Service = NopCache{}
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	var v int
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrCacheMiss)
}

func TestGenerateKeyWithParams(t *testing.T) {
	day := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, "bars:yahoo:THYAO.IS:2024-03-01:140", GenerateKeyWithParams("bars", "yahoo", "THYAO.IS", day, 140))
	assert.Equal(t, "a:b", GenerateKey("a", "b"))
}

func TestRedisConfigOptions(t *testing.T) {
	cfg := RedisConfig{Password: "s3cret", DB: 2}
	opts, err := cfg.options()
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, "s3cret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 10, opts.PoolSize)
	assert.Equal(t, "finsignal", cfg.Prefix)

	cfg = RedisConfig{URL: "redis://:pw@cache.internal:6380/3", Addr: "ignored:1"}
	opts, err = cfg.options()
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, 5*time.Second, opts.DialTimeout)

	_, err = (&RedisConfig{URL: "http://nope"}).options()
	assert.Error(t, err)
}

func TestRedisCacheKeys(t *testing.T) {
	rc := NewRedisCacheFromClient(nil, "finsignal")
	assert.Equal(t, "finsignal:bars:yahoo", rc.wrapKey("bars:yahoo"))
	assert.Equal(t, []string{"finsignal:a", "finsignal:b"}, rc.wrapKeys("a", "b"))
	assert.NotEmpty(t, rc.owner)
}

func TestLayeredCachePromotesFromRemote(t *testing.T) {
	remote, _ := newTestMemory(t, MemoryConfig{})
	lc := NewLayeredCache(remote, LayeredConfig{MemoryTTL: time.Minute})
	t.Cleanup(func() { _ = lc.memCache.Close() })
	ctx := context.Background()

	require.NoError(t, remote.Set(ctx, "k", point{"2024-03-01", 10}, time.Hour))
	assert.Equal(t, 0, lc.memCache.Len())

	var p point
	require.NoError(t, lc.Get(ctx, "k", &p))
	assert.Equal(t, 10.0, p.Close)
	assert.Equal(t, 1, lc.memCache.Len())

	require.NoError(t, lc.Delete(ctx, "k"))
	assert.ErrorIs(t, lc.Get(ctx, "k", &p), ErrCacheMiss)
}
