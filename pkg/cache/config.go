package cache

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/redis/go-redis/v9"
)

// RedisConfig describes the shared bar cache. URL, when set, wins over Addr,
// Password and DB.
type RedisConfig struct {
	URL          string
	Addr         string        `default:"localhost:6379"`
	Password     string
	DB           int
	PoolSize     int           `default:"10"`
	MinIdleConns int           `default:"2"`
	PoolTimeout  time.Duration `default:"30s"`
	DialTimeout  time.Duration `default:"5s"`
	Prefix       string        `default:"finsignal"`
}

func (c *RedisConfig) options() (*redis.Options, error) {
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("redis defaults: %w", err)
	}
	opts := &redis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB}
	if c.URL != "" {
		parsed, err := redis.ParseURL(c.URL)
		if err != nil {
			return nil, fmt.Errorf("redis url: %w", err)
		}
		opts = parsed
	}
	opts.PoolSize = c.PoolSize
	opts.MinIdleConns = c.MinIdleConns
	opts.PoolTimeout = c.PoolTimeout
	opts.DialTimeout = c.DialTimeout
	return opts, nil
}

// MemoryConfig sizes the in-process cache.
type MemoryConfig struct {
	MaxSize         int           `default:"1000"`
	CleanupInterval time.Duration `default:"5m"`
	// DefaultTTL applies when Set is called without an expiry.
	DefaultTTL time.Duration `default:"15m"`
}

// LayeredConfig sizes the L1 tier of a LayeredCache.
type LayeredConfig struct {
	MemoryMaxSize int           `default:"1000"`
	MemoryTTL     time.Duration `default:"5m"` // L1 entries never outlive this
}
