package clickhouse

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/creasty/defaults"
)

// Config describes one ClickHouse pool. Zero fields take the defaults below.
type Config struct {
	Host             string
	Port             int           `default:"9000"`
	Database         string        `default:"default"`
	User             string        `default:"default"`
	Password         string
	MaxOpenConns     int           `default:"10"`
	MaxIdleConns     int           `default:"5"`
	ConnMaxLifetime  time.Duration `default:"5m"`
	DialTimeout      time.Duration `default:"5s"`
	ReadTimeout      time.Duration `default:"10s"`
	MaxExecutionTime time.Duration
	UseHTTP          bool
	// AsyncInsert lets the server buffer small inserts such as per-symbol bar batches.
	AsyncInsert  bool
	WaitForAsync bool
}

func (c *Config) normalize() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("clickhouse defaults: %w", err)
	}
	if c.Host == "" {
		return fmt.Errorf("clickhouse host is required")
	}
	return nil
}

// DSN renders the clickhouse-go connection URL.
func (c Config) DSN() string {
	u := url.URL{
		Scheme: "clickhouse",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	if c.UseHTTP {
		u.Scheme = "http"
	}

	q := url.Values{}
	if c.DialTimeout > 0 {
		q.Set("dial_timeout", c.DialTimeout.String())
	}
	if c.ReadTimeout > 0 {
		q.Set("read_timeout", c.ReadTimeout.String())
	}
	if c.MaxExecutionTime > 0 {
		q.Set("max_execution_time", strconv.Itoa(int(c.MaxExecutionTime.Seconds())))
	}
	if c.AsyncInsert {
		q.Set("async_insert", "1")
		if c.WaitForAsync {
			q.Set("wait_for_async_insert", "1")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
