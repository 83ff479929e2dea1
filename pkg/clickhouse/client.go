package clickhouse

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	_ "github.com/ClickHouse/clickhouse-go/v2"
)

// Client manages ClickHouse connection pool.
type Client struct {
	db       *sql.DB
	database string
	sq       squirrel.StatementBuilderType
}

// NewClient opens the pool and pings it within DialTimeout.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	db, err := sql.Open("clickhouse", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}

	return NewFromDB(db, cfg.Database), nil
}

// NewFromDB wraps an already opened pool.
func NewFromDB(db *sql.DB, database string) *Client {
	return &Client{
		db:       db,
		database: database,
		sq:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// DB returns *sql.DB for direct use.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Database is the database every table lives in.
func (c *Client) Database() string {
	return c.database
}

// Table qualifies name with the client's database.
func (c *Client) Table(name string) string {
	return Qualify(c.database, name)
}

// Builder returns a squirrel builder using ClickHouse '?' placeholders.
func (c *Client) Builder() squirrel.StatementBuilderType {
	return c.sq
}

// Query runs a built SELECT.
func (c *Client) Query(ctx context.Context, q squirrel.Sqlizer) (*sql.Rows, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return c.db.QueryContext(ctx, query, args...)
}

// Exec runs a built statement.
func (c *Client) Exec(ctx context.Context, q squirrel.Sqlizer) (sql.Result, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build statement: %w", err)
	}
	return c.db.ExecContext(ctx, query, args...)
}

// Health performs health check.
func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes connection pool.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// InitSchema runs idempotent DDL statements in order.
func (c *Client) InitSchema(ctx context.Context, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Qualify joins database and table, leaving table alone when db is empty.
func Qualify(db, table string) string {
	if db == "" {
		return table
	}
	return db + "." + table
}
