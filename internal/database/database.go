package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the pgxpool.Pool shared by every directory repository.
type DB struct {
	pool *pgxpool.Pool
}

// Option tweaks the pool configuration before the pool is created.
type Option func(*pgxpool.Config)

// WithMaxConns caps the number of open connections.
func WithMaxConns(n int32) Option {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MaxConns = n
		}
	}
}

// WithHealthCheckPeriod sets how often idle connections are checked.
func WithHealthCheckPeriod(d time.Duration) Option {
	return func(c *pgxpool.Config) {
		if d > 0 {
			c.HealthCheckPeriod = d
		}
	}
}

// Open parses databaseURL, creates the pool and verifies it with a ping.
func Open(ctx context.Context, databaseURL string, opts ...Option) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	for _, opt := range opts {
		opt(poolCfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Ping reports whether the database answers.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Pool exposes the pool to repositories.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}
