package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB represents a database connection pool
type DB struct {
	*pgxpool.Pool
}

// NewConnection creates a new database connection pool
func NewConnection(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// PingLatency measures a single round trip to the database.
// Used by the status page.
func (db *DB) PingLatency(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := db.Ping(ctx); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}
