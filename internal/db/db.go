// Package db persists finished sessions and the shipment ledger (which
// fillings were cleared, and when) in PostgreSQL.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgx connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns a DB handle.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the database connection pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Sessions returns a session repository on this pool.
func (d *DB) Sessions() *SessionRepository {
	return NewSessionRepository(d.pool)
}

// Shipments returns a shipment repository on this pool.
func (d *DB) Shipments() *ShipmentRepository {
	return NewShipmentRepository(d.pool)
}
