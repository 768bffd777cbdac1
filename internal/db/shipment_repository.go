package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Shipment is one cleared match: a batch of wrapped onigiri shipped out.
type Shipment struct {
	SessionID  int64
	Filling    string
	Rarity     string
	MatchCount int
	Earned     int
	Combo      int
	ShippedAt  time.Time
}

// CollectionEntry is one page of the collection book: a filling and how
// much of it has ever been shipped.
type CollectionEntry struct {
	Filling      string
	Rarity       string
	Shipped      int
	Earned       int
	FirstShipped time.Time
}

// ShipmentRepository manages the shipment ledger.
type ShipmentRepository struct {
	db *pgxpool.Pool
}

// NewShipmentRepository creates a new ShipmentRepository.
func NewShipmentRepository(db *pgxpool.Pool) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

// Record inserts one shipment. A zero ShippedAt means now.
func (r *ShipmentRepository) Record(ctx context.Context, s Shipment) error {
	if s.ShippedAt.IsZero() {
		s.ShippedAt = time.Now()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO shipments (session_id, filling, rarity, match_count, earned, combo, shipped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.SessionID, s.Filling, s.Rarity, s.MatchCount, s.Earned, s.Combo, s.ShippedAt)
	if err != nil {
		return fmt.Errorf("inserting shipment of %s: %w", s.Filling, err)
	}
	return nil
}

// RecordBatch inserts shipments in one COPY.
func (r *ShipmentRepository) RecordBatch(ctx context.Context, batch []Shipment) error {
	if len(batch) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([][]any, 0, len(batch))
	for _, s := range batch {
		if s.ShippedAt.IsZero() {
			s.ShippedAt = now
		}
		rows = append(rows, []any{s.SessionID, s.Filling, s.Rarity, s.MatchCount, s.Earned, s.Combo, s.ShippedAt})
	}

	_, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"shipments"},
		[]string{"session_id", "filling", "rarity", "match_count", "earned", "combo", "shipped_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copying %d shipments: %w", len(batch), err)
	}
	return nil
}

// BySession returns the shipments of one session in insertion order.
func (r *ShipmentRepository) BySession(ctx context.Context, sessionID int64) ([]Shipment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT session_id, filling, rarity, match_count, earned, combo, shipped_at
		FROM shipments
		WHERE session_id = $1
		ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying shipments for session %d: %w", sessionID, err)
	}
	defer rows.Close()

	var result []Shipment
	for rows.Next() {
		var s Shipment
		if err := rows.Scan(&s.SessionID, &s.Filling, &s.Rarity, &s.MatchCount, &s.Earned, &s.Combo, &s.ShippedAt); err != nil {
			return nil, fmt.Errorf("scanning shipment row: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shipment rows: %w", err)
	}
	return result, nil
}

// Collection returns per-filling totals across all sessions, ordered by
// first shipment.
func (r *ShipmentRepository) Collection(ctx context.Context) ([]CollectionEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT filling, MIN(rarity), SUM(match_count), SUM(earned), MIN(shipped_at)
		FROM shipments
		GROUP BY filling
		ORDER BY MIN(shipped_at), filling`)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}
	defer rows.Close()

	result := make([]CollectionEntry, 0, 16)
	for rows.Next() {
		var (
			e       CollectionEntry
			shipped int64
			earned  int64
		)
		if err := rows.Scan(&e.Filling, &e.Rarity, &shipped, &earned, &e.FirstShipped); err != nil {
			return nil, fmt.Errorf("scanning collection row: %w", err)
		}
		e.Shipped = int(shipped)
		e.Earned = int(earned)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collection rows: %w", err)
	}
	return result, nil
}
