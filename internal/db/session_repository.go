package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSessionNotFound is returned when a session id does not exist.
var ErrSessionNotFound = errors.New("session not found")

// SessionRow is one row of the sessions table.
type SessionRow struct {
	ID         int64
	Seed       uint64
	StartedAt  time.Time
	FinishedAt *time.Time
	Score      int
	Matches    int
	BestCombo  int
}

// SessionRepository records the start and result of each session.
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// Start inserts a new session row and returns its id.
func (r *SessionRepository) Start(ctx context.Context, seed uint64) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO sessions (seed) VALUES ($1) RETURNING id`, int64(seed),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting session: %w", err)
	}
	return id, nil
}

// Finish stores the final result of a session.
func (r *SessionRepository) Finish(ctx context.Context, id int64, score, matches, bestCombo int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET finished_at = now(), score = $2, matches = $3, best_combo = $4
		WHERE id = $1`,
		id, score, matches, bestCombo)
	if err != nil {
		return fmt.Errorf("finishing session %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finishing session %d: %w", id, ErrSessionNotFound)
	}
	return nil
}

// Get loads one session.
func (r *SessionRepository) Get(ctx context.Context, id int64) (SessionRow, error) {
	var (
		row  SessionRow
		seed int64
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, seed, started_at, finished_at, score, matches, best_combo
		FROM sessions WHERE id = $1`, id,
	).Scan(&row.ID, &seed, &row.StartedAt, &row.FinishedAt, &row.Score, &row.Matches, &row.BestCombo)
	if errors.Is(err, pgx.ErrNoRows) {
		return SessionRow{}, fmt.Errorf("loading session %d: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return SessionRow{}, fmt.Errorf("loading session %d: %w", id, err)
	}
	row.Seed = uint64(seed)
	return row, nil
}

// TopSessions returns the best finished sessions by score.
func (r *SessionRepository) TopSessions(ctx context.Context, limit int) ([]SessionRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, seed, started_at, finished_at, score, matches, best_combo
		FROM sessions
		WHERE finished_at IS NOT NULL
		ORDER BY score DESC, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top sessions: %w", err)
	}
	defer rows.Close()

	result := make([]SessionRow, 0, limit)
	for rows.Next() {
		var (
			row  SessionRow
			seed int64
		)
		if err := rows.Scan(&row.ID, &seed, &row.StartedAt, &row.FinishedAt, &row.Score, &row.Matches, &row.BestCombo); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		row.Seed = uint64(seed)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating session rows: %w", err)
	}
	return result, nil
}
