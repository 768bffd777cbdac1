package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_StartFinish(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewSessionRepository(pool)

	id, err := repo.Start(ctx, 42)
	require.NoError(t, err)
	assert.Positive(t, id)

	row, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), row.Seed)
	assert.Nil(t, row.FinishedAt)

	require.NoError(t, repo.Finish(ctx, id, 1250, 3, 2))

	row, err = repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1250, row.Score)
	assert.Equal(t, 3, row.Matches)
	assert.Equal(t, 2, row.BestCombo)
	assert.NotNil(t, row.FinishedAt)
}

func TestSessionRepository_NotFound(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewSessionRepository(pool)

	err := repo.Finish(ctx, 999, 1, 1, 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = repo.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRepository_TopSessions(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewSessionRepository(pool)

	scores := []int{300, 900, 600}
	for _, score := range scores {
		id, err := repo.Start(ctx, 0)
		require.NoError(t, err)
		require.NoError(t, repo.Finish(ctx, id, score, 1, 1))
	}
	// unfinished sessions are not ranked
	_, err := repo.Start(ctx, 0)
	require.NoError(t, err)

	top, err := repo.TopSessions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, 900, top[0].Score)
	assert.Equal(t, 600, top[1].Score)
}

func TestShipmentRepository_Collection(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	sessions := NewSessionRepository(pool)
	shipments := NewShipmentRepository(pool)

	id, err := sessions.Start(ctx, 7)
	require.NoError(t, err)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, shipments.Record(ctx, Shipment{
		SessionID: id, Filling: "salmon", Rarity: "common",
		MatchCount: 3, Earned: 1600, Combo: 1, ShippedAt: base,
	}))
	require.NoError(t, shipments.RecordBatch(ctx, []Shipment{
		{SessionID: id, Filling: "salmon", Rarity: "common", MatchCount: 2, Earned: 1400, Combo: 2, ShippedAt: base.Add(time.Minute)},
		{SessionID: id, Filling: "mentaiko", Rarity: "super_rare", MatchCount: 2, Earned: 1600, Combo: 1, ShippedAt: base.Add(2 * time.Minute)},
	}))

	got, err := shipments.BySession(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	book, err := shipments.Collection(ctx)
	require.NoError(t, err)
	require.Len(t, book, 2)

	assert.Equal(t, "salmon", book[0].Filling)
	assert.Equal(t, 5, book[0].Shipped)
	assert.Equal(t, 3000, book[0].Earned)
	assert.True(t, book[0].FirstShipped.Equal(base))

	assert.Equal(t, "mentaiko", book[1].Filling)
	assert.Equal(t, "super_rare", book[1].Rarity)
}

func TestShipmentRepository_RecordBatchEmpty(t *testing.T) {
	repo := NewShipmentRepository(nil)
	assert.NoError(t, repo.RecordBatch(context.Background(), nil))
}

