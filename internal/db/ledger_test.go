package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/onigiri/internal/model"
	"github.com/udisondev/onigiri/internal/notify"
)

var errStoreDown = errors.New("store down")

type memoryRecorder struct {
	mu   sync.Mutex
	rows []Shipment
	err  error
}

func (m *memoryRecorder) Record(_ context.Context, s Shipment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, s)
	return nil
}

func (m *memoryRecorder) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func TestLedger_WritesScoreEvents(t *testing.T) {
	store := &memoryRecorder{}
	ledger := NewLedger(store, 11)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ledger.Run(ctx) }()

	tuna := &model.Filling{Name: "tuna_mayo", Score: 200, Rarity: model.RarityRare}
	ledger.Score(notify.ScoreEvent{Filling: tuna, MatchCount: 3, Earned: 2100, Combo: 2})
	ledger.Score(notify.ScoreEvent{Filling: tuna, MatchCount: 2, Earned: 1400, Combo: 1})

	require.Eventually(t, func() bool { return store.len() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	assert.Equal(t, int64(11), store.rows[0].SessionID)
	assert.Equal(t, "tuna_mayo", store.rows[0].Filling)
	assert.Equal(t, "rare", store.rows[0].Rarity)
	assert.Equal(t, 3, store.rows[0].MatchCount)
	assert.Equal(t, 2100, store.rows[0].Earned)
	assert.Equal(t, int64(2), ledger.Written())
}

func TestLedger_DrainsOnShutdown(t *testing.T) {
	store := &memoryRecorder{}
	ledger := NewLedger(store, 1)

	for range 5 {
		ledger.Score(notify.ScoreEvent{MatchCount: 2})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = ledger.Run(ctx)

	assert.Equal(t, 5, store.len())
}

func TestLedger_FailuresAreCounted(t *testing.T) {
	store := &memoryRecorder{err: errStoreDown}
	ledger := NewLedger(store, 1)

	ledger.Score(notify.ScoreEvent{MatchCount: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = ledger.Run(ctx)

	assert.Equal(t, int64(1), ledger.Failed())
	assert.Zero(t, ledger.Written())
}

func TestLedger_DropsWhenQueueFull(t *testing.T) {
	ledger := NewLedger(&memoryRecorder{}, 1)

	for range ledgerQueueSize + 3 {
		ledger.Score(notify.ScoreEvent{MatchCount: 2})
	}

	assert.Equal(t, int64(3), ledger.Dropped())
}
