package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/onigiri/internal/model"
	"github.com/udisondev/onigiri/internal/notify"
)

func TestWriter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.jsonl.zst")

	w, err := Create(path)
	require.NoError(t, err)

	salmon := &model.Filling{Name: "salmon", Score: 100}

	var n notify.Notifier = w
	n.Preview(model.KindFilling, salmon)
	n.Effect(model.EffectDrop, model.V(0.5, 3.5))
	n.Completion(model.V(1, -2))
	n.Score(notify.ScoreEvent{Filling: salmon, MatchCount: 2, Earned: 1200, Combo: 1})
	n.Score(notify.ScoreEvent{Filling: salmon, MatchCount: 3, Earned: 2400, Combo: 2})
	n.GameOver()

	require.NoError(t, w.Close())
	assert.Equal(t, 6, w.Written())

	events, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, events, 6)

	assert.Equal(t, notify.EventPreview, events[0].Type)
	assert.Equal(t, "filling", events[0].Kind)
	assert.Equal(t, "salmon", events[0].Filling)
	assert.Equal(t, "drop", events[1].Tag)
	assert.InDelta(t, 0.5, events[1].X, 1e-9)

	sum := Summarize(events)
	assert.Equal(t, 6, sum.Events)
	assert.Equal(t, 3600, sum.Score)
	assert.Equal(t, 2, sum.Matches)
	assert.Equal(t, 1, sum.Completions)
	assert.Equal(t, 2, sum.BestCombo)
	assert.True(t, sum.GameOver)
	assert.Equal(t, 5, sum.Shipped["salmon"])
	assert.Equal(t, 1, sum.Effects["drop"])
}

func TestWriter_CloseTwice(t *testing.T) {
	w, err := Create(filepath.Join(t.TempDir(), "j.jsonl.zst"))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Write(notify.GameOverEvent()), ErrClosed)
}

func TestWriter_RunWritesQueuedEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl.zst")
	w, err := Create(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	w.Effect(model.EffectDrop, model.V(0, 3.5))
	w.GameOver()
	require.Eventually(t, func() bool { return w.Written() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	require.NoError(t, w.Close())
	events, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, notify.EventGameOver, events[1].Type)
}

func TestWriter_FullQueueDrops(t *testing.T) {
	w, err := Create(filepath.Join(t.TempDir(), "full.jsonl.zst"))
	require.NoError(t, err)
	w.queue = make(chan notify.Event, 1)

	w.GameOver()
	w.GameOver()
	assert.Equal(t, int64(1), w.Dropped())

	require.NoError(t, w.Close())
	assert.Equal(t, 1, w.Written(), "queued event is written on close")
}

func TestReadAll_Errors(t *testing.T) {
	_, err := ReadAll(filepath.Join(t.TempDir(), "missing.zst"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(bad, []byte("not zstd"), 0o644))
	_, err = ReadAll(bad)
	assert.Error(t, err)
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil)
	assert.Zero(t, sum.Events)
	assert.False(t, sum.GameOver)
	assert.Empty(t, sum.Shipped)
}
