package spawn

import (
	"log/slog"
	"time"

	"github.com/udisondev/onigiri/internal/model"
)

// Delays are the waits between a drop and the next spawn.
type Delays struct {
	Spawn     time.Duration `yaml:"spawn"`
	NoriSpawn time.Duration `yaml:"nori_spawn"`
}

// DefaultDelays returns the stock delays (nori drifts down slowly, so it
// gets a longer wait).
func DefaultDelays() Delays {
	return Delays{
		Spawn:     1500 * time.Millisecond,
		NoriSpawn: 2000 * time.Millisecond,
	}
}

// Timer tracks the single pending spawn after a drop.
type Timer struct {
	delays  Delays
	pending bool
	dueAt   time.Duration
}

// NewTimer creates an idle timer.
func NewTimer(delays Delays) *Timer {
	return &Timer{delays: delays}
}

// Schedule arms the timer after a drop of kind at session time now.
// A second drop before firing re-arms it.
func (t *Timer) Schedule(now time.Duration, dropped model.Kind) {
	delay := t.delays.Spawn
	if dropped == model.KindNori {
		delay = t.delays.NoriSpawn
	}
	t.pending = true
	t.dueAt = now + delay

	slog.Debug("next spawn scheduled", "dropped", dropped, "dueAt", t.dueAt)
}

// Fire reports whether the timer is due at now and disarms it if so.
func (t *Timer) Fire(now time.Duration) bool {
	if !t.pending || now < t.dueAt {
		return false
	}
	t.pending = false
	return true
}

// Pending reports whether a spawn is scheduled.
func (t *Timer) Pending() bool {
	return t.pending
}

// DueAt returns the scheduled time (meaningless when not pending).
func (t *Timer) DueAt() time.Duration {
	return t.dueAt
}

// Cancel disarms the timer.
func (t *Timer) Cancel() {
	t.pending = false
}
