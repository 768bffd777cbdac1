// Package gameover decides when the container has overflowed.
package gameover

import (
	"log/slog"
	"time"

	"github.com/udisondev/onigiri/internal/model"
	"github.com/udisondev/onigiri/internal/notify"
)

// Settings tune the overflow check.
type Settings struct {
	LineY           float64       `yaml:"line_y"`
	CheckInterval   time.Duration `yaml:"check_interval"`
	VelocityEpsilon float64       `yaml:"velocity_epsilon"`
}

// DefaultSettings returns the stock overflow line and poll interval.
func DefaultSettings() Settings {
	return Settings{
		LineY:           3.0,
		CheckInterval:   500 * time.Millisecond,
		VelocityEpsilon: 0.05,
	}
}

// Monitor polls settled items against the overflow line.
// Once tripped it stays tripped: GameOver is notified exactly once.
type Monitor struct {
	settings Settings
	notifier notify.Notifier

	elapsed time.Duration
	tripped bool
}

// NewMonitor creates a monitor.
func NewMonitor(settings Settings, notifier notify.Notifier) *Monitor {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Monitor{settings: settings, notifier: notifier}
}

// Tripped reports whether the game is over.
func (m *Monitor) Tripped() bool {
	return m.tripped
}

// Advance accumulates dt and runs Check each time the interval elapses.
// Returns true on the call that trips the monitor.
func (m *Monitor) Advance(dt time.Duration, items []*model.Item) bool {
	if m.tripped {
		return false
	}
	m.elapsed += dt
	if m.elapsed < m.settings.CheckInterval {
		return false
	}
	m.elapsed = 0
	return m.Check(items)
}

// Check runs one poll. Held, falling and merged items are ignored.
func (m *Monitor) Check(items []*model.Item) bool {
	if m.tripped {
		return false
	}
	for _, it := range items {
		if it == nil || it.Held() || it.Falling() || it.Merged() {
			continue
		}
		if it.Position().Y <= m.settings.LineY {
			continue
		}
		if it.Velocity().Len() >= m.settings.VelocityEpsilon {
			continue
		}

		m.tripped = true
		slog.Info("item settled above line",
			"itemID", it.ID(),
			"state", it.State(),
			"y", it.Position().Y,
			"line", m.settings.LineY)
		m.notifier.Effect(model.EffectGameOver, it.Position())
		m.notifier.GameOver()
		return true
	}
	return false
}
