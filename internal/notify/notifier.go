// Package notify defines the calls the rules engine makes into the
// presentation side (effects, score display, game over) and a few
// collaborators implementing them.
package notify

import (
	"github.com/udisondev/onigiri/internal/model"
)

// ScoreEvent reports one resolved match.
type ScoreEvent struct {
	Filling    *model.Filling
	Position   model.Vec2
	MatchCount int
	Earned     int
	Combo      int
}

// Notifier receives fire-and-forget calls from the core.
// Implementations must not call back into the session.
type Notifier interface {
	// Effect requests an audio/visual cue at pos.
	Effect(tag model.EffectTag, pos model.Vec2)
	// Score reports a cleared match. The collaborator owns cumulative totals.
	Score(ev ScoreEvent)
	// Completion reports that an item reached FillingN (a wrap).
	Completion(pos model.Vec2)
	// GameOver is the terminal event; fired at most once per session.
	GameOver()
	// Preview announces the next item the spawner will hand out.
	Preview(kind model.Kind, filling *model.Filling)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Effect(model.EffectTag, model.Vec2) {}
func (Nop) Score(ScoreEvent) {}
func (Nop) Completion(model.Vec2) {}
func (Nop) GameOver() {}
func (Nop) Preview(model.Kind, *model.Filling) {}

// Multi fans every call out to all notifiers in order.
type Multi []Notifier

func (m Multi) Effect(tag model.EffectTag, pos model.Vec2) {
	for _, n := range m {
		n.Effect(tag, pos)
	}
}

func (m Multi) Score(ev ScoreEvent) {
	for _, n := range m {
		n.Score(ev)
	}
}

func (m Multi) Completion(pos model.Vec2) {
	for _, n := range m {
		n.Completion(pos)
	}
}

func (m Multi) GameOver() {
	for _, n := range m {
		n.GameOver()
	}
}

func (m Multi) Preview(kind model.Kind, filling *model.Filling) {
	for _, n := range m {
		n.Preview(kind, filling)
	}
}
