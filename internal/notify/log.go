package notify

import (
	"log/slog"

	"github.com/udisondev/onigiri/internal/model"
)

// Log writes every call to slog. Effects go to debug, the rest to info.
type Log struct{}

func (Log) Effect(tag model.EffectTag, pos model.Vec2) {
	slog.Debug("effect", "tag", tag, "x", pos.X, "y", pos.Y)
}

func (Log) Score(ev ScoreEvent) {
	slog.Info("matched",
		"filling", model.FillingName(ev.Filling),
		"count", ev.MatchCount,
		"earned", ev.Earned,
		"combo", ev.Combo)
}

func (Log) Completion(pos model.Vec2) {
	slog.Debug("wrap completed", "x", pos.X, "y", pos.Y)
}

func (Log) GameOver() {
	slog.Info("game over")
}

func (Log) Preview(kind model.Kind, filling *model.Filling) {
	slog.Debug("next item", "kind", kind, "filling", model.FillingName(filling))
}
