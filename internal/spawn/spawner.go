package spawn

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/onigiri/internal/board"
	"github.com/udisondev/onigiri/internal/model"
	"github.com/udisondev/onigiri/internal/notify"
)

// Host instantiates the physical entity for a new item.
// Attach returning false means there is no free slot.
type Host interface {
	Attach(it *model.Item) bool
}

// Radii are collision extents per kind.
type Radii struct {
	WhiteRice float64 `yaml:"white_rice"`
	Nori      float64 `yaml:"nori"`
	Filling   float64 `yaml:"filling"`
	Rock      float64 `yaml:"rock"`
}

// DefaultRadii returns the stock item sizes.
func DefaultRadii() Radii {
	return Radii{WhiteRice: 0.5, Nori: 0.5, Filling: 0.35, Rock: 0.3}
}

// Of returns the radius for kind.
func (r Radii) Of(kind model.Kind) float64 {
	switch kind {
	case model.KindNori:
		return r.Nori
	case model.KindFilling:
		return r.Filling
	case model.KindRock:
		return r.Rock
	default:
		return r.WhiteRice
	}
}

// Spawner hands out the item the player drops next and the rocks left by
// nori merges. It keeps the upcoming item prepared so it can be previewed.
type Spawner struct {
	policy   *Policy
	board    *board.Board
	host     Host
	notifier notify.Notifier
	rng      *rand.Rand

	fillings []*model.Filling
	radii    Radii
	point    model.Vec2

	nextKind    model.Kind
	nextFilling *model.Filling
	prepared    bool

	enabled bool
	timer   *Timer
}

// Options configures a Spawner.
type Options struct {
	Point    model.Vec2
	Radii    Radii
	Fillings []*model.Filling
	Delays   Delays
}

// NewSpawner creates a spawner.
func NewSpawner(opts Options, policy *Policy, b *board.Board, host Host, notifier notify.Notifier, rng *rand.Rand) *Spawner {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Spawner{
		policy:   policy,
		board:    b,
		host:     host,
		notifier: notifier,
		rng:      rng,
		fillings: opts.Fillings,
		radii:    opts.Radii,
		point:    opts.Point,
		enabled:  true,
		timer:    NewTimer(opts.Delays),
	}
}

// Timer returns the delayed-spawn timer.
func (s *Spawner) Timer() *Timer {
	return s.timer
}

// Enabled reports whether the spawner still hands out items.
func (s *Spawner) Enabled() bool {
	return s.enabled
}

// Disable stops all further spawning (game over).
func (s *Spawner) Disable() {
	s.enabled = false
	s.timer.Cancel()
}

// Next returns the prepared upcoming item.
func (s *Spawner) Next() (model.Kind, *model.Filling) {
	return s.nextKind, s.nextFilling
}

// PrepareNext selects the upcoming item and announces it.
func (s *Spawner) PrepareNext(fever bool) {
	census := TakeCensus(s.board.Items())
	s.nextKind = s.policy.Next(fever, census)
	s.nextFilling = nil
	if s.nextKind == model.KindFilling && len(s.fillings) > 0 {
		s.nextFilling = s.fillings[s.rng.IntN(len(s.fillings))]
	}
	s.prepared = true

	s.notifier.Preview(s.nextKind, s.nextFilling)
}

// SpawnNext puts the prepared item at the spawn point as the held item.
// Returns false if spawning is disabled, an item is still held, or the
// host has no slot for it.
func (s *Spawner) SpawnNext(fever bool) (*model.Item, bool) {
	if !s.enabled {
		slog.Debug("spawn aborted: spawner disabled")
		return nil, false
	}
	if held, ok := s.board.Held(); ok {
		slog.Debug("spawn aborted: item still held", "itemID", held.ID())
		return nil, false
	}
	if !s.prepared {
		s.PrepareNext(fever)
	}

	kind, filling := s.nextKind, s.nextFilling
	it := model.NewItem(s.board.IDs().NextDropID(), kind, filling, s.point, s.radii.Of(kind))
	if err := s.place(it); err != nil {
		slog.Warn("spawn refused", "kind", kind, "error", err)
		return nil, false
	}

	s.policy.Record(kind)
	s.PrepareNext(fever)

	slog.Debug("item spawned",
		"itemID", it.ID(),
		"kind", kind,
		"filling", model.FillingName(filling))

	return it, true
}

// SpawnRock creates a falling rock at pos.
func (s *Spawner) SpawnRock(at model.Vec2) (*model.Item, bool) {
	it := model.NewItem(s.board.IDs().NextMergeID(), model.KindRock, nil, at, s.radii.Of(model.KindRock))
	it.Release()
	if err := s.place(it); err != nil {
		slog.Warn("rock spawn refused", "error", err)
		return nil, false
	}
	return it, true
}

// place adds it to the board and the host, rolling back on failure.
func (s *Spawner) place(it *model.Item) error {
	if err := s.board.Add(it); err != nil {
		return fmt.Errorf("adding item to board: %w", err)
	}
	if s.host != nil && !s.host.Attach(it) {
		s.board.Remove(it.ID())
		return fmt.Errorf("host has no slot for item %d", it.ID())
	}
	return nil
}
