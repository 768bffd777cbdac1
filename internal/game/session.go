// Package game runs one puzzle session: it owns the board and routes host
// events (drops, body updates, contacts, ticks) through the rules engine.
package game

import (
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/udisondev/onigiri/internal/board"
	"github.com/udisondev/onigiri/internal/config"
	"github.com/udisondev/onigiri/internal/gameover"
	"github.com/udisondev/onigiri/internal/match"
	"github.com/udisondev/onigiri/internal/merge"
	"github.com/udisondev/onigiri/internal/model"
	"github.com/udisondev/onigiri/internal/notify"
	"github.com/udisondev/onigiri/internal/spawn"
)

// Host is the physics/visual engine driving the session.
type Host interface {
	// Attach instantiates the entity for a new item; false = no free slot.
	Attach(it *model.Item) bool
	// Detach destroys the entity of a removed item.
	Detach(itemID uint32)
}

// Session is one game from first spawn to game over.
//
// Session is not safe for concurrent use: every method must be called from
// the goroutine that processes host events (see Dispatcher).
type Session struct {
	cfg      config.Game
	host     Host
	notifier notify.Notifier

	board     *board.Board
	removals  *board.RemovalQueue
	collector *match.Collector
	resolver  *merge.Resolver
	spawner   *spawn.Spawner
	monitor   *gameover.Monitor

	clock        time.Duration
	sweepElapsed time.Duration

	combo int
	fever bool
	drops int
}

// NewSession wires a session. rng drives spawn selection.
func NewSession(cfg config.Game, host Host, notifier notify.Notifier, rng *rand.Rand) *Session {
	if notifier == nil {
		notifier = notify.Nop{}
	}

	s := &Session{
		cfg:      cfg,
		host:     host,
		notifier: notifier,
		board:    board.New(cfg.Container.CellSize),
		removals: board.NewRemovalQueue(),
		monitor:  gameover.NewMonitor(cfg.GameOver, notifier),
	}

	policy := spawn.NewPolicy(cfg.Spawn.Weights, cfg.Spawn.MaxConsecutive, rng)
	s.spawner = spawn.NewSpawner(spawn.Options{
		Point:    model.V(0, cfg.Container.SpawnY),
		Radii:    cfg.Spawn.Radii,
		Fillings: cfg.Catalog(),
		Delays:   cfg.Spawn.Delays,
	}, policy, s.board, host, notifier, rng)

	s.collector = match.NewCollector(cfg.Rules.Match(), s.board, s, s, notifier)
	s.resolver = merge.NewResolver(s, s.spawner, s.collector, notifier)

	return s
}

// Start prepares the preview and spawns the first held item.
func (s *Session) Start() bool {
	s.spawner.PrepareNext(s.fever)
	_, ok := s.spawner.SpawnNext(s.fever)
	slog.Info("session started", "spawned", ok)
	return ok
}

// Board returns the live item registry.
func (s *Session) Board() *board.Board {
	return s.board
}

// Spawner returns the session spawner.
func (s *Session) Spawner() *spawn.Spawner {
	return s.spawner
}

// Clock returns the session time.
func (s *Session) Clock() time.Duration {
	return s.clock
}

// Drops returns how many items the player has dropped.
func (s *Session) Drops() int {
	return s.drops
}

// Combo returns the current combo count.
func (s *Session) Combo() int {
	return s.combo
}

// IncrementCombo bumps the combo counter and returns the new value.
func (s *Session) IncrementCombo() int {
	s.combo++
	return s.combo
}

// ResetCombo zeroes the combo counter.
func (s *Session) ResetCombo() {
	if s.combo > 0 {
		slog.Debug("combo reset", "combo", s.combo)
	}
	s.combo = 0
}

// Fever reports whether fever mode is on.
func (s *Session) Fever() bool {
	return s.fever
}

// SetFever switches fever mode; the schedule is owned by the caller.
func (s *Session) SetFever(on bool) {
	s.fever = on
}

// IsGameOver reports whether the overflow monitor has tripped.
func (s *Session) IsGameOver() bool {
	return s.monitor.Tripped()
}

// Held returns the item the player currently controls.
func (s *Session) Held() (*model.Item, bool) {
	return s.board.Held()
}

// ScheduleRemoval removes the item after the post-merge delay.
func (s *Session) ScheduleRemoval(itemID uint32) {
	s.removals.Schedule(itemID, s.clock+s.cfg.Rules.RemovalDelay)
}

// RemoveNow removes the item immediately. Missing items are a no-op.
func (s *Session) RemoveNow(itemID uint32) {
	s.removals.Cancel(itemID)
	it, ok := s.board.Remove(itemID)
	if !ok {
		return
	}
	it.MarkMerged()
	s.detach(it)
}

func (s *Session) detach(it *model.Item) {
	if s.host != nil {
		s.host.Detach(it.ID())
	}
}

// MoveHeld slides the held item horizontally, clamped to the container.
func (s *Session) MoveHeld(x float64) bool {
	it, ok := s.board.Held()
	if !ok {
		return false
	}
	x = min(max(x, s.cfg.Container.MinX), s.cfg.Container.MaxX)
	return s.board.Move(it.ID(), model.V(x, it.Position().Y))
}

// Drop releases the held item at x and schedules the next spawn.
func (s *Session) Drop(x float64) (*model.Item, bool) {
	if s.IsGameOver() {
		return nil, false
	}
	if !s.MoveHeld(x) {
		return nil, false
	}
	it, _ := s.board.Held()
	it.Release()
	s.drops++

	s.notifier.Effect(model.EffectDrop, it.Position())
	s.spawner.Timer().Schedule(s.clock, it.Kind())

	slog.Debug("item dropped", "itemID", it.ID(), "kind", it.Kind(), "x", it.Position().X)
	return it, true
}

// UpdateBody records the host's latest position and velocity for an item.
func (s *Session) UpdateBody(itemID uint32, pos, vel model.Vec2) bool {
	it, ok := s.board.Get(itemID)
	if !ok {
		return false
	}
	s.board.Move(itemID, pos)
	it.SetVelocity(vel)
	return true
}

// Land marks a falling item as landed (contact with the floor or a wall).
func (s *Session) Land(itemID uint32) bool {
	it, ok := s.board.Get(itemID)
	if !ok || it.Merged() {
		return false
	}
	return s.land(it)
}

func (s *Session) land(it *model.Item) bool {
	if !it.Land() {
		return false
	}
	tag := model.EffectLand
	if it.State() == model.StateNori {
		tag = model.EffectNoriLand
	}
	s.notifier.Effect(tag, it.Position())
	return true
}

// Contact handles a collision between two items reported by the host.
func (s *Session) Contact(idA, idB uint32) merge.Result {
	a, okA := s.board.Get(idA)
	b, okB := s.board.Get(idB)
	if !okA || !okB {
		return merge.Result{}
	}
	for _, it := range []*model.Item{a, b} {
		if !it.Merged() {
			s.land(it)
		}
	}
	return s.resolver.OnContact(a, b)
}

// Tick advances session time by dt: deferred removals, the pending spawn,
// the proximity sweep and the overflow check, in that order.
func (s *Session) Tick(dt time.Duration) {
	if dt < 0 {
		return
	}
	s.clock += dt

	s.removals.Process(s.clock, s.board, s.detach)

	if s.spawner.Timer().Fire(s.clock) && !s.IsGameOver() {
		s.ResetCombo()
		s.spawner.SpawnNext(s.fever)
	}

	s.sweepElapsed += dt
	if s.sweepElapsed >= s.cfg.Rules.MergeCheckInterval {
		s.sweepElapsed = 0
		s.Sweep()
	}

	if s.monitor.Advance(dt, s.board.Items()) {
		s.spawner.Disable()
	}
}

// Sweep tries merges between every active item and its neighbours. It
// catches contacts the host missed.
func (s *Session) Sweep() int {
	merges := 0
	items := slices.Clone(s.board.Items())
	for _, it := range items {
		// rocks and pickles never merge
		if !it.Active() || it.State().IsObstacle() {
			continue
		}
		radius := it.Radius() + s.cfg.Rules.MergeCheckRadius
		for _, other := range s.board.QueryNearby(it.Position(), radius) {
			if other == it || !other.Active() {
				continue
			}
			if res := s.resolver.OnContact(it, other); res.Merged {
				merges++
			}
			if it.Merged() {
				break
			}
		}
	}
	return merges
}
