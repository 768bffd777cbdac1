// Package match finds connected groups of wrapped onigiri with the same
// filling, scores them and clears them off the board.
package match

import (
	"log/slog"
	"math"

	"github.com/udisondev/onigiri/internal/model"
	"github.com/udisondev/onigiri/internal/notify"
)

// Board is what the collector needs from the item registry.
type Board interface {
	// QueryNearby returns items whose circle overlaps the circle of radius
	// around pos.
	QueryNearby(pos model.Vec2, radius float64) []*model.Item
	// FirstInState returns one live item in state, if any.
	FirstInState(state model.State) (*model.Item, bool)
}

// Scheduler removes items from the board on behalf of the collector.
type Scheduler interface {
	// ScheduleRemoval removes the item after the post-merge delay.
	ScheduleRemoval(itemID uint32)
	// RemoveNow removes the item immediately.
	RemoveNow(itemID uint32)
}

// ComboCounter is the session combo counter. The collector only
// increments it; resetting belongs to the drop/settle cycle.
type ComboCounter interface {
	IncrementCombo() int
}

// Rules are the scoring and adjacency parameters.
type Rules struct {
	MatchBaseScore   int
	ComboMultiplier  float64
	MergeCheckRadius float64 // added to an item's own radius for adjacency
}

// DefaultRules returns the stock tuning.
func DefaultRules() Rules {
	return Rules{
		MatchBaseScore:   500,
		ComboMultiplier:  0.5,
		MergeCheckRadius: 0.2,
	}
}

// Result describes one collected match.
type Result struct {
	Members  []*model.Item
	Filling  *model.Filling
	Centroid model.Vec2
	Combo    int
	Earned   int
	Obstacle *model.Item // cleared rock or pickles, nil if none
}

// MatchCount returns the number of collected items.
func (r Result) MatchCount() int {
	return len(r.Members)
}

// Collector runs connected-match detection.
type Collector struct {
	rules     Rules
	board     Board
	scheduler Scheduler
	combo     ComboCounter
	notifier  notify.Notifier
}

// NewCollector creates a collector.
func NewCollector(rules Rules, board Board, scheduler Scheduler, combo ComboCounter, notifier notify.Notifier) *Collector {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Collector{
		rules:     rules,
		board:     board,
		scheduler: scheduler,
		combo:     combo,
		notifier:  notifier,
	}
}

// Collect gathers every FillingN item connected to a or b that carries
// their filling, then scores and removes the group.
//
// ok=false when a seed was already taken by another collection (or is not
// a wrapped onigiri of the same filling): nothing is changed in that case.
func (c *Collector) Collect(a, b *model.Item) (Result, bool) {
	if !c.eligibleSeed(a) || !c.eligibleSeed(b) || a == b {
		return Result{}, false
	}
	filling := a.Filling()
	if !model.SameFilling(filling, b.Filling()) {
		return Result{}, false
	}

	members := c.search(filling, a, b)
	if len(members) < 2 {
		// unreachable: both seeds passed eligibleSeed and are distinct
		return Result{}, false
	}

	positions := make([]model.Vec2, len(members))
	for i, it := range members {
		positions[i] = it.Position()
	}

	res := Result{
		Members:  members,
		Filling:  filling,
		Centroid: model.Centroid(positions),
	}
	res.Combo = c.combo.IncrementCombo()
	res.Earned = Score(c.rules, filling, len(members), res.Combo)

	for _, it := range members {
		c.scheduler.ScheduleRemoval(it.ID())
	}

	c.notifier.Effect(model.EffectConsume, res.Centroid)
	if res.Combo > 1 {
		c.notifier.Effect(model.EffectCombo, res.Centroid)
	}
	c.notifier.Score(notify.ScoreEvent{
		Filling:    filling,
		Position:   res.Centroid,
		MatchCount: len(members),
		Earned:     res.Earned,
		Combo:      res.Combo,
	})

	res.Obstacle = c.clearObstacle()

	slog.Debug("match collected",
		"filling", model.FillingName(filling),
		"count", len(members),
		"combo", res.Combo,
		"earned", res.Earned)

	return res, true
}

func (c *Collector) eligibleSeed(it *model.Item) bool {
	return it != nil && !it.Merged() && it.State() == model.StateFillingN && it.Filling() != nil
}

// search is an iterative depth-first walk over spatial proximity. Every
// item is flagged merged the moment it is visited, so a concurrent contact
// elsewhere cannot collect it a second time.
func (c *Collector) search(filling *model.Filling, seeds ...*model.Item) []*model.Item {
	visited := make(map[uint32]struct{})
	stack := make([]*model.Item, 0, 8)
	// push in reverse so the first seed is visited first
	for i := len(seeds) - 1; i >= 0; i-- {
		stack = append(stack, seeds[i])
	}

	var members []*model.Item
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[it.ID()]; seen {
			continue
		}
		if it.Merged() || it.State() != model.StateFillingN || !model.SameFilling(it.Filling(), filling) {
			continue
		}

		visited[it.ID()] = struct{}{}
		members = append(members, it)
		it.MarkMerged()

		radius := it.Radius() + c.rules.MergeCheckRadius
		for _, n := range c.board.QueryNearby(it.Position(), radius) {
			if _, seen := visited[n.ID()]; !seen {
				stack = append(stack, n)
			}
		}
	}
	return members
}

// clearObstacle removes one rock, or failing that one pickles.
func (c *Collector) clearObstacle() *model.Item {
	for _, state := range []model.State{model.StateRock, model.StatePickles} {
		it, ok := c.board.FirstInState(state)
		if !ok {
			continue
		}
		it.MarkMerged()
		c.scheduler.RemoveNow(it.ID())
		c.notifier.Effect(model.EffectClear, it.Position())
		slog.Debug("obstacle cleared", "itemID", it.ID(), "state", state)
		return it
	}
	return nil
}

// Score computes the points for a match of count items at the given combo.
// Rounding is half-to-even.
func Score(rules Rules, filling *model.Filling, count, combo int) int {
	base := rules.MatchBaseScore
	if filling != nil {
		base += filling.Score
	}
	bonus := 1 + float64(combo)*rules.ComboMultiplier
	return int(math.RoundToEven(float64(base) * float64(count-1) * bonus))
}
