package merge

import (
	"log/slog"

	"github.com/udisondev/onigiri/internal/match"
	"github.com/udisondev/onigiri/internal/model"
	"github.com/udisondev/onigiri/internal/notify"
)

// Scheduler defers removal of destroyed items.
type Scheduler interface {
	ScheduleRemoval(itemID uint32)
}

// RockSpawner creates the rock left behind by two nori sheets.
type RockSpawner interface {
	SpawnRock(at model.Vec2) (*model.Item, bool)
}

// Matcher collects connected matches.
type Matcher interface {
	Collect(a, b *model.Item) (match.Result, bool)
}

// Result describes what a contact did.
type Result struct {
	Merged    bool
	Outcome   Outcome
	Survivor  *model.Item
	Destroyed []*model.Item
	Rock      *model.Item
	Match     *match.Result
}

// Resolver applies the transition table to items in contact.
type Resolver struct {
	scheduler Scheduler
	rocks     RockSpawner
	matcher   Matcher
	notifier  notify.Notifier
}

// NewResolver creates a resolver.
func NewResolver(scheduler Scheduler, rocks RockSpawner, matcher Matcher, notifier notify.Notifier) *Resolver {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Resolver{
		scheduler: scheduler,
		rocks:     rocks,
		matcher:   matcher,
		notifier:  notifier,
	}
}

// OnContact resolves a contact between a and b.
//
// Contacts involving a merged item, an item still held by the player, or
// a pair with no rule are ignored: they are expected timing races, not
// errors. The mutation is applied in one step before returning.
func (r *Resolver) OnContact(a, b *model.Item) Result {
	if a == nil || b == nil || a == b {
		return Result{}
	}
	if !a.Active() || !b.Active() {
		return Result{}
	}

	out, ok := Resolve(a.State(), a.Filling(), b.State(), b.Filling())
	if !ok {
		return Result{}
	}

	if out.Match {
		return r.applyMatch(out, a, b)
	}
	return r.apply(out, a, b)
}

func (r *Resolver) apply(out Outcome, a, b *model.Item) Result {
	res := Result{Merged: true, Outcome: out}

	switch out.Survivor {
	case SideA:
		res.Survivor = a
	case SideB:
		res.Survivor = b
	}
	if res.Survivor != nil {
		res.Survivor.TransitionTo(out.State, out.Filling)
	}

	switch out.Destroy {
	case SideA:
		res.Destroyed = []*model.Item{a}
	case SideB:
		res.Destroyed = []*model.Item{b}
	case SideBoth:
		res.Destroyed = []*model.Item{a, b}
	}
	for _, it := range res.Destroyed {
		it.MarkMerged()
		r.scheduler.ScheduleRemoval(it.ID())
	}

	effectPos := a.Position()
	if res.Survivor != nil {
		effectPos = res.Survivor.Position()
	}

	if out.SpawnRock {
		mid := a.Position().Midpoint(b.Position())
		effectPos = mid
		if rock, ok := r.rocks.SpawnRock(mid); ok {
			res.Rock = rock
		} else {
			slog.Warn("rock spawn refused", "x", mid.X, "y", mid.Y)
		}
	}

	r.notifier.Effect(out.Tag, effectPos)
	if out.Completion && res.Survivor != nil {
		r.notifier.Completion(res.Survivor.Position())
	}

	slog.Debug("merged",
		"a", a.ID(),
		"b", b.ID(),
		"tag", out.Tag,
		"survivor", out.Survivor,
		"state", out.State)

	return res
}

func (r *Resolver) applyMatch(out Outcome, a, b *model.Item) Result {
	m, ok := r.matcher.Collect(a, b)
	if !ok {
		return Result{}
	}
	return Result{
		Merged:    true,
		Outcome:   out,
		Destroyed: m.Members,
		Match:     &m,
	}
}
