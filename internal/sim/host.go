// Package sim is a headless stand-in for the physics engine: items fall at
// a constant speed, stack on circle contact and rest on the floor. It lets
// a full session run without a renderer.
package sim

import (
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/udisondev/onigiri/internal/merge"
	"github.com/udisondev/onigiri/internal/model"
)

// Session is what the host reports to.
type Session interface {
	UpdateBody(itemID uint32, pos, vel model.Vec2) bool
	Contact(idA, idB uint32) merge.Result
	Land(itemID uint32) bool
}

// Bounds is the container in world units.
type Bounds struct {
	MinX, MaxX float64
	FloorY     float64
}

type pairKey struct {
	lo, hi uint32
}

func keyOf(a, b uint32) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// Host owns one body per attached item.
type Host struct {
	bounds    Bounds
	fallSpeed float64
	maxBodies int

	session  Session
	bodies   map[uint32]*model.Item
	touching map[pairKey]struct{}
}

// NewHost creates a host. maxBodies <= 0 means unlimited.
func NewHost(bounds Bounds, fallSpeed float64, maxBodies int) *Host {
	return &Host{
		bounds:    bounds,
		fallSpeed: fallSpeed,
		maxBodies: maxBodies,
		bodies:    make(map[uint32]*model.Item),
		touching:  make(map[pairKey]struct{}),
	}
}

// Bind sets the session the host reports to. The session is created with
// the host, so this happens after construction.
func (h *Host) Bind(s Session) {
	h.session = s
}

// Attach adds a body for it.
func (h *Host) Attach(it *model.Item) bool {
	if h.maxBodies > 0 && len(h.bodies) >= h.maxBodies {
		slog.Warn("no free body slot", "itemID", it.ID(), "bodies", len(h.bodies))
		return false
	}
	h.bodies[it.ID()] = it
	return true
}

// Detach removes the body of itemID.
func (h *Host) Detach(itemID uint32) {
	delete(h.bodies, itemID)
	for k := range h.touching {
		if k.lo == itemID || k.hi == itemID {
			delete(h.touching, k)
		}
	}
}

// BodyCount returns the number of attached bodies.
func (h *Host) BodyCount() int {
	return len(h.bodies)
}

// Step advances the simulation by dt and reports moves, landings and new
// contacts to the session.
func (h *Host) Step(dt time.Duration) {
	if h.session == nil || dt <= 0 {
		return
	}

	// lowest first, so a stack settles bottom-up within one step
	order := make([]*model.Item, 0, len(h.bodies))
	for _, it := range h.bodies {
		if !it.Held() && !it.Merged() {
			order = append(order, it)
		}
	}
	slices.SortFunc(order, func(a, b *model.Item) int {
		if c := cmpFloat(a.Position().Y, b.Position().Y); c != 0 {
			return c
		}
		return int(a.ID()) - int(b.ID())
	})

	for _, it := range order {
		if it.Merged() {
			continue
		}
		h.stepBody(it, dt)
	}
}

func (h *Host) stepBody(it *model.Item, dt time.Duration) {
	pos := it.Position()
	r := it.Radius()
	target := pos.Y - h.fallSpeed*it.GravityScale()*dt.Seconds()

	var blockers []*model.Item
	rest := math.Inf(-1)
	for _, other := range h.bodies {
		if other == it || other.Held() || other.Merged() {
			continue
		}
		op := other.Position()
		if op.Y > pos.Y {
			continue
		}
		reach := r + other.Radius()
		dx := pos.X - op.X
		if math.Abs(dx) >= reach {
			continue
		}
		// height at which the two circles just touch
		top := op.Y + math.Sqrt(reach*reach-dx*dx)
		if top < target {
			continue
		}
		blockers = append(blockers, other)
		rest = max(rest, top)
	}

	floor := h.bounds.FloorY + r
	onFloor := false
	newY := target
	if rest > newY {
		newY = min(rest, pos.Y)
	}
	if newY <= floor {
		newY = floor
		onFloor = true
	}

	vel := model.V(0, (newY-pos.Y)/dt.Seconds())
	if math.Abs(vel.Y) < 1e-9 {
		vel = model.Vec2{}
	}
	h.session.UpdateBody(it.ID(), model.V(pos.X, newY), vel)

	if onFloor {
		h.session.Land(it.ID())
	}

	current := make(map[pairKey]struct{}, len(blockers))
	for _, other := range blockers {
		k := keyOf(it.ID(), other.ID())
		current[k] = struct{}{}
		if _, seen := h.touching[k]; seen {
			continue
		}
		h.touching[k] = struct{}{}
		h.session.Contact(it.ID(), other.ID())
		if it.Merged() {
			return
		}
	}

	// contacts that ended can fire again
	for k := range h.touching {
		if k.lo != it.ID() && k.hi != it.ID() {
			continue
		}
		if _, ok := current[k]; ok {
			continue
		}
		other := k.lo
		if other == it.ID() {
			other = k.hi
		}
		if o, ok := h.bodies[other]; ok && o.Position().Y > it.Position().Y {
			// other sits on top of it; that pair is refreshed from the other side
			continue
		}
		delete(h.touching, k)
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
