package model

// NoriGravityScale is the gravity scale requested for a dropped nori sheet.
const NoriGravityScale = 0.3

// Item is one body on the board: its state, filling and position.
//
// Item is owned by the board and mutated only from the session's event
// processing goroutine, so it carries no lock. Position and velocity are
// written by the host through the session; the core only reads them.
type Item struct {
	id      uint32
	kind    Kind
	state   State
	filling *Filling

	merged  bool
	held    bool
	falling bool
	landed  bool

	position Vec2
	velocity Vec2
	radius   float64
}

// NewItem creates a held item of the given kind at pos.
// filling is kept only for KindFilling.
func NewItem(id uint32, kind Kind, filling *Filling, pos Vec2, radius float64) *Item {
	it := &Item{
		id:       id,
		kind:     kind,
		state:    kind.InitialState(),
		held:     true,
		position: pos,
		radius:   radius,
	}
	if it.state.CarriesFilling() {
		it.filling = filling
	}
	return it
}

// ID returns the item id (immutable after creation).
func (it *Item) ID() uint32 {
	return it.id
}

func (it *Item) Kind() Kind {
	return it.kind
}

func (it *Item) State() State {
	return it.state
}

// Filling returns the payload, nil unless the state carries one.
func (it *Item) Filling() *Filling {
	return it.filling
}

// Merged reports whether the item is logically dead.
func (it *Item) Merged() bool {
	return it.merged
}

// MarkMerged flags the item as dead. Idempotent.
func (it *Item) MarkMerged() {
	it.merged = true
}

func (it *Item) Held() bool {
	return it.held
}

func (it *Item) Falling() bool {
	return it.falling
}

func (it *Item) Landed() bool {
	return it.landed
}

// Active reports whether the item may take part in contacts:
// dropped (falling or landed) and not merged.
func (it *Item) Active() bool {
	return !it.merged && (it.falling || it.landed)
}

func (it *Item) Position() Vec2 {
	return it.position
}

func (it *Item) SetPosition(p Vec2) {
	it.position = p
}

func (it *Item) Velocity() Vec2 {
	return it.velocity
}

func (it *Item) SetVelocity(v Vec2) {
	it.velocity = v
}

// Radius returns the collision extent of the item.
func (it *Item) Radius() float64 {
	return it.radius
}

// GravityScale is the gravity scale the host should apply while falling.
func (it *Item) GravityScale() float64 {
	if it.state == StateNori {
		return NoriGravityScale
	}
	return 1.0
}

// Release switches a held item to falling.
func (it *Item) Release() {
	it.held = false
	it.falling = true
	it.landed = false
}

// Land marks the first contact of a falling item.
// Returns false if the item was not falling.
func (it *Item) Land() bool {
	if !it.falling || it.landed {
		return false
	}
	it.falling = false
	it.landed = true
	return true
}

// TransitionTo moves the item to state. The payload is replaced when
// filling is non-nil and cleared when the new state carries none.
func (it *Item) TransitionTo(state State, filling *Filling) {
	it.state = state
	if !state.CarriesFilling() {
		it.filling = nil
		return
	}
	if filling != nil {
		it.filling = filling
	}
}
