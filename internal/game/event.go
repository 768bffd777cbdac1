package game

import (
	"fmt"
	"time"

	"github.com/udisondev/onigiri/internal/model"
)

// Event is one host report or player action, applied on the session goroutine.
type Event interface {
	apply(s *Session)
}

// DropEvent releases the held item at X.
type DropEvent struct {
	X float64
}

func (e DropEvent) apply(s *Session) { s.Drop(e.X) }

// MoveEvent slides the held item to X.
type MoveEvent struct {
	X float64
}

func (e MoveEvent) apply(s *Session) { s.MoveHeld(e.X) }

// BodyEvent carries an item's new position and velocity.
type BodyEvent struct {
	ItemID   uint32
	Position model.Vec2
	Velocity model.Vec2
}

func (e BodyEvent) apply(s *Session) { s.UpdateBody(e.ItemID, e.Position, e.Velocity) }

// ContactEvent reports a collision between two items.
type ContactEvent struct {
	A, B uint32
}

func (e ContactEvent) apply(s *Session) { s.Contact(e.A, e.B) }

// LandEvent reports an item touching the floor or a wall.
type LandEvent struct {
	ItemID uint32
}

func (e LandEvent) apply(s *Session) { s.Land(e.ItemID) }

// FeverEvent toggles fever mode.
type FeverEvent struct {
	On bool
}

func (e FeverEvent) apply(s *Session) { s.SetFever(e.On) }

// TickEvent advances the session clock by DT.
type TickEvent struct {
	DT time.Duration
}

func (e TickEvent) apply(s *Session) { s.Tick(e.DT) }

// Apply runs ev against the session synchronously.
func (s *Session) Apply(ev Event) error {
	if ev == nil {
		return fmt.Errorf("applying event: nil event")
	}
	ev.apply(s)
	return nil
}
