// Package testutil holds item builders shared by package tests.
package testutil

import "github.com/udisondev/onigiri/internal/model"

// Radius is the body radius of fixture items.
const Radius = 0.5

// Fixtures are the fillings most tests reach for.
var Fixtures = struct {
	Salmon *model.Filling
	Tuna   *model.Filling
	Ume    *model.Filling
}{
	Salmon: &model.Filling{Name: "salmon", Rarity: model.RarityCommon},
	Tuna:   &model.Filling{Name: "tuna", Score: 100, Rarity: model.RarityCommon},
	Ume:    &model.Filling{Name: "ume", Score: 250, Rarity: model.RarityRare},
}

// Held returns a freshly spawned item still in the player's hand.
func Held(id uint32, kind model.Kind, filling *model.Filling, pos model.Vec2) *model.Item {
	return model.NewItem(id, kind, filling, pos, Radius)
}

// Dropped returns a released, still falling item.
func Dropped(id uint32, kind model.Kind, filling *model.Filling, pos model.Vec2) *model.Item {
	it := Held(id, kind, filling, pos)
	it.Release()
	return it
}

// Landed returns a released item at rest with velocity vel.
func Landed(id uint32, kind model.Kind, filling *model.Filling, pos, vel model.Vec2) *model.Item {
	it := Dropped(id, kind, filling, pos)
	it.Land()
	it.SetVelocity(vel)
	return it
}

// InState returns a landed item forced into state.
func InState(id uint32, state model.State, filling *model.Filling, pos model.Vec2) *model.Item {
	it := Landed(id, model.KindWhiteRice, nil, pos, model.Vec2{})
	it.TransitionTo(state, filling)
	return it
}
