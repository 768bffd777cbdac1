package board

import (
	"fmt"
	"slices"

	"github.com/udisondev/onigiri/internal/model"
)

// Board is the set of live items in the container plus a spatial grid
// answering proximity queries. It is the only shared mutable resource of a
// session and must be touched only from the session goroutine.
type Board struct {
	items  map[uint32]*model.Item
	cellOf map[uint32]cellKey
	grid   *grid
	ids    *IDGenerator

	// largest radius ever added; widens the grid box in QueryNearby
	maxRadius float64

	// sorted snapshot, rebuilt lazily after Add/Remove
	snapshot      []*model.Item
	snapshotDirty bool
}

// New creates an empty board with the given grid cell size.
func New(cellSize float64) *Board {
	return &Board{
		items:         make(map[uint32]*model.Item),
		cellOf:        make(map[uint32]cellKey),
		grid:          newGrid(cellSize),
		ids:           NewIDGenerator(),
		snapshotDirty: true,
	}
}

// IDs returns the board's id generator.
func (b *Board) IDs() *IDGenerator {
	return b.ids
}

// Add inserts an item. Returns error if the id is already on the board.
func (b *Board) Add(it *model.Item) error {
	if it == nil {
		return fmt.Errorf("adding nil item")
	}
	if _, ok := b.items[it.ID()]; ok {
		return fmt.Errorf("item %d already on board", it.ID())
	}

	pos := it.Position()
	key := b.grid.keyFor(pos.X, pos.Y)
	b.items[it.ID()] = it
	b.cellOf[it.ID()] = key
	b.grid.insert(it.ID(), key)
	b.maxRadius = max(b.maxRadius, it.Radius())
	b.snapshotDirty = true
	return nil
}

// Remove deletes an item by id. Missing ids are a no-op (ok=false):
// deferred removals routinely fire for items that are already gone.
func (b *Board) Remove(id uint32) (*model.Item, bool) {
	it, ok := b.items[id]
	if !ok {
		return nil, false
	}
	b.grid.remove(id, b.cellOf[id])
	delete(b.cellOf, id)
	delete(b.items, id)
	b.snapshotDirty = true
	return it, true
}

// Get returns an item by id.
func (b *Board) Get(id uint32) (*model.Item, bool) {
	it, ok := b.items[id]
	return it, ok
}

// Len returns the number of items on the board, merged ones included.
func (b *Board) Len() int {
	return len(b.items)
}

// Move updates an item's position and re-buckets it if the cell changed.
func (b *Board) Move(id uint32, pos model.Vec2) bool {
	it, ok := b.items[id]
	if !ok {
		return false
	}
	it.SetPosition(pos)

	key := b.grid.keyFor(pos.X, pos.Y)
	if old := b.cellOf[id]; old != key {
		b.grid.remove(id, old)
		b.grid.insert(id, key)
		b.cellOf[id] = key
	}
	return true
}

// QueryNearby returns items whose circle overlaps the circle of radius
// around pos, ordered by id. Items resting in contact with the query circle
// count. Merged items are included; callers filter.
func (b *Board) QueryNearby(pos model.Vec2, radius float64) []*model.Item {
	if radius < 0 {
		return nil
	}
	var out []*model.Item
	b.grid.forEachInBox(pos.X, pos.Y, radius+b.maxRadius, func(id uint32) bool {
		it := b.items[id]
		if it == nil {
			return true
		}
		reach := radius + it.Radius()
		if it.Position().DistanceSquared(pos) <= reach*reach {
			out = append(out, it)
		}
		return true
	})
	slices.SortFunc(out, byID)
	return out
}

// Items returns all items ordered by id.
// The returned slice is shared until the next Add or Remove; do not modify it.
func (b *Board) Items() []*model.Item {
	if !b.snapshotDirty {
		return b.snapshot
	}
	snap := make([]*model.Item, 0, len(b.items))
	for _, it := range b.items {
		snap = append(snap, it)
	}
	slices.SortFunc(snap, byID)
	b.snapshot = snap
	b.snapshotDirty = false
	return snap
}

// FirstInState returns the live item with the lowest id in state.
func (b *Board) FirstInState(state model.State) (*model.Item, bool) {
	for _, it := range b.Items() {
		if it.State() == state && !it.Merged() {
			return it, true
		}
	}
	return nil, false
}

// Held returns the item currently controlled by the player, if any.
func (b *Board) Held() (*model.Item, bool) {
	for _, it := range b.Items() {
		if it.Held() && !it.Merged() {
			return it, true
		}
	}
	return nil, false
}

func byID(a, b *model.Item) int {
	switch {
	case a.ID() < b.ID():
		return -1
	case a.ID() > b.ID():
		return 1
	default:
		return 0
	}
}
