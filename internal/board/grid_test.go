package board

import "testing"

func TestCoordToCell(t *testing.T) {
	g := newGrid(1.0)

	tests := []struct {
		name string
		v    float64
		want int32
	}{
		{name: "origin", v: 0, want: 0},
		{name: "inside first cell", v: 0.99, want: 0},
		{name: "cell edge", v: 1.0, want: 1},
		{name: "just below zero", v: -0.01, want: -1},
		{name: "negative edge", v: -1.0, want: -1},
		{name: "floor of container", v: -4.0, want: -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.coordToCell(tt.v); got != tt.want {
				t.Errorf("coordToCell(%v) = %d, want %d", tt.v, got, tt.want)
			}
		})
	}
}

func TestGrid_InsertRemove(t *testing.T) {
	g := newGrid(0.5)
	k := g.keyFor(0.3, 0.3)

	g.insert(1, k)
	g.insert(2, k)
	g.remove(1, k)

	var seen []uint32
	g.forEachInBox(0.3, 0.3, 0.1, func(id uint32) bool {
		seen = append(seen, id)
		return true
	})
	if len(seen) != 1 || seen[0] != 2 {
		t.Fatalf("forEachInBox = %v, want [2]", seen)
	}

	g.remove(2, k)
	if len(g.cells) != 0 {
		t.Errorf("empty bucket kept: %d cells", len(g.cells))
	}

	// removing from a missing cell is a no-op
	g.remove(3, cellKey{cx: 9, cy: 9})
}

func TestNewGrid_NonPositiveCellSize(t *testing.T) {
	g := newGrid(0)
	if g.cellSize != DefaultCellSize {
		t.Errorf("cellSize = %v, want %v", g.cellSize, DefaultCellSize)
	}
}
