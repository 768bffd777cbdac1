package board

import "math"

// DefaultCellSize is the grid cell edge in container units. Items are
// roughly 1 unit across, so an adjacency query (reach ~1.2 once the
// neighbour's radius is added) touches at most 4×4 cells.
const DefaultCellSize = 1.0

// cellKey identifies one grid cell.
type cellKey struct {
	cx, cy int32
}

// grid is a uniform spatial hash over item positions.
// Cells are created lazily; the container has no fixed bounds here.
type grid struct {
	cellSize float64
	inv      float64
	cells    map[cellKey]map[uint32]struct{}
}

func newGrid(cellSize float64) *grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &grid{
		cellSize: cellSize,
		inv:      1 / cellSize,
		cells:    make(map[cellKey]map[uint32]struct{}),
	}
}

// coordToCell converts a container coordinate to a cell index.
func (g *grid) coordToCell(v float64) int32 {
	return int32(math.Floor(v * g.inv))
}

func (g *grid) keyFor(x, y float64) cellKey {
	return cellKey{cx: g.coordToCell(x), cy: g.coordToCell(y)}
}

func (g *grid) insert(id uint32, key cellKey) {
	bucket, ok := g.cells[key]
	if !ok {
		bucket = make(map[uint32]struct{}, 4)
		g.cells[key] = bucket
	}
	bucket[id] = struct{}{}
}

func (g *grid) remove(id uint32, key cellKey) {
	bucket, ok := g.cells[key]
	if !ok {
		return
	}
	delete(bucket, id)
	if len(bucket) == 0 {
		delete(g.cells, key)
	}
}

// forEachInBox calls fn for every id in cells overlapping the square
// [x-r, x+r]×[y-r, y+r]. fn returning false stops iteration.
func (g *grid) forEachInBox(x, y, r float64, fn func(id uint32) bool) {
	minX, maxX := g.coordToCell(x-r), g.coordToCell(x+r)
	minY, maxY := g.coordToCell(y-r), g.coordToCell(y+r)
	for cx := minX; cx <= maxX; cx++ {
		for cy := minY; cy <= maxY; cy++ {
			for id := range g.cells[cellKey{cx: cx, cy: cy}] {
				if !fn(id) {
					return
				}
			}
		}
	}
}
