package board

// IDGenerator hands out item ids for one board.
//
// ID ranges (convention):
//
//	0            invalid
//	1 - 0x0FFFFFFF   dropped items
//	0x10000000 -     items created by merges (rocks)
//
// Only the session goroutine allocates ids, so plain counters are enough.
type IDGenerator struct {
	nextDropID  uint32
	nextMergeID uint32
}

const mergeIDBase = 0x10000000

// NewIDGenerator creates a generator with both ranges at their start.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{
		nextDropID:  0,
		nextMergeID: mergeIDBase,
	}
}

// NextDropID returns the next id for a spawner-created item.
func (g *IDGenerator) NextDropID() uint32 {
	g.nextDropID++
	return g.nextDropID
}

// NextMergeID returns the next id for a merge-created item.
func (g *IDGenerator) NextMergeID() uint32 {
	g.nextMergeID++
	return g.nextMergeID
}
