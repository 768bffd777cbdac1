package board

import (
	"log/slog"
	"slices"
	"time"

	"github.com/udisondev/onigiri/internal/model"
)

// RemovalTask is a deferred removal of one item.
type RemovalTask struct {
	ItemID uint32
	DueAt  time.Duration // session clock
}

// RemovalQueue holds removals scheduled after a merge or a match.
// Keyed by item id: scheduling the same item twice keeps the earlier deadline.
type RemovalQueue struct {
	tasks map[uint32]*RemovalTask
}

// NewRemovalQueue creates an empty queue.
func NewRemovalQueue() *RemovalQueue {
	return &RemovalQueue{
		tasks: make(map[uint32]*RemovalTask),
	}
}

// Schedule queues removal of itemID at dueAt.
func (q *RemovalQueue) Schedule(itemID uint32, dueAt time.Duration) {
	if task, ok := q.tasks[itemID]; ok {
		if dueAt < task.DueAt {
			task.DueAt = dueAt
		}
		return
	}
	q.tasks[itemID] = &RemovalTask{ItemID: itemID, DueAt: dueAt}

	slog.Debug("removal scheduled", "itemID", itemID, "dueAt", dueAt)
}

// Cancel drops a scheduled removal.
func (q *RemovalQueue) Cancel(itemID uint32) {
	delete(q.tasks, itemID)
}

// Pending reports whether itemID has a scheduled removal.
func (q *RemovalQueue) Pending(itemID uint32) bool {
	_, ok := q.tasks[itemID]
	return ok
}

// TaskCount returns number of scheduled removals.
func (q *RemovalQueue) TaskCount() int {
	return len(q.tasks)
}

// Process removes every item whose task is due at now, in id order.
// Items already gone from the board are skipped silently. onRemove is
// called for each item actually removed.
func (q *RemovalQueue) Process(now time.Duration, b *Board, onRemove func(*model.Item)) int {
	var due []uint32
	for id, task := range q.tasks {
		if task.DueAt <= now {
			due = append(due, id)
			delete(q.tasks, id)
		}
	}
	if len(due) == 0 {
		return 0
	}
	slices.Sort(due)

	removed := 0
	for _, id := range due {
		it, ok := b.Remove(id)
		if !ok {
			slog.Debug("removal skipped (already gone)", "itemID", id)
			continue
		}
		it.MarkMerged()
		removed++
		if onRemove != nil {
			onRemove(it)
		}
	}
	return removed
}
