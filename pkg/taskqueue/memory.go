package taskqueue

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/dmitrymomot/dispatchkit/pkg/tasks"
)

// Memory implements the queue contract in-process for testing and local
// development. Entries are kept sorted by (score, task id).
type Memory struct {
	mu      sync.Mutex
	entries []tasks.QueueEntry
	present map[int64]struct{}
	wake    chan struct{}
}

// NewMemory creates an empty in-memory queue.
func NewMemory() *Memory {
	return &Memory{
		present: make(map[int64]struct{}),
		wake:    make(chan struct{}, 1),
	}
}

// PushIfAbsent inserts the entry unless the task id is already queued.
func (q *Memory) PushIfAbsent(ctx context.Context, taskID, score int64) (bool, error) {
	q.mu.Lock()
	if _, exists := q.present[taskID]; exists {
		q.mu.Unlock()
		return false, nil
	}
	entry := tasks.QueueEntry{TaskID: taskID, Score: score}
	i := sort.Search(len(q.entries), func(i int) bool {
		if q.entries[i].Score != entry.Score {
			return q.entries[i].Score > entry.Score
		}
		return q.entries[i].TaskID > entry.TaskID
	})
	q.entries = slices.Insert(q.entries, i, entry)
	q.present[taskID] = struct{}{}
	q.mu.Unlock()

	q.signal()
	return true, nil
}

// PopMin blocks up to timeout for the smallest-score entry. Nil entry on
// timeout. Safe for concurrent consumers; each entry is delivered once.
func (q *Memory) PopMin(ctx context.Context, timeout time.Duration) (*tasks.QueueEntry, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		q.mu.Lock()
		if len(q.entries) > 0 {
			entry := q.entries[0]
			q.entries = q.entries[1:]
			delete(q.present, entry.TaskID)
			more := len(q.entries) > 0
			q.mu.Unlock()
			// Pass the wakeup on so a second waiting consumer sees the
			// remaining entries.
			if more {
				q.signal()
			}
			return &entry, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, nil
		case <-q.wake:
		}
	}
}

// Len returns the number of queued entries.
func (q *Memory) Len(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.entries)), nil
}

func (q *Memory) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
