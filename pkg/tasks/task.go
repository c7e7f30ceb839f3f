package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Task is one durable work item. A row exists in the tasks table for as long
// as the work is unacknowledged; the owning worker deletes it on success.
type Task struct {
	ID           int64           `json:"id"`
	WorkerName   string          `json:"bg_worker_task"`
	NumPushed    int             `json:"num_pushed"`
	CreationTime time.Time       `json:"creation_time"`
	ExecuteAfter *time.Time      `json:"execute_after,omitempty"`
	Params       json.RawMessage `json:"params,omitempty"`
}

// DecodeParams unmarshals the task's JSON payload into v.
func (t *Task) DecodeParams(v any) error {
	if len(t.Params) == 0 {
		return ErrNoParams
	}
	if err := json.Unmarshal(t.Params, v); err != nil {
		return fmt.Errorf("decode params of task %d: %w", t.ID, err)
	}
	return nil
}

// Anchor is the timestamp promotion scheduling counts from: execute_after
// when set, creation_time otherwise.
func (t *Task) Anchor() time.Time {
	if t.ExecuteAfter != nil {
		return *t.ExecuteAfter
	}
	return t.CreationTime
}

// Promotion is one row returned by the queuer's eligibility sweep: the task
// to enqueue and its push generation after the atomic bump.
type Promotion struct {
	TaskID     int64
	WorkerName string
	NumPushed  int
}

// QueueEntry is one member of the shared sorted-set queue.
type QueueEntry struct {
	TaskID int64
	Score  int64 // epoch seconds (UTC) at push time
}

// PushFunc delivers a batch of promotions to the shared queue. Stores call
// it inside the open promotion transaction; a non-nil error rolls the whole
// sweep back so num_pushed is never advanced for entries that did not make
// it into the queue.
type PushFunc func(ctx context.Context, promotions []Promotion) error

// LeaseName returns the lease key guarding execution of one task.
func LeaseName(taskID int64) string {
	return fmt.Sprintf("task-runner:%d", taskID)
}
