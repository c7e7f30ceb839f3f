package taskstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/dispatchkit/pkg/tasks"
)

// Memory implements the store contract in-process for testing and local
// development. Promotion locks rows for the duration of the sweep the way
// SKIP LOCKED does, and sessions stage their deletes until commit.
type Memory struct {
	mu     sync.Mutex
	policy tasks.Policy
	nextID int64
	rows   map[int64]*tasks.Task
	locked map[int64]struct{}
}

// NewMemory creates an empty in-memory store with the given timing policy.
func NewMemory(policy tasks.Policy) *Memory {
	return &Memory{
		policy: policy,
		rows:   make(map[int64]*tasks.Task),
		locked: make(map[int64]struct{}),
	}
}

// Policy returns the timing policy the store was built with.
func (m *Memory) Policy() tasks.Policy {
	return m.policy
}

// Insert adds a pending task row. A preset creation time is kept, which lets
// tests construct tasks with history; a zero one is filled with now.
func (m *Memory) Insert(ctx context.Context, t *tasks.Task) error {
	if t == nil {
		return ErrTaskNil
	}
	if t.WorkerName == "" {
		return ErrWorkerNameEmpty
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	t.ID = m.nextID
	t.NumPushed = 0
	if t.CreationTime.IsZero() {
		t.CreationTime = time.Now()
	}
	row := *t
	m.rows[t.ID] = &row
	return nil
}

// PromoteEligible mirrors the single-statement sweep: eligible unlocked rows
// are claimed, handed to push, and their bump becomes visible only when the
// push succeeded.
func (m *Memory) PromoteEligible(ctx context.Context, push tasks.PushFunc) (int, error) {
	m.mu.Lock()
	now := time.Now()
	var ids []int64
	for id, row := range m.rows {
		if _, held := m.locked[id]; held {
			continue
		}
		if m.policy.NextEligible(row).After(now) {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)

	promotions := make([]tasks.Promotion, 0, len(ids))
	for _, id := range ids {
		m.locked[id] = struct{}{}
		row := m.rows[id]
		promotions = append(promotions, tasks.Promotion{
			TaskID:     id,
			WorkerName: row.WorkerName,
			NumPushed:  row.NumPushed + 1,
		})
	}
	m.mu.Unlock()

	if len(promotions) == 0 {
		return 0, nil
	}

	finish := func(bump bool) {
		m.mu.Lock()
		for _, id := range ids {
			delete(m.locked, id)
			if bump {
				if row, ok := m.rows[id]; ok {
					row.NumPushed++
				}
			}
		}
		m.mu.Unlock()
	}

	if push != nil {
		if err := push(ctx, promotions); err != nil {
			finish(false)
			return 0, err
		}
	}
	finish(true)
	return len(promotions), nil
}

// BeginSession opens a session whose deletes are staged until Commit.
func (m *Memory) BeginSession(ctx context.Context) (tasks.Session, error) {
	return &memSession{store: m}, nil
}

// Load returns a copy of the committed row, or nil when it is gone.
func (m *Memory) Load(ctx context.Context, _ tasks.Session, id int64) (*tasks.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

// Delete removes a task row immediately, outside any session.
func (m *Memory) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

// Get returns a copy of the committed row for assertions in tests.
func (m *Memory) Get(id int64) (tasks.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[id]
	if !ok {
		return tasks.Task{}, false
	}
	return *row, true
}

// Len returns the number of stored task rows.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// memSession stages DeleteTask calls and applies them on Commit, so a
// worker failure after an early delete leaves the row in place exactly like
// a rolled-back transaction would.
type memSession struct {
	store   *Memory
	mu      sync.Mutex
	deletes []int64
	done    bool
}

func (s *memSession) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	// Arbitrary SQL is accepted but not interpreted; workers exercising real
	// statements are tested against PostgreSQL or a recording fake.
	return pgconn.NewCommandTag(""), nil
}

func (s *memSession) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, ErrMemoryUnsupported
}

func (s *memSession) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return errRow{err: ErrMemoryUnsupported}
}

func (s *memSession) DeleteTask(ctx context.Context, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return pgx.ErrTxClosed
	}
	s.deletes = append(s.deletes, taskID)
	return nil
}

func (s *memSession) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return pgx.ErrTxClosed
	}
	s.done = true

	s.store.mu.Lock()
	for _, id := range s.deletes {
		delete(s.store.rows, id)
	}
	s.store.mu.Unlock()
	return nil
}

func (s *memSession) Rollback(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return pgx.ErrTxClosed
	}
	s.done = true
	s.deletes = nil
	return nil
}

type errRow struct {
	err error
}

func (r errRow) Scan(dest ...any) error {
	return r.err
}
