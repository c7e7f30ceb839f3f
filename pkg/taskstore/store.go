package taskstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/dispatchkit/pkg/tasks"
)

const (
	insertSQL = `INSERT INTO tasks (bg_worker_task, params, execute_after) VALUES ($1, $2, $3) RETURNING id, num_pushed, creation_time`
	loadSQL   = `SELECT id, bg_worker_task, num_pushed, creation_time, execute_after, params FROM tasks WHERE id = $1`
	deleteSQL = `DELETE FROM tasks WHERE id = $1`
)

// Store is the PostgreSQL task store. The promotion statement is a pure
// function of the timing policy, so it is rendered once at construction.
type Store struct {
	pool        *pgxpool.Pool
	policy      tasks.Policy
	promoteSQL  string
	promoteArgs []any
}

// New creates a store bound to the pool and the given timing policy.
func New(pool *pgxpool.Pool, policy tasks.Policy) (*Store, error) {
	if pool == nil {
		return nil, ErrPoolNil
	}
	sql, args := buildPromoteQuery(policy)
	return &Store{
		pool:        pool,
		policy:      policy,
		promoteSQL:  sql,
		promoteArgs: args,
	}, nil
}

// Policy returns the timing policy the store was built with.
func (s *Store) Policy() tasks.Policy {
	return s.policy
}

// Insert adds a pending task row with num_pushed = 0, filling in the
// database-assigned id and creation time.
func (s *Store) Insert(ctx context.Context, t *tasks.Task) error {
	if t == nil {
		return ErrTaskNil
	}
	if t.WorkerName == "" {
		return ErrWorkerNameEmpty
	}
	params := t.Params
	if len(params) == 0 {
		params = nil
	}
	err := s.pool.QueryRow(ctx, insertSQL, t.WorkerName, params, t.ExecuteAfter).
		Scan(&t.ID, &t.NumPushed, &t.CreationTime)
	if err != nil {
		return errors.Join(ErrInsert, err)
	}
	return nil
}

// BeginSession opens the transaction a task executes inside.
func (s *Store) BeginSession(ctx context.Context) (tasks.Session, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Join(ErrBeginSession, err)
	}
	return &pgSession{Tx: tx}, nil
}

// Load returns the task row through the given session, or nil when the row
// is gone (completed by a previous run).
func (s *Store) Load(ctx context.Context, session tasks.Session, id int64) (*tasks.Task, error) {
	var t tasks.Task
	err := session.QueryRow(ctx, loadSQL, id).
		Scan(&t.ID, &t.WorkerName, &t.NumPushed, &t.CreationTime, &t.ExecuteAfter, &t.Params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Join(ErrLoad, err)
	}
	return &t, nil
}

// Delete removes a task row outside any session. Deleting an absent row is
// not an error.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, deleteSQL, id); err != nil {
		return errors.Join(ErrDelete, err)
	}
	return nil
}

// pgSession adapts pgx.Tx to the session contract workers run against.
type pgSession struct {
	pgx.Tx
}

func (s *pgSession) DeleteTask(ctx context.Context, taskID int64) error {
	if _, err := s.Exec(ctx, deleteSQL, taskID); err != nil {
		return errors.Join(ErrDelete, err)
	}
	return nil
}
