package tasks

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Session is the transaction-scoped database handle a worker runs inside.
// The dispatcher opens one session per task, commits it when Run returns nil
// and rolls it back otherwise, so everything a worker does through the
// session shares the fate of its own acknowledgement.
type Session interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row

	// DeleteTask acknowledges completion of the task by removing its row.
	// The removal becomes durable together with the session commit.
	DeleteTask(ctx context.Context, taskID int64) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Lease is a runner's exclusive, TTL-bounded right to execute one task.
// Workers running longer than the TTL must call Extend periodically.
type Lease interface {
	// Name returns the lease key, "task-runner:{task_id}".
	Name() string
	// Extend resets the TTL. Fails with the lease service's not-held error
	// when the lease expired and was claimed by another owner.
	Extend(ctx context.Context) error
	// Release deletes the lease. Same not-held failure mode as Extend;
	// callers log it and move on.
	Release(ctx context.Context) error
}
