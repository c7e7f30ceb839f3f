package taskstore

import "errors"

var (
	// ErrPoolNil is returned when a nil connection pool is provided
	ErrPoolNil = errors.New("connection pool cannot be nil")

	// ErrTaskNil is returned when inserting a nil task
	ErrTaskNil = errors.New("task cannot be nil")

	// ErrWorkerNameEmpty is returned when inserting a task without a queue name
	ErrWorkerNameEmpty = errors.New("task worker name cannot be empty")

	// ErrInsert is returned when inserting a task row fails
	ErrInsert = errors.New("failed to insert task")

	// ErrPromote is returned when the eligibility sweep fails
	ErrPromote = errors.New("failed to promote eligible tasks")

	// ErrLoad is returned when loading a task row fails
	ErrLoad = errors.New("failed to load task")

	// ErrDelete is returned when deleting a task row fails
	ErrDelete = errors.New("failed to delete task")

	// ErrBeginSession is returned when opening a task session fails
	ErrBeginSession = errors.New("failed to begin task session")

	// ErrMemoryUnsupported is returned by the in-memory session for raw SQL,
	// which it does not interpret
	ErrMemoryUnsupported = errors.New("raw SQL is not supported by the in-memory store")
)
