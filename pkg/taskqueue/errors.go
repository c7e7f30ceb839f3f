package taskqueue

import "errors"

var (
	// ErrClientNil is returned when a nil redis client is provided
	ErrClientNil = errors.New("redis client cannot be nil")

	// ErrEmptyKey is returned when the queue key option is empty
	ErrEmptyKey = errors.New("queue key cannot be empty")

	// ErrPush is returned when inserting an entry fails
	ErrPush = errors.New("failed to push task into the queue")

	// ErrPop is returned when popping an entry fails
	ErrPop = errors.New("failed to pop task from the queue")

	// ErrMalformedEntry is returned when a queue member is not a task id
	ErrMalformedEntry = errors.New("malformed queue entry")
)
