package dispatch

import "errors"

// Common errors
var (
	// ErrStoreNil is returned when a nil task store is provided
	ErrStoreNil = errors.New("task store cannot be nil")

	// ErrQueueNil is returned when a nil queue is provided
	ErrQueueNil = errors.New("queue cannot be nil")

	// ErrLockerNil is returned when a nil locker is provided
	ErrLockerNil = errors.New("locker cannot be nil")

	// ErrRegistryNil is returned when a nil worker registry is provided
	ErrRegistryNil = errors.New("worker registry cannot be nil")

	// ErrQueuePush is returned when handing promotions to the shared queue
	// fails. The promotion transaction rolls back and the next sweep retries.
	ErrQueuePush = errors.New("failed to push promotions to the queue")
)
