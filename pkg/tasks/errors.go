package tasks

import "errors"

// Common errors
var (
	// ErrWorkerNil is returned when a nil worker is registered
	ErrWorkerNil = errors.New("worker cannot be nil")

	// ErrWorkerAlreadyRegistered is returned on duplicate queue names
	ErrWorkerAlreadyRegistered = errors.New("worker already registered for queue name")

	// ErrInvalidQueueName is returned when a queue name is not a snake_case identifier
	ErrInvalidQueueName = errors.New("invalid queue name")

	// ErrInvalidRetrySeconds is returned when a worker declares retry_seconds <= 0
	ErrInvalidRetrySeconds = errors.New("retry seconds must be positive")

	// ErrInvalidDelaySeconds is returned when a worker declares delay_seconds < 0
	ErrInvalidDelaySeconds = errors.New("delay seconds must not be negative")

	// ErrNoParams is returned when decoding the params of a task that has none
	ErrNoParams = errors.New("task has no params")
)

type fatalError struct {
	err error
}

func (e *fatalError) Error() string {
	return "permanent task failure: " + e.err.Error()
}

func (e *fatalError) Unwrap() error {
	return e.err
}

// Fatal marks a handler failure as permanent: the dispatcher deletes the
// task row instead of leaving it for retry. Fatal(nil) returns nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// IsFatal reports whether err, or any error it wraps, was marked with Fatal.
func IsFatal(err error) bool {
	var fe *fatalError
	return errors.As(err, &fe)
}
