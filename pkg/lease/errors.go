package lease

import "errors"

var (
	// ErrClientNil is returned when a nil redis client is provided
	ErrClientNil = errors.New("redis client cannot be nil")

	// ErrEmptyName is returned when acquiring a lease with an empty name
	ErrEmptyName = errors.New("lease name cannot be empty")

	// ErrAcquire is returned when the acquire round-trip fails
	ErrAcquire = errors.New("failed to acquire lease")

	// ErrExtend is returned when the extend round-trip fails
	ErrExtend = errors.New("failed to extend lease")

	// ErrRelease is returned when the release round-trip fails
	ErrRelease = errors.New("failed to release lease")

	// ErrNotHeld is returned when extending or releasing a lease that has
	// expired or been claimed by another owner. Callers log it and move on.
	ErrNotHeld = errors.New("lease not held")
)
