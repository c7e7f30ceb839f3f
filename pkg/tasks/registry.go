package tasks

import (
	"fmt"
	"regexp"
	"slices"
)

// Queue names are snake_case identifiers; they end up inside SQL CASE arms
// and log lines, so the alphabet is kept deliberately narrow.
var queueNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Registry is the process-local mapping from queue name to Worker. Build it
// during startup and treat it as read-only afterwards; Register is not safe
// for concurrent use.
type Registry struct {
	workers map[string]Worker
}

// NewRegistry creates a registry populated with the given workers.
func NewRegistry(workers ...Worker) (*Registry, error) {
	r := &Registry{workers: make(map[string]Worker, len(workers))}
	for _, w := range workers {
		if err := r.Register(w); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a worker. Duplicate or malformed queue names are rejected.
func (r *Registry) Register(w Worker) error {
	if w == nil {
		return ErrWorkerNil
	}
	name := w.QueueName()
	if !queueNameRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidQueueName, name)
	}
	if _, exists := r.workers[name]; exists {
		return fmt.Errorf("%w: %q", ErrWorkerAlreadyRegistered, name)
	}
	if w.RetrySeconds() <= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidRetrySeconds, name)
	}
	if w.DelaySeconds() < 0 {
		return fmt.Errorf("%w: %q", ErrInvalidDelaySeconds, name)
	}
	r.workers[name] = w
	return nil
}

// Lookup returns the worker registered for the queue name.
func (r *Registry) Lookup(queueName string) (Worker, bool) {
	w, ok := r.workers[queueName]
	return w, ok
}

// Names returns the registered queue names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.workers))
	for name := range r.workers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered workers.
func (r *Registry) Len() int {
	return len(r.workers)
}

// Policy snapshots the timing of every registered worker.
func (r *Registry) Policy() Policy {
	p := make(Policy, len(r.workers))
	for name, w := range r.workers {
		p[name] = Timing{DelaySeconds: w.DelaySeconds(), RetrySeconds: w.RetrySeconds()}
	}
	return p
}
