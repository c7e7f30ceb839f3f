package dispatch

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/dispatchkit/pkg/tasks"
)

// RunnerOption is a functional option for configuring a Runner
type RunnerOption func(*runnerOptions)

type runnerOptions struct {
	popTimeout time.Duration
	leaseTTL   time.Duration
	resources  *tasks.Resources
	logger     *slog.Logger
}

// WithPopTimeout bounds one blocking pop against the queue
func WithPopTimeout(d time.Duration) RunnerOption {
	return func(o *runnerOptions) {
		if d > 0 {
			o.popTimeout = d
		}
	}
}

// WithLeaseTTL sets how long a popped task stays leased to this runner
func WithLeaseTTL(d time.Duration) RunnerOption {
	return func(o *runnerOptions) {
		if d > 0 {
			o.leaseTTL = d
		}
	}
}

// WithResources sets the shared handles passed to every worker run
func WithResources(res *tasks.Resources) RunnerOption {
	return func(o *runnerOptions) {
		if res != nil {
			o.resources = res
		}
	}
}

// WithRunnerLogger sets the logger for the runner
func WithRunnerLogger(l *slog.Logger) RunnerOption {
	return func(o *runnerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}
