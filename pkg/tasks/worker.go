package tasks

import (
	"context"
	"time"
)

// Default timing applied to tasks whose queue name has no registered worker.
// Such tasks keep being re-promoted on a slow schedule so they surface in
// logs instead of silently disappearing.
const (
	DefaultDelaySeconds = 0
	DefaultRetrySeconds = 200
)

// Worker executes tasks of one queue name.
//
// Run must either delete the task row through the session and return nil
// (the dispatcher commits the session), or return an error (the dispatcher
// rolls the session back and the row survives for retry). Wrapping the error
// with Fatal drops the row instead. Long-running workers should call
// lease.Extend before the lease TTL elapses.
type Worker interface {
	// QueueName is the stable identifier matched against Task.WorkerName.
	QueueName() string
	// DelaySeconds is the initial wait after the task's anchor time before
	// the first promotion.
	DelaySeconds() int
	// RetrySeconds is added per completed push, producing a linear backoff.
	RetrySeconds() int
	Run(ctx context.Context, task *Task, session Session, res *Resources, lease Lease) error
}

// RunFunc is the signature of a worker body used with WorkerFunc.
type RunFunc func(ctx context.Context, task *Task, session Session, res *Resources, lease Lease) error

// WorkerFunc adapts a plain function into a Worker.
func WorkerFunc(queueName string, delaySeconds, retrySeconds int, run RunFunc) Worker {
	return &funcWorker{
		queueName:    queueName,
		delaySeconds: delaySeconds,
		retrySeconds: retrySeconds,
		run:          run,
	}
}

type funcWorker struct {
	queueName    string
	delaySeconds int
	retrySeconds int
	run          RunFunc
}

func (w *funcWorker) QueueName() string { return w.queueName }
func (w *funcWorker) DelaySeconds() int { return w.delaySeconds }
func (w *funcWorker) RetrySeconds() int { return w.retrySeconds }

func (w *funcWorker) Run(ctx context.Context, task *Task, session Session, res *Resources, lease Lease) error {
	return w.run(ctx, task, session, res, lease)
}

// Timing is the promotion schedule of one queue name.
type Timing struct {
	DelaySeconds int
	RetrySeconds int
}

// Policy maps queue names to promotion timing. It is a pure snapshot of a
// registry, safe to share between the queuer and the task store.
type Policy map[string]Timing

// For returns the timing for a queue name, falling back to the defaults for
// unknown names.
func (p Policy) For(queueName string) Timing {
	if t, ok := p[queueName]; ok {
		return t
	}
	return Timing{DelaySeconds: DefaultDelaySeconds, RetrySeconds: DefaultRetrySeconds}
}

// NextEligible computes the earliest instant at which the queuer may promote
// the task again. Each completed push moves the horizon one retry step
// further out.
func (p Policy) NextEligible(t *Task) time.Time {
	timing := p.For(t.WorkerName)
	return t.Anchor().
		Add(time.Duration(timing.DelaySeconds) * time.Second).
		Add(time.Duration(t.NumPushed) * time.Duration(timing.RetrySeconds) * time.Second)
}
