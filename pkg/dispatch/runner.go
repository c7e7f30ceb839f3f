package dispatch

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/dispatchkit/pkg/logger"
	"github.com/dmitrymomot/dispatchkit/pkg/tasks"
)

const (
	// DefaultNumWorkers is how many concurrent runner loops RunPool starts
	// when the configuration does not say otherwise.
	DefaultNumWorkers = 5

	// DefaultPopTimeout bounds one blocking pop so a quiet queue still lets
	// the loop observe shutdown.
	DefaultPopTimeout = 2 * time.Minute

	// DefaultLeaseTTL is how long a popped task stays leased to one runner.
	// Workers running longer than this must extend their lease.
	DefaultLeaseTTL = 5 * time.Minute

	// popFailurePause keeps a broken queue connection from spinning the loop.
	popFailurePause = time.Second
)

// SessionStore defines the slice of the task store the runner needs.
type SessionStore interface {
	// BeginSession opens the transaction one task run happens in.
	BeginSession(ctx context.Context) (tasks.Session, error)

	// Load fetches the task row, or nil when it no longer exists.
	Load(ctx context.Context, session tasks.Session, id int64) (*tasks.Task, error)
}

// QueuePopper blocks for the next due task.
type QueuePopper interface {
	// PopMin removes and returns the queued entry with the lowest score,
	// waiting up to timeout. A nil entry means the wait timed out.
	PopMin(ctx context.Context, timeout time.Duration) (*tasks.QueueEntry, error)
}

// Locker grants per-task execution leases.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (tasks.Lease, bool, error)
}

// Runner drains the shared queue and executes the registered worker for each
// popped task inside a lease and a store session.
type Runner struct {
	store      SessionStore
	queue      QueuePopper
	locker     Locker
	registry   *tasks.Registry
	resources  *tasks.Resources
	popTimeout time.Duration
	leaseTTL   time.Duration
	logger     *slog.Logger
}

// NewRunner creates a runner over the given store, queue, locker and worker
// registry.
func NewRunner(store SessionStore, queue QueuePopper, locker Locker, registry *tasks.Registry, opts ...RunnerOption) (*Runner, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	if queue == nil {
		return nil, ErrQueueNil
	}
	if locker == nil {
		return nil, ErrLockerNil
	}
	if registry == nil {
		return nil, ErrRegistryNil
	}

	options := &runnerOptions{
		popTimeout: DefaultPopTimeout,
		leaseTTL:   DefaultLeaseTTL,
		resources:  &tasks.Resources{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Runner{
		store:      store,
		queue:      queue,
		locker:     locker,
		registry:   registry,
		resources:  options.resources,
		popTimeout: options.popTimeout,
		leaseTTL:   options.leaseTTL,
		logger:     options.logger.With(logger.Component("runner")),
	}, nil
}

// RunPool starts n concurrent Run loops and blocks until all exit. The first
// store error cancels the rest.
func (r *Runner) RunPool(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	for range n {
		g.Go(func() error {
			return r.Run(ctx)
		})
	}
	return g.Wait()
}

// Run drains the queue until ctx is done. Per-task failures are logged and
// the loop keeps going; store errors end it.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("runner started",
		slog.Duration("pop_timeout", r.popTimeout),
		slog.Duration("lease_ttl", r.leaseTTL))

	for {
		if ctx.Err() != nil {
			r.logger.Info("runner shutting down")
			return ctx.Err()
		}

		entry, err := r.queue.PopMin(ctx, r.popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				r.logger.Info("runner shutting down")
				return ctx.Err()
			}
			r.logger.Warn("queue pop failed", logger.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(popFailurePause):
			}
			continue
		}
		if entry == nil {
			// Quiet queue, the blocking pop timed out.
			continue
		}

		if err := r.process(ctx, entry, time.Now()); err != nil {
			return err
		}
	}
}

// process executes one queue entry end to end. A nil return means the loop
// may continue; an error means the store is unusable and the loop must stop.
func (r *Runner) process(ctx context.Context, entry *tasks.QueueEntry, popped time.Time) error {
	leaseName := tasks.LeaseName(entry.TaskID)

	lease, acquired, err := r.locker.Acquire(ctx, leaseName, r.leaseTTL)
	if err != nil {
		r.logger.Warn("lease acquire failed", logger.TaskID(entry.TaskID), logger.Error(err))
		return nil
	}
	if !acquired {
		r.logger.Info("task already leased", logger.TaskID(entry.TaskID), logger.Lease(leaseName))
		return nil
	}
	defer func() {
		if err := lease.Release(ctx); err != nil {
			r.logger.Error("lease release failed",
				logger.TaskID(entry.TaskID),
				logger.Lease(leaseName),
				logger.Error(err))
		}
	}()

	session, err := r.store.BeginSession(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = session.Rollback(ctx)
		}
	}()

	task, err := r.store.Load(ctx, session, entry.TaskID)
	if err != nil {
		return err
	}
	if task == nil {
		// The owning worker deleted the row while this entry was in flight.
		r.logger.Debug("task row gone, skipping", logger.TaskID(entry.TaskID))
		return nil
	}

	worker, ok := r.registry.Lookup(task.WorkerName)
	if !ok {
		r.logger.Error("no worker registered, leaving task for retry",
			logger.TaskID(task.ID),
			logger.Worker(task.WorkerName))
		return nil
	}

	start := time.Now()
	runErr := worker.Run(ctx, task, session, r.resources, lease)

	switch {
	case runErr == nil:
		if err := session.Commit(ctx); err != nil {
			return err
		}
		committed = true
		r.logger.Info("task completed",
			logger.TaskID(task.ID),
			logger.Worker(task.WorkerName),
			logger.NumPushed(task.NumPushed),
			logger.Duration(time.Since(start)),
			logger.Delay(popped.Sub(time.Unix(entry.Score, 0))))
		return nil

	case ctx.Err() != nil:
		// Shutdown interrupted the run. Roll back and let a later push retry.
		return ctx.Err()

	case tasks.IsFatal(runErr):
		if err := session.DeleteTask(ctx, task.ID); err != nil {
			return err
		}
		if err := session.Commit(ctx); err != nil {
			return err
		}
		committed = true
		r.logger.Error("task failed permanently, dropping",
			logger.TaskID(task.ID),
			logger.Worker(task.WorkerName),
			logger.NumPushed(task.NumPushed),
			logger.Error(runErr))
		return nil

	default:
		r.logger.Error("task failed, leaving for retry",
			logger.TaskID(task.ID),
			logger.Worker(task.WorkerName),
			logger.NumPushed(task.NumPushed),
			logger.Duration(time.Since(start)),
			logger.Error(runErr))
		return nil
	}
}
