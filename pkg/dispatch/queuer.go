package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/dispatchkit/pkg/logger"
	"github.com/dmitrymomot/dispatchkit/pkg/tasks"
)

// DefaultRunInterval is how often the queuer sweeps for eligible tasks when
// not configured otherwise.
const DefaultRunInterval = 30 * time.Second

// PromotionStore defines the slice of the task store the queuer needs.
type PromotionStore interface {
	// PromoteEligible bumps num_pushed on every eligible task and hands the
	// batch to push inside the same transaction.
	PromoteEligible(ctx context.Context, push tasks.PushFunc) (int, error)
}

// QueuePusher adds promoted tasks to the shared queue.
type QueuePusher interface {
	// PushIfAbsent inserts the task id with the given score unless the id is
	// already queued. Returns true when a new entry was added.
	PushIfAbsent(ctx context.Context, taskID, score int64) (bool, error)
}

// Queuer periodically promotes eligible task rows into the shared queue.
// Exactly one queuer instance should run against a database; a second one is
// harmless but wasteful, the row locks make concurrent sweeps skip each
// other's tasks.
type Queuer struct {
	store    PromotionStore
	queue    QueuePusher
	interval time.Duration
	logger   *slog.Logger
}

// NewQueuer creates a queuer over the given store and queue.
func NewQueuer(store PromotionStore, queue QueuePusher, opts ...QueuerOption) (*Queuer, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	if queue == nil {
		return nil, ErrQueueNil
	}

	options := &queuerOptions{
		interval: DefaultRunInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Queuer{
		store:    store,
		queue:    queue,
		interval: options.interval,
		logger:   options.logger.With(logger.Component("queuer")),
	}, nil
}

// Run sweeps immediately and then on every interval tick until ctx is done.
// Queue push failures are logged and retried on the next tick; store errors
// end the loop so the supervisor can restart it.
func (q *Queuer) Run(ctx context.Context) error {
	q.logger.Info("queuer started", slog.Duration("interval", q.interval))

	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		if err := q.sweep(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			q.logger.Info("queuer shutting down")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single promotion sweep and reports how many tasks were
// promoted.
func (q *Queuer) RunOnce(ctx context.Context) (int, error) {
	return q.store.PromoteEligible(ctx, q.push)
}

func (q *Queuer) sweep(ctx context.Context) error {
	count, err := q.RunOnce(ctx)
	switch {
	case err == nil:
		if count > 0 {
			q.logger.Info("tasks promoted", logger.Count(count))
		}
		return nil
	case errors.Is(err, ErrQueuePush) && ctx.Err() == nil:
		q.logger.Error("push failed, promotions rolled back", logger.Error(err))
		return nil
	default:
		return err
	}
}

// push hands one sweep's promotions to the queue. The score is the push
// wall-clock in epoch seconds, so runners drain the oldest entries first.
func (q *Queuer) push(ctx context.Context, promotions []tasks.Promotion) error {
	score := time.Now().Unix()
	for _, p := range promotions {
		added, err := q.queue.PushIfAbsent(ctx, p.TaskID, score)
		if err != nil {
			return errors.Join(ErrQueuePush, err)
		}
		if added {
			q.logger.Debug("task pushed",
				logger.TaskID(p.TaskID),
				logger.Worker(p.WorkerName),
				logger.NumPushed(p.NumPushed))
		} else {
			q.logger.Debug("task already queued", logger.TaskID(p.TaskID))
		}
	}
	return nil
}
