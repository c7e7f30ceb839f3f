package taskqueue

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/dispatchkit/pkg/tasks"
)

// DefaultKey is the sorted set shared by every queuer and runner process.
const DefaultKey = "global-task-queue"

// Option configures the queue.
type Option func(*options)

type options struct {
	key string
}

// WithKey overrides the sorted set key. Useful for test isolation; in
// production every process must agree on one key.
func WithKey(key string) Option {
	return func(o *options) {
		o.key = key
	}
}

// Redis is the shared task queue.
type Redis struct {
	client redis.UniversalClient
	key    string
}

// NewRedis creates a queue on top of an established client.
func NewRedis(client redis.UniversalClient, opts ...Option) (*Redis, error) {
	if client == nil {
		return nil, ErrClientNil
	}
	o := &options{key: DefaultKey}
	for _, opt := range opts {
		opt(o)
	}
	if o.key == "" {
		return nil, ErrEmptyKey
	}
	return &Redis{client: client, key: o.key}, nil
}

// Key returns the sorted set key the queue operates on.
func (q *Redis) Key() string {
	return q.key
}

// PushIfAbsent inserts the task id with the given score unless an entry for
// that id is already queued. Reports whether a new entry was created.
func (q *Redis) PushIfAbsent(ctx context.Context, taskID, score int64) (bool, error) {
	added, err := q.client.ZAddNX(ctx, q.key, redis.Z{
		Score:  float64(score),
		Member: memberFor(taskID),
	}).Result()
	if err != nil {
		return false, errors.Join(ErrPush, err)
	}
	return added > 0, nil
}

// PopMin blocks up to timeout for the entry with the smallest score and
// removes it. A nil entry means the timeout elapsed with the queue empty;
// every entry is delivered to exactly one caller.
func (q *Redis) PopMin(ctx context.Context, timeout time.Duration) (*tasks.QueueEntry, error) {
	z, err := q.client.BZPopMin(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Join(ErrPop, err)
	}
	return entryFromZ(z.Z)
}

// Len returns the number of queued entries.
func (q *Redis) Len(ctx context.Context) (int64, error) {
	n, err := q.client.ZCard(ctx, q.key).Result()
	if err != nil {
		return 0, errors.Join(ErrPop, err)
	}
	return n, nil
}

func memberFor(taskID int64) string {
	return strconv.FormatInt(taskID, 10)
}

func entryFromZ(z redis.Z) (*tasks.QueueEntry, error) {
	member, ok := z.Member.(string)
	if !ok {
		return nil, ErrMalformedEntry
	}
	id, err := strconv.ParseInt(member, 10, 64)
	if err != nil {
		return nil, errors.Join(ErrMalformedEntry, err)
	}
	return &tasks.QueueEntry{TaskID: id, Score: int64(z.Score)}, nil
}
