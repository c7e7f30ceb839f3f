package lease

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/dispatchkit/pkg/tasks"
)

// DefaultTTL bounds how long a crashed holder can block a lease.
const DefaultTTL = 5 * time.Minute

var (
	// extendScript resets the TTL only while the caller still owns the key.
	extendScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0`)

	// releaseScript deletes the key only while the caller still owns it.
	releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)
)

// RedisLocker hands out leases backed by Redis keys.
type RedisLocker struct {
	client redis.UniversalClient
}

// NewRedisLocker creates a locker on top of an established client.
func NewRedisLocker(client redis.UniversalClient) (*RedisLocker, error) {
	if client == nil {
		return nil, ErrClientNil
	}
	return &RedisLocker{client: client}, nil
}

// Acquire takes the named lease for ttl without blocking. ok is false with a
// nil error when another owner currently holds it. Non-positive ttl falls
// back to DefaultTTL.
func (l *RedisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (tasks.Lease, bool, error) {
	if name == "" {
		return nil, false, ErrEmptyName
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, name, token, ttl).Result()
	if err != nil {
		return nil, false, errors.Join(ErrAcquire, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &redisLease{client: l.client, name: name, token: token, ttl: ttl}, true, nil
}

type redisLease struct {
	client redis.UniversalClient
	name   string
	token  string
	ttl    time.Duration
}

func (l *redisLease) Name() string {
	return l.name
}

func (l *redisLease) Extend(ctx context.Context) error {
	res, err := extendScript.Run(ctx, l.client, []string{l.name}, l.token, l.ttl.Milliseconds()).Int()
	if err != nil {
		return errors.Join(ErrExtend, err)
	}
	if res == 0 {
		return ErrNotHeld
	}
	return nil
}

func (l *redisLease) Release(ctx context.Context) error {
	res, err := releaseScript.Run(ctx, l.client, []string{l.name}, l.token).Int()
	if err != nil {
		return errors.Join(ErrRelease, err)
	}
	if res == 0 {
		return ErrNotHeld
	}
	return nil
}
