package lease

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/dispatchkit/pkg/tasks"
)

// Memory implements the locker contract in-process for testing and local
// development. Expiry is evaluated lazily on access, which matches the
// observable behaviour of the Redis implementation.
type Memory struct {
	mu   sync.Mutex
	held map[string]memEntry
}

type memEntry struct {
	token     string
	expiresAt time.Time
}

// NewMemory creates an empty in-memory locker.
func NewMemory() *Memory {
	return &Memory{held: make(map[string]memEntry)}
}

// Acquire takes the named lease for ttl without blocking.
func (m *Memory) Acquire(ctx context.Context, name string, ttl time.Duration) (tasks.Lease, bool, error) {
	if name == "" {
		return nil, false, ErrEmptyName
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.held[name]; ok && time.Now().Before(entry.expiresAt) {
		return nil, false, nil
	}
	token := uuid.NewString()
	m.held[name] = memEntry{token: token, expiresAt: time.Now().Add(ttl)}
	return &memLease{locker: m, name: name, token: token, ttl: ttl}, true, nil
}

// owns reports whether the (name, token) pair is the live holder, removing
// stale entries it trips over.
func (m *Memory) owns(name, token string) bool {
	entry, ok := m.held[name]
	if !ok || entry.token != token {
		return false
	}
	if !time.Now().Before(entry.expiresAt) {
		delete(m.held, name)
		return false
	}
	return true
}

type memLease struct {
	locker *Memory
	name   string
	token  string
	ttl    time.Duration
}

func (l *memLease) Name() string {
	return l.name
}

func (l *memLease) Extend(ctx context.Context) error {
	l.locker.mu.Lock()
	defer l.locker.mu.Unlock()

	if !l.locker.owns(l.name, l.token) {
		return ErrNotHeld
	}
	l.locker.held[l.name] = memEntry{token: l.token, expiresAt: time.Now().Add(l.ttl)}
	return nil
}

func (l *memLease) Release(ctx context.Context) error {
	l.locker.mu.Lock()
	defer l.locker.mu.Unlock()

	if !l.locker.owns(l.name, l.token) {
		return ErrNotHeld
	}
	delete(l.locker.held, l.name)
	return nil
}
