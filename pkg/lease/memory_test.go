package lease_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatchkit/pkg/lease"
)

func TestMemory_Acquire(t *testing.T) {
	t.Parallel()

	t.Run("grants a free lease", func(t *testing.T) {
		t.Parallel()

		m := lease.NewMemory()
		l, ok, err := m.Acquire(context.Background(), "task-runner:1", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "task-runner:1", l.Name())
	})

	t.Run("refuses a held lease", func(t *testing.T) {
		t.Parallel()

		m := lease.NewMemory()
		ctx := context.Background()

		_, ok, err := m.Acquire(ctx, "task-runner:2", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		l, ok, err := m.Acquire(ctx, "task-runner:2", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, l)
	})

	t.Run("different names are independent", func(t *testing.T) {
		t.Parallel()

		m := lease.NewMemory()
		ctx := context.Background()

		_, ok, err := m.Acquire(ctx, "task-runner:3", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		_, ok, err = m.Acquire(ctx, "task-runner:4", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		t.Parallel()

		m := lease.NewMemory()
		_, _, err := m.Acquire(context.Background(), "", time.Minute)
		assert.ErrorIs(t, err, lease.ErrEmptyName)
	})
}

func TestMemory_ReleaseAndReacquire(t *testing.T) {
	t.Parallel()

	m := lease.NewMemory()
	ctx := context.Background()

	l, ok, err := m.Acquire(ctx, "task-runner:5", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.Release(ctx))

	_, ok, err = m.Acquire(ctx, "task-runner:5", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second release from the old handle must fail.
	assert.ErrorIs(t, l.Release(ctx), lease.ErrNotHeld)
}

func TestMemory_Expiry(t *testing.T) {
	t.Parallel()

	m := lease.NewMemory()
	ctx := context.Background()

	l, ok, err := m.Acquire(ctx, "task-runner:6", 30*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)

	// TTL elapsed: anyone may take it again, and the old handle lost its grip.
	_, ok, err = m.Acquire(ctx, "task-runner:6", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorIs(t, l.Extend(ctx), lease.ErrNotHeld)
	assert.ErrorIs(t, l.Release(ctx), lease.ErrNotHeld)
}

func TestMemory_ExtendKeepsLeaseAlive(t *testing.T) {
	t.Parallel()

	m := lease.NewMemory()
	ctx := context.Background()

	l, ok, err := m.Acquire(ctx, "task-runner:7", 60*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	// Keep extending past the original TTL.
	for range 3 {
		time.Sleep(40 * time.Millisecond)
		require.NoError(t, l.Extend(ctx))
	}

	_, ok, err = m.Acquire(ctx, "task-runner:7", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "lease should still be held after extends")
}

func TestMemory_ConcurrentAcquireExactlyOne(t *testing.T) {
	t.Parallel()

	m := lease.NewMemory()
	ctx := context.Background()

	const attempts = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	start := make(chan struct{})

	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, ok, err := m.Acquire(ctx, "task-runner:8", time.Minute)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, granted)
}
