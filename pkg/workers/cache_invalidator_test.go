package workers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatchkit/pkg/tasks"
	"github.com/dmitrymomot/dispatchkit/pkg/workers"
)

func TestModelVersionCacheInvalidatorSchedule(t *testing.T) {
	t.Parallel()

	w := workers.NewModelVersionCacheInvalidator()
	assert.Equal(t, "model_version_cache_invalidation", w.QueueName())
	assert.Equal(t, 60, w.DelaySeconds())
	assert.Equal(t, 120, w.RetrySeconds())
}

func TestModelVersionCacheInvalidatorRun(t *testing.T) {
	t.Parallel()

	params := `{"organization_id":"org-1","model_version_id":"v-42"}`

	t.Run("deletes matched keys across scan pages", func(t *testing.T) {
		t.Parallel()

		db := &fakeRedis{pages: []scanPage{
			{keys: []string{
				"cache:org:org-1:model_version:v-42:features",
				"cache:org:org-1:model_version:v-42:baseline",
			}, cursor: 7},
			{keys: []string{
				"cache:org:org-1:model_version:v-42:thresholds",
			}, cursor: 0},
		}}
		session := &fakeSession{}
		task := testTask(11, workers.QueueModelVersionCacheInvalidation, params)

		w := workers.NewModelVersionCacheInvalidator(workers.WithScanBatchSize(100))
		err := w.Run(context.Background(), task, session, testResources(db), &fakeLease{})
		require.NoError(t, err)

		wantPattern := workers.CacheKeyPattern("org-1", "v-42")
		assert.Equal(t, "cache:org:org-1:model_version:v-42:*", wantPattern)
		require.Len(t, db.patterns, 2, "one SCAN per cursor page")
		for _, p := range db.patterns {
			assert.Equal(t, wantPattern, p)
		}

		assert.Equal(t, []string{
			"cache:org:org-1:model_version:v-42:features",
			"cache:org:org-1:model_version:v-42:baseline",
			"cache:org:org-1:model_version:v-42:thresholds",
		}, db.deleted)
		assert.True(t, session.acked(11), "task row must be deleted after all keys are gone")
	})

	t.Run("empty keyspace still acknowledges", func(t *testing.T) {
		t.Parallel()

		db := &fakeRedis{pages: []scanPage{{cursor: 0}}}
		session := &fakeSession{}
		task := testTask(12, workers.QueueModelVersionCacheInvalidation, params)

		w := workers.NewModelVersionCacheInvalidator()
		err := w.Run(context.Background(), task, session, testResources(db), &fakeLease{})
		require.NoError(t, err)

		assert.Empty(t, db.deleted)
		assert.True(t, session.acked(12))
	})

	t.Run("malformed params fail fatally", func(t *testing.T) {
		t.Parallel()

		session := &fakeSession{}
		task := testTask(13, workers.QueueModelVersionCacheInvalidation, `{"organization_id":`)

		w := workers.NewModelVersionCacheInvalidator()
		err := w.Run(context.Background(), task, session, testResources(&fakeRedis{}), &fakeLease{})
		require.Error(t, err)
		assert.True(t, tasks.IsFatal(err))
		assert.False(t, session.acked(13))
	})

	t.Run("missing params fail fatally", func(t *testing.T) {
		t.Parallel()

		session := &fakeSession{}
		task := testTask(14, workers.QueueModelVersionCacheInvalidation, "")

		w := workers.NewModelVersionCacheInvalidator()
		err := w.Run(context.Background(), task, session, testResources(&fakeRedis{}), &fakeLease{})
		require.Error(t, err)
		assert.True(t, tasks.IsFatal(err))
		assert.ErrorIs(t, err, tasks.ErrNoParams)
	})

	t.Run("incomplete params fail fatally", func(t *testing.T) {
		t.Parallel()

		session := &fakeSession{}
		task := testTask(15, workers.QueueModelVersionCacheInvalidation, `{"organization_id":"org-1"}`)

		w := workers.NewModelVersionCacheInvalidator()
		err := w.Run(context.Background(), task, session, testResources(&fakeRedis{}), &fakeLease{})
		require.Error(t, err)
		assert.True(t, tasks.IsFatal(err))
	})

	t.Run("missing redis client leaves the task for retry", func(t *testing.T) {
		t.Parallel()

		session := &fakeSession{}
		task := testTask(16, workers.QueueModelVersionCacheInvalidation, params)

		w := workers.NewModelVersionCacheInvalidator()
		err := w.Run(context.Background(), task, session, testResources(nil), &fakeLease{})
		require.Error(t, err)
		assert.ErrorIs(t, err, workers.ErrRedisUnavailable)
		requireNotFatal(t, err)
		assert.False(t, session.acked(16))
	})

	t.Run("redis failure leaves the task for retry", func(t *testing.T) {
		t.Parallel()

		db := &fakeRedis{
			pages:  []scanPage{{keys: []string{"cache:org:org-1:model_version:v-42:features"}, cursor: 0}},
			delErr: errors.New("connection reset by peer"),
		}
		session := &fakeSession{}
		task := testTask(17, workers.QueueModelVersionCacheInvalidation, params)

		w := workers.NewModelVersionCacheInvalidator()
		err := w.Run(context.Background(), task, session, testResources(db), &fakeLease{})
		require.Error(t, err)
		requireNotFatal(t, err)
		assert.Empty(t, db.deleted)
		assert.False(t, session.acked(17))
	})
}
