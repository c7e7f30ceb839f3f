package workers

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/dispatchkit/pkg/logger"
	"github.com/dmitrymomot/dispatchkit/pkg/tasks"
)

// QueueModelVersionCacheInvalidation is the queue name tasks for the cache
// invalidator are created under.
const QueueModelVersionCacheInvalidation = "model_version_cache_invalidation"

const defaultScanBatchSize = 500

// CacheInvalidationParams identify the model version whose cached artifacts
// must go.
type CacheInvalidationParams struct {
	OrganizationID string `json:"organization_id"`
	ModelVersionID string `json:"model_version_id"`
}

// ModelVersionCacheInvalidator clears every Redis key cached for one model
// version. It runs 60 seconds after the version change lands, giving
// in-flight requests time to drain, and retries every 2 minutes until the
// keyspace scan succeeds.
type ModelVersionCacheInvalidator struct {
	scanBatchSize int64
}

// NewModelVersionCacheInvalidator creates the invalidation worker. It uses
// the Redis client from the runner's shared resources.
func NewModelVersionCacheInvalidator(opts ...InvalidatorOption) *ModelVersionCacheInvalidator {
	options := &invalidatorOptions{scanBatchSize: defaultScanBatchSize}
	for _, opt := range opts {
		opt(options)
	}
	return &ModelVersionCacheInvalidator{scanBatchSize: options.scanBatchSize}
}

// InvalidatorOption is a functional option for configuring the invalidator
type InvalidatorOption func(*invalidatorOptions)

type invalidatorOptions struct {
	scanBatchSize int64
}

// WithScanBatchSize sets how many keys one SCAN iteration asks Redis for
func WithScanBatchSize(n int64) InvalidatorOption {
	return func(o *invalidatorOptions) {
		if n > 0 {
			o.scanBatchSize = n
		}
	}
}

func (w *ModelVersionCacheInvalidator) QueueName() string { return QueueModelVersionCacheInvalidation }

func (w *ModelVersionCacheInvalidator) DelaySeconds() int { return 60 }

func (w *ModelVersionCacheInvalidator) RetrySeconds() int { return 120 }

// Run scans for the version's cache keys and deletes them batch by batch,
// then acknowledges the task by deleting its row.
func (w *ModelVersionCacheInvalidator) Run(ctx context.Context, task *tasks.Task, session tasks.Session, res *tasks.Resources, _ tasks.Lease) error {
	var params CacheInvalidationParams
	if err := task.DecodeParams(&params); err != nil {
		return tasks.Fatal(err)
	}
	if params.OrganizationID == "" || params.ModelVersionID == "" {
		return tasks.Fatal(fmt.Errorf("cache invalidation params incomplete: org %q, version %q",
			params.OrganizationID, params.ModelVersionID))
	}
	if res == nil || res.Redis == nil {
		return ErrRedisUnavailable
	}

	pattern := CacheKeyPattern(params.OrganizationID, params.ModelVersionID)

	var removed int64
	var cursor uint64
	for {
		batch, next, err := res.Redis.Scan(ctx, cursor, pattern, w.scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("scan cache keys %q: %w", pattern, err)
		}
		if len(batch) > 0 {
			n, err := res.Redis.Del(ctx, batch...).Result()
			if err != nil {
				return fmt.Errorf("delete cache keys %q: %w", pattern, err)
			}
			removed += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	res.Log().Info("model version cache invalidated",
		logger.TaskID(task.ID),
		logger.Worker(w.QueueName()),
		logger.Count(int(removed)))

	return session.DeleteTask(ctx, task.ID)
}

// CacheKeyPattern is the glob every cache key of one model version matches.
func CacheKeyPattern(organizationID, modelVersionID string) string {
	return fmt.Sprintf("cache:org:%s:model_version:%s:*", organizationID, modelVersionID)
}
