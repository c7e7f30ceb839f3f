package workers

import "github.com/dmitrymomot/dispatchkit/pkg/tasks"

// Schedule returns the promotion timing of every reference worker, whether
// or not the calling process can run it. The queuer derives its eligibility
// query from this, so tasks keep their intended pacing even on deployments
// where a worker's dependencies (object storage, ingest endpoint) are not
// configured and the worker itself is never registered.
func Schedule() tasks.Policy {
	return tasks.Policy{
		QueueModelVersionCacheInvalidation: {DelaySeconds: 60, RetrySeconds: 120},
		QueueDeleteDBTable:                 {DelaySeconds: 0, RetrySeconds: 300},
		QueueObjectStorageIngestion:        {DelaySeconds: 0, RetrySeconds: 600},
	}
}
