// Package jobs holds the background worker: an asynq server with the
// nightly reorder-point scan and the cache warmup task. Neither task
// participates in the sync semantics; both are ops conveniences.
package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReorderScan aggregates stock levels and logs products at or
	// below their reorder point.
	TaskReorderScan = "stock:reorder_scan"
	// TaskCacheWarmup primes every local cache partition from the remote
	// store.
	TaskCacheWarmup = "cache:warmup"
)

// NewReorderScanTask constructs a reorder scan task.
func NewReorderScanTask() *asynq.Task {
	return asynq.NewTask(TaskReorderScan, nil)
}

// NewCacheWarmupTask constructs a cache warmup task.
func NewCacheWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskCacheWarmup, nil)
}
