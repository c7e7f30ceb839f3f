package dispatch

import "time"

// Config holds the loop settings for the tasks-queuer and tasks-runner
// binaries. Each binary reads the subset it needs; the shared defaults keep
// a fleet of runners interchangeable.
type Config struct {
	RunInterval   time.Duration `env:"QUEUER_RUN_INTERVAL" envDefault:"30s"`
	NumWorkers    int           `env:"NUM_WORKERS" envDefault:"5"`
	PopTimeout    time.Duration `env:"RUNNER_POP_TIMEOUT" envDefault:"120s"`
	LeaseTTL      time.Duration `env:"TASK_LEASE_TTL" envDefault:"300s"`
	QueueKey      string        `env:"TASK_QUEUE_KEY" envDefault:"global-task-queue"`
	OverridesPath string        `env:"WORKER_OVERRIDES_PATH"`
}
