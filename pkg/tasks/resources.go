package tasks

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Resources bundles the process-wide clients a worker may need beyond its
// per-task session. The supervisor creates one value per process and closes
// it on every exit path; workers only borrow it.
type Resources struct {
	DB     *pgxpool.Pool
	Redis  redis.UniversalClient
	Logger *slog.Logger
}

// Log returns the configured logger, or slog.Default when none is set.
func (r *Resources) Log() *slog.Logger {
	if r == nil || r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// Close releases the underlying clients. Safe to call on partially
// initialized values.
func (r *Resources) Close() {
	if r == nil {
		return
	}
	if r.DB != nil {
		r.DB.Close()
	}
	if r.Redis != nil {
		_ = r.Redis.Close()
	}
}
