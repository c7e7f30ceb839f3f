// Package httpserver provides the small HTTP server both dispatcher binaries
// run for their operational endpoints. The queuer and runner do all their
// real work against Postgres and Redis; the only HTTP they speak is the
// liveness and readiness surface an orchestrator probes.
//
// The core type is Server which wraps *http.Server and adds:
//
//   - Graceful Shutdown – Run blocks until the context is cancelled or an
//     interrupt/TERM signal is received and then shuts the server down using
//     http.Server.Shutdown with a configurable deadline.
//
//   - Functional Options – Construction is done through New or NewFromConfig
//     together with Option helpers such as WithAddr, WithReadTimeout and
//     WithLogger.
//
//   - Hooks – WithStartHook and WithStopHook let callers execute side-effects
//     around the server life-cycle.
//
//   - Health Checks – HealthCheckHandler returns an http.HandlerFunc that can
//     be mounted as both liveness and readiness probes.
//
// # Usage
//
//	import (
//		"context"
//		"log/slog"
//
//		"github.com/go-chi/chi/v5"
//
//		"github.com/dmitrymomot/dispatchkit/pkg/httpserver"
//		"github.com/dmitrymomot/dispatchkit/pkg/pg"
//		"github.com/dmitrymomot/dispatchkit/pkg/redis"
//	)
//
//	func main() {
//		ctx := context.Background()
//		// ... connect pool and redisClient ...
//
//		r := chi.NewRouter()
//		r.Get("/healthz", httpserver.HealthCheckHandler(ctx, slog.Default()))
//		r.Get("/readyz", httpserver.HealthCheckHandler(ctx, slog.Default(),
//			pg.Healthcheck(pool),
//			redis.Healthcheck(redisClient),
//		))
//
//		srv := httpserver.New(
//			httpserver.WithAddr(":8080"),
//			httpserver.WithShutdownTimeout(10*time.Second),
//		)
//
//		if err := srv.Run(ctx, r); err != nil {
//			slog.Error("ops server stopped", "err", err)
//		}
//	}
//
// # Errors
//
// Run wraps all listen errors with ErrStart, while Shutdown wraps underlying
// shutdown errors with ErrShutdown. Use errors.Is to distinguish them.
package httpserver
