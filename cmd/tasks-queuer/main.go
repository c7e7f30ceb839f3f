package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/dispatchkit/pkg/config"
	"github.com/dmitrymomot/dispatchkit/pkg/dispatch"
	"github.com/dmitrymomot/dispatchkit/pkg/httpserver"
	"github.com/dmitrymomot/dispatchkit/pkg/logger"
	"github.com/dmitrymomot/dispatchkit/pkg/pg"
	"github.com/dmitrymomot/dispatchkit/pkg/redis"
	"github.com/dmitrymomot/dispatchkit/pkg/taskqueue"
	"github.com/dmitrymomot/dispatchkit/pkg/tasks"
	"github.com/dmitrymomot/dispatchkit/pkg/taskstore"
	"github.com/dmitrymomot/dispatchkit/pkg/workers"
)

// tasks-queuer is the promotion half of the dispatcher: a single instance
// sweeps the tasks table on an interval and pushes every task whose pacing
// delay has elapsed onto the shared Redis queue.
func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("tasks-queuer exited", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		logCfg  logger.Config
		pgCfg   pg.Config
		rdCfg   redis.Config
		dspCfg  dispatch.Config
		httpCfg httpserver.Config
	)
	config.MustLoad(&logCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&rdCfg)
	config.MustLoad(&dspCfg)
	config.MustLoad(&httpCfg)

	log := logger.New(append(logCfg.Options(), logger.WithService("tasks-queuer"))...)
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	// The queuer runs as a singleton, which makes it the one safe place to
	// apply schema migrations before any sweep touches the tasks table.
	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	redisClient, err := redis.Connect(ctx, rdCfg)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	overrides, err := tasks.LoadOverrides(dspCfg.OverridesPath)
	if err != nil {
		return err
	}
	policy := overrides.ApplyPolicy(workers.Schedule())

	store, err := taskstore.New(pool, policy)
	if err != nil {
		return err
	}
	queue, err := taskqueue.NewRedis(redisClient, taskqueue.WithKey(dspCfg.QueueKey))
	if err != nil {
		return err
	}

	queuer, err := dispatch.NewQueuer(store, queue,
		dispatch.WithRunInterval(dspCfg.RunInterval),
		dispatch.WithQueuerLogger(log),
	)
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	router.Get("/healthz", httpserver.HealthCheckHandler(ctx, log))
	router.Get("/readyz", httpserver.HealthCheckHandler(ctx, log,
		pg.Healthcheck(pool),
		redis.Healthcheck(redisClient),
	))

	opsServer := httpserver.NewFromConfig(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("ops endpoints listening", slog.String("addr", httpCfg.Addr))
		}),
	)

	log.InfoContext(ctx, "starting queuer",
		slog.Duration("run_interval", dspCfg.RunInterval),
		slog.String("queue_key", dspCfg.QueueKey),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return queuer.Run(ctx) })
	g.Go(func() error { return opsServer.Run(ctx, router) })
	return g.Wait()
}
