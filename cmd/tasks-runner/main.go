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
	"github.com/dmitrymomot/dispatchkit/pkg/lease"
	"github.com/dmitrymomot/dispatchkit/pkg/logger"
	"github.com/dmitrymomot/dispatchkit/pkg/pg"
	"github.com/dmitrymomot/dispatchkit/pkg/redis"
	"github.com/dmitrymomot/dispatchkit/pkg/taskqueue"
	"github.com/dmitrymomot/dispatchkit/pkg/tasks"
	"github.com/dmitrymomot/dispatchkit/pkg/taskstore"
	"github.com/dmitrymomot/dispatchkit/pkg/workers"
)

// tasks-runner is the execution half of the dispatcher: a pool of workers
// pops task ids from the shared Redis queue, leases each one, and runs the
// registered worker inside a database session.
func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("tasks-runner exited", logger.Error(err))
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
		s3Cfg   workers.S3Config
	)
	config.MustLoad(&logCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&rdCfg)
	config.MustLoad(&dspCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&s3Cfg)

	log := logger.New(append(logCfg.Options(), logger.WithService("tasks-runner"))...)
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}

	redisClient, err := redis.Connect(ctx, rdCfg)
	if err != nil {
		pool.Close()
		return err
	}

	resources := &tasks.Resources{DB: pool, Redis: redisClient, Logger: log}
	defer resources.Close()

	registered := []tasks.Worker{
		workers.NewModelVersionCacheInvalidator(),
		workers.NewTableDropper(),
	}
	if s3Cfg.IngestEndpoint != "" {
		s3Client, err := workers.NewS3Client(ctx, s3Cfg)
		if err != nil {
			return err
		}
		sink, err := workers.NewHTTPSink(s3Cfg.IngestEndpoint)
		if err != nil {
			return err
		}
		ingestor, err := workers.NewObjectStorageIngestor(s3Client, sink)
		if err != nil {
			return err
		}
		registered = append(registered, ingestor)
	} else {
		log.InfoContext(ctx, "object storage ingestion disabled, INGEST_ENDPOINT is not set")
	}

	overrides, err := tasks.LoadOverrides(dspCfg.OverridesPath)
	if err != nil {
		return err
	}
	registry, err := tasks.NewRegistry(overrides.Apply(registered...)...)
	if err != nil {
		return err
	}

	store, err := taskstore.New(pool, registry.Policy())
	if err != nil {
		return err
	}
	queue, err := taskqueue.NewRedis(redisClient, taskqueue.WithKey(dspCfg.QueueKey))
	if err != nil {
		return err
	}
	locker, err := lease.NewRedisLocker(redisClient)
	if err != nil {
		return err
	}

	runner, err := dispatch.NewRunner(store, queue, locker, registry,
		dispatch.WithPopTimeout(dspCfg.PopTimeout),
		dispatch.WithLeaseTTL(dspCfg.LeaseTTL),
		dispatch.WithResources(resources),
		dispatch.WithRunnerLogger(log),
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

	log.InfoContext(ctx, "starting runner pool",
		slog.Int("num_workers", dspCfg.NumWorkers),
		slog.String("queue_key", dspCfg.QueueKey),
		slog.Any("workers", registry.Names()),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runner.RunPool(ctx, dspCfg.NumWorkers) })
	g.Go(func() error { return opsServer.Run(ctx, router) })
	return g.Wait()
}
