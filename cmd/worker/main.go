package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ad-tracker/video-engagement-sim/internal/app"
	"github.com/ad-tracker/video-engagement-sim/internal/config"
	"github.com/ad-tracker/video-engagement-sim/internal/queue"
	"github.com/ad-tracker/video-engagement-sim/internal/supervisor"
	"github.com/ad-tracker/video-engagement-sim/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File, cfg.Logging.Format); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	redisOpt, err := queue.ParseRedisURL(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("failed to parse redis URL: %w", err)
	}

	redisClient, err := queue.NewRedisClient(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}

	callbacks := queue.NewCallbackManager()
	if mp := a.Publisher(); mp != nil {
		defer mp.Close()
		callbacks.RegisterCallback(mp.PublishJobRun)
	}

	runner := a.Runner(queue.NewRedisLocker(redisClient), callbacks)

	tree := supervisor.NewTree("video-sim-worker", logger.Named("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	tree.AddJobService(queue.NewTaskServer(redisOpt, queue.NewTaskHandler(runner), queue.ServerConfig{
		Concurrency:     cfg.Jobs.Concurrency,
		RetryDelay:      cfg.Jobs.RetryDelay,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}))

	if cfg.Scheduler.Enabled {
		scheduler := queue.NewScheduler(redisOpt, cfg.Schedules(), cfg.JobRunner())
		tree.AddJobService(scheduler)
		logger.Log.Info("Scheduler enabled", zap.Int("schedules", len(scheduler.Schedules())))
	} else {
		logger.Log.Info("Scheduler disabled, only enqueued jobs will run")
	}

	logger.Log.Info("Worker starting",
		zap.Int("concurrency", cfg.Jobs.Concurrency),
		zap.Strings("jobs", runner.Names()))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor stopped: %w", err)
	}

	logger.Log.Info("Worker stopped gracefully")
	return nil
}
