package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ad-tracker/video-engagement-sim/internal/app"
	"github.com/ad-tracker/video-engagement-sim/internal/config"
	"github.com/ad-tracker/video-engagement-sim/internal/handler"
	"github.com/ad-tracker/video-engagement-sim/internal/jobs"
	"github.com/ad-tracker/video-engagement-sim/internal/queue"
	"github.com/ad-tracker/video-engagement-sim/internal/service"
	"github.com/ad-tracker/video-engagement-sim/internal/supervisor"
	"github.com/ad-tracker/video-engagement-sim/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
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

	var (
		enqueuer  service.Enqueuer
		publisher jobs.Publisher
		checker   handler.HealthChecker
	)

	locker, closeLocker := a.Locker(ctx)
	defer closeLocker()

	queueClient, err := queue.NewClient(cfg.Redis.URL, cfg.JobRunner())
	if err != nil {
		logger.Log.Warn("Failed to initialize queue client, jobs cannot be enqueued", zap.Error(err))
	} else {
		defer queueClient.Close()
		enqueuer = queueClient
	}

	if mp := a.Publisher(); mp != nil {
		defer mp.Close()
		publisher = mp
		checker = mp
	}

	services := a.Services(a.Runner(locker, publisher), enqueuer)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(handler.Handlers{
		Health:     handler.NewHealthHandler(a.Pool, checker),
		Status:     handler.NewStatusHandler(services.Engagement, version),
		Categories: handler.NewCategoryHandler(services.Categories, services.Videos),
		Videos:     handler.NewVideoHandler(services.Videos, services.Engagement),
		Comments:   handler.NewCommentHandler(services.Comments, services.Engagement),
		Jobs:       handler.NewJobHandler(services.Jobs),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Jobs.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	tree := supervisor.NewTree("video-sim-server", logger.Named("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	logger.Log.Info("Server starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("version", version))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor stopped: %w", err)
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		logger.Log.Warn("Services did not stop in time", zap.Int("count", len(report)))
	}

	logger.Log.Info("Server stopped gracefully")
	return nil
}
