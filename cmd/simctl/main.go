// Command simctl seeds the simulator's database and runs jobs on demand.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ad-tracker/video-engagement-sim/internal/app"
	"github.com/ad-tracker/video-engagement-sim/internal/config"
	"github.com/ad-tracker/video-engagement-sim/pkg/logger"
)

// env is built in PersistentPreRunE and shared by the subcommands.
type env struct {
	app         *app.App
	services    *app.Services
	closeLocker func()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		e        env
		logLevel string
	)

	root := &cobra.Command{
		Use:          "simctl",
		Short:        "Seed and drive the video engagement simulator",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if logLevel == "" {
				logLevel = cfg.Logging.Level
			}
			if err := logger.Init(logLevel, cfg.Logging.File, cfg.Logging.Format); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			e.app = a

			// Jobs run in-process but share the worker's leases; no queue or publisher.
			locker, closeLocker := a.Locker(cmd.Context())
			e.closeLocker = closeLocker
			e.services = a.Services(a.Runner(locker, nil), nil)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if e.closeLocker != nil {
				e.closeLocker()
			}
			if e.app != nil {
				e.app.Close()
			}
			_ = logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	root.AddCommand(
		newSeedCategoriesCmd(&e),
		newSeedVideosCmd(&e),
		newSeedCommentsCmd(&e),
		newRunJobCmd(&e),
		newJobsCmd(&e),
	)

	return root
}
