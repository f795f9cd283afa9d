package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ricirt/devlog-poster/internal/api"
	"github.com/ricirt/devlog-poster/internal/ratelimiter"
	"github.com/ricirt/devlog-poster/internal/worker"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var noSchedule bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the daily schedule",
		Long: `Start the HTTP server (health, manual trigger, queue views, metrics)
and the daily trigger. The trigger fires on SCHEDULE_CRON in SCHEDULE_TZ,
09:00 local time by default.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := root.options()
			opts.Posting = true
			app, err := root.build(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()
			return serve(cmd.Context(), app, !noSchedule)
		},
	}
	cmd.Flags().BoolVar(&noSchedule, "no-schedule", false, "serve HTTP only; rely on /run-daily or an external scheduler")
	return cmd
}

func serve(ctx context.Context, app *App, schedule bool) error {
	cfg, logger := app.Config, app.Logger

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Context for background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	var wg sync.WaitGroup

	if schedule {
		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		trigger, err := worker.NewDailyTrigger(cfg.ScheduleCron, loc, app.Poster, logger)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			trigger.Run(workerCtx)
		}()
	}

	// ---- HTTP server ----
	router := api.NewRouter(app.Poster, app.Queue, ratelimiter.New(cfg.TriggerRatePerMinute), app.Registry, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// ---- graceful shutdown ----
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-serveErr:
		logger.Error("server error", zap.Error(runErr))
	}

	// 1. Stop accepting new HTTP requests and let a manual run finish.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Stop the schedule and wait for an in-flight scheduled run.
	cancelWorkers()
	wg.Wait()

	logger.Info("server stopped cleanly")
	return runErr
}
