package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ricirt/devlog-poster/internal/config"
	"github.com/ricirt/devlog-poster/internal/db"
	"github.com/ricirt/devlog-poster/internal/generator"
	"github.com/ricirt/devlog-poster/internal/metrics"
	"github.com/ricirt/devlog-poster/internal/publisher"
	"github.com/ricirt/devlog-poster/internal/repository"
	"github.com/ricirt/devlog-poster/internal/service"
)

// Options select what a command needs built.
type Options struct {
	ConfigFile string
	Verbose    bool

	// Posting builds the DailyPoster (generation and publishing credentials).
	Posting bool
	// Bootstrap builds the Bootstrapper (generation credentials).
	Bootstrap bool
}

// AppBuilder constructs the dependencies for one command invocation.
// Tests substitute a builder that returns fakes.
type AppBuilder func(ctx context.Context, opts Options) (*App, error)

// App holds explicitly constructed clients and services. Nothing in this
// module keeps package-level connections; Close releases what NewApp opened.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Repo  repository.WorkItemRepository
	Queue *service.QueueService

	Poster       *service.DailyPoster
	Bootstrapper *service.Bootstrapper

	closers []func()
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// NewApp loads config, opens the store, and wires the services opts asks for.
func NewApp(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if opts.Posting {
		if err := cfg.RequireGeneration(); err != nil {
			return nil, err
		}
		if err := cfg.RequirePublishing(); err != nil {
			return nil, err
		}
	}
	if opts.Bootstrap {
		if err := cfg.RequireGeneration(); err != nil {
			return nil, err
		}
	}

	logger, err := newLogger(cfg.LogLevel, opts.Verbose)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	app.closers = append(app.closers, func() { _ = logger.Sync() })
	app.Metrics = metrics.New(app.Registry)

	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.closers = append(app.closers, closeRepo)
	app.Repo = repo
	app.Queue = service.NewQueueService(repo)

	if !opts.Posting && !opts.Bootstrap {
		return app, nil
	}

	model, err := generator.NewOpenAIModel(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	if err != nil {
		app.Close()
		return nil, err
	}

	if opts.Posting {
		postBackend := generator.NewLLMBackend(model, generator.LLMOptions{
			Model:       cfg.PostModel,
			Temperature: cfg.PostTemperature,
			MaxTokens:   cfg.PostMaxTokens,
		})
		pub := publisher.NewLinkedInPublisher(cfg.LinkedInBaseURL, cfg.LinkedInAccessToken, cfg.LinkedInUserURN, cfg.LinkedInTimeout)

		onRun, onPublishFailed, onPending := app.Metrics.RunHooks()
		app.Poster = service.NewDailyPoster(repo, generator.NewPostGenerator(postBackend), pub, logger, service.Hooks{
			OnRun:           onRun,
			OnPublishFailed: onPublishFailed,
			OnPending:       onPending,
		})
	}

	if opts.Bootstrap {
		timelineBackend := generator.NewLLMBackend(model, generator.LLMOptions{
			Model:       cfg.TimelineModel,
			Temperature: cfg.TimelineTemperature,
			MaxTokens:   cfg.TimelineMaxTokens,
		})
		gen := generator.NewTimelineGenerator(timelineBackend, cfg.TimelineDays, logger)
		app.Bootstrapper = service.NewBootstrapper(repo, gen, logger)
	}

	return app, nil
}

// openRepository picks the store by URL scheme: sqlite:// opens a local
// file, anything else is treated as a Postgres URL and migrated.
func openRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.WorkItemRepository, func(), error) {
	if db.IsSQLite(cfg.DatabaseURL) {
		path := db.SQLitePath(cfg.DatabaseURL)
		sqlDB, err := db.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("opened sqlite store", zap.String("path", path))
		return repository.NewSQLiteWorkItemRepository(sqlDB), func() { _ = sqlDB.Close() }, nil
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Debug("database migrations applied")
	return repository.NewPgWorkItemRepository(pool), pool.Close, nil
}

// newLogger returns a development logger for debug output and a JSON
// production logger otherwise.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	if verbose || level == "debug" {
		return zap.NewDevelopment()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
