package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/haiminh-dev/visadossier/internal/config"
	"github.com/haiminh-dev/visadossier/internal/core/ports"
	"github.com/haiminh-dev/visadossier/internal/core/usecase"
	"github.com/haiminh-dev/visadossier/internal/infrastructure/cache/fscache"
	pgcache "github.com/haiminh-dev/visadossier/internal/infrastructure/cache/postgres"
	"github.com/haiminh-dev/visadossier/internal/infrastructure/extractor"
	"github.com/haiminh-dev/visadossier/internal/infrastructure/llm/openaichat"
	"github.com/haiminh-dev/visadossier/internal/infrastructure/queue/nats"
	"github.com/haiminh-dev/visadossier/internal/infrastructure/render"
	"github.com/haiminh-dev/visadossier/internal/infrastructure/resilience"
	"github.com/haiminh-dev/visadossier/internal/observability/logging"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue    ports.JobQueue
	Cache    ports.CacheStore
	Pipeline *usecase.PipelineUseCase
	Bookings *usecase.BookingUseCase
	Renderer ports.BookingRenderer

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	logger := logging.NewJSONLogger(service, cfg.LogLevel)

	cache, closeCache, err := newCacheStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	execCfg := resilience.DefaultConfig()
	execCfg.RetryMaxAttempts = cfg.RetryMaxAttempts
	execCfg.BreakerEnabled = cfg.BreakerEnabled
	executor := resilience.NewExecutor(execCfg)

	model := openaichat.New(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel,
		openaichat.WithTemperature(cfg.LLMTemperature),
		openaichat.WithRateLimit(cfg.LLMRateRPS, cfg.LLMRateBurst),
		openaichat.WithResilience(executor),
	)

	extract := extractor.New(logger)
	if cfg.LLMVision {
		extract = extractor.NewWithVision(logger, model)
	}

	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		closeCache()
		return nil, fmt.Errorf("init booking renderer: %w", err)
	}

	var queue *nats.Queue
	if cfg.NATSEnabled {
		queue, err = nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
			Logger:             logger,
		})
		if err != nil {
			closeCache()
			return nil, fmt.Errorf("init job queue: %w", err)
		}
	}

	pipeline := usecase.NewPipelineUseCase(cache, extract, model, cfg.InputDir, cfg.IngestConcurrency, logger)
	bookings := usecase.NewBookingUseCase(cache, extract, model, cfg.InputDir, logger)

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Cache:    cache,
		Pipeline: pipeline,
		Bookings: bookings,
		Renderer: renderer,

		closeFn: func() {
			if queue != nil {
				queue.Close()
			}
			closeCache()
		},
	}
	if queue != nil {
		app.Queue = queue
	}
	return app, nil
}

func newCacheStore(ctx context.Context, cfg config.Config) (ports.CacheStore, func(), error) {
	switch cfg.CacheBackend {
	case "postgres":
		db, err := pgcache.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		store := pgcache.NewStore(db, cfg.CacheDossier)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return store, func() { _ = db.Close() }, nil
	case "fs", "":
		store, err := fscache.New(cfg.CacheDir, cfg.OutputPath)
		if err != nil {
			return nil, nil, fmt.Errorf("init cache dir: %w", err)
		}
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
