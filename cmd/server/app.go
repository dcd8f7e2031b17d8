package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/platform/memory"
	"github.com/phrazzld/taskflow-api/internal/seed"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// application holds the shared dependencies of a running server.
type application struct {
	config *config.Config
	logger *slog.Logger

	taskStore    store.TaskStore
	eventEmitter events.EventEmitter
	taskService  service.TaskService

	startedAt time.Time
}

// newApplication wires the logger, store, event emitter and service, then
// loads the seed fixture when one is configured.
func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	return newApplicationWithLogger(ctx, cfg, log)
}

func newApplicationWithLogger(ctx context.Context, cfg *config.Config, log *slog.Logger) (*application, error) {
	app := &application{
		config:    cfg,
		logger:    log,
		startedAt: time.Now().UTC(),
	}

	log.Info("server configuration loaded",
		slog.String("host", cfg.Server.Host),
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("environment", cfg.Server.Environment))

	app.taskStore = memory.NewTaskStore(log)
	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(events.NewLoggingHandler(log))
	app.eventEmitter = emitter

	var err error
	app.taskService, err = service.NewTaskService(app.taskStore, app.eventEmitter, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	if cfg.Seed.File != "" {
		if err := app.loadSeed(ctx, cfg.Seed.File); err != nil {
			return nil, err
		}
	}

	log.Info("application initialized successfully")
	return app, nil
}

func (app *application) loadSeed(ctx context.Context, path string) error {
	params, err := seed.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load seed file %s: %w", path, err)
	}

	if _, err := seed.Apply(ctx, app.taskService, params, app.logger); err != nil {
		return fmt.Errorf("failed to apply seed file %s: %w", path, err)
	}

	return nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
