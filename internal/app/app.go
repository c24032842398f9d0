package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/dmngrid/internal/ctxlog"
	"github.com/specialistvlad/dmngrid/internal/engine"
	"github.com/specialistvlad/dmngrid/internal/engine/local"
	"github.com/specialistvlad/dmngrid/internal/engine/remote"
	"github.com/specialistvlad/dmngrid/internal/inmemorystore"
	"github.com/specialistvlad/dmngrid/internal/resultstore"
	"github.com/specialistvlad/dmngrid/internal/resultstore/redisstore"
	"github.com/specialistvlad/dmngrid/internal/service"
	"github.com/specialistvlad/dmngrid/internal/testrunner"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *engine.Registry
	store    resultstore.Store
	closers  []io.Closer
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and engine
// registry. Logs are written to logW.
func NewApp(outW, logW io.Writer, cfg *Config) (*App, error) {
	logger := NewLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	reg, err := newRegistry(cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("Engines registered.", "engines", len(reg.All()))

	a := &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
	}

	switch cfg.Store.Type {
	case StoreRedis:
		opts := []redisstore.Option{redisstore.WithTTL(cfg.Store.TTL)}
		if cfg.Store.Prefix != "" {
			opts = append(opts, redisstore.WithPrefix(cfg.Store.Prefix))
		}
		s := redisstore.New(cfg.Store.RedisAddr, opts...)
		a.store = s
		a.closers = append(a.closers, s)
		logger.Debug("Using redis result store.", "addr", cfg.Store.RedisAddr)
	default:
		a.store = inmemorystore.New()
		logger.Debug("Using in-memory result store.")
	}

	return a, nil
}

// newRegistry builds every engine from its options in cfg.
func newRegistry(cfg *Config) (*engine.Registry, error) {
	if len(cfg.Engines[engine.LocalInterpreterID]) > 0 {
		return nil, fmt.Errorf("engine '%s' takes no options", engine.LocalInterpreterID)
	}
	opts, err := remote.DecodeOptions(cfg.Engines[engine.RemoteServiceID])
	if err != nil {
		return nil, err
	}
	return engine.NewRegistry(local.New(), remote.New(opts)), nil
}

// Context returns ctx carrying the application logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Out is where command output is written.
func (a *App) Out() io.Writer { return a.outW }

// Config returns the validated configuration.
func (a *App) Config() *Config { return a.config }

// Registry returns the application's engine registry.
func (a *App) Registry() *engine.Registry {
	return a.registry
}

// Store returns the result store shared by every runner of the App.
func (a *App) Store() resultstore.Store { return a.store }

// Engine returns the engine with the given id, or the configured default
// when id is empty.
func (a *App) Engine(id string) (engine.Engine, error) {
	if id == "" {
		id = a.config.Engine
	}
	return a.registry.Get(id)
}

// Runner returns a test runner bound to the engine with the given id.
func (a *App) Runner(engineID string) (*testrunner.Runner, error) {
	e, err := a.Engine(engineID)
	if err != nil {
		return nil, err
	}
	return testrunner.New(e,
		testrunner.WithStore(a.store),
		testrunner.WithConcurrency(a.config.Concurrency),
	), nil
}

// Serve runs the evaluation service on the configured address until ctx is
// cancelled.
func (a *App) Serve(ctx context.Context) error {
	srv := service.New(service.WithLogger(a.logger))
	return srv.Run(a.Context(ctx), a.config.ServiceAddr)
}

// Close releases connections held by the App.
func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
