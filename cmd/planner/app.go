package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/aristath/taskplanner/internal/backend"
	"github.com/aristath/taskplanner/internal/breakdown"
	"github.com/aristath/taskplanner/internal/config"
	"github.com/aristath/taskplanner/internal/events"
	"github.com/aristath/taskplanner/internal/orchestrator"
	"github.com/aristath/taskplanner/internal/persistence"
)

// generatorFactory builds a task-breakdown generator and the session it owns.
type generatorFactory func(ctx context.Context, cfg *config.Config, pm *backend.ProcessManager, logger *zap.Logger) (orchestrator.Generator, io.Closer, error)

// defaultGenerator validates the configuration and connects the configured
// model backend behind a circuit breaker.
func defaultGenerator(ctx context.Context, cfg *config.Config, pm *backend.ProcessManager, logger *zap.Logger) (orchestrator.Generator, io.Closer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	b, err := backend.New(ctx, backend.Config{
		Type:         cfg.Generation.Backend,
		APIKey:       cfg.Generation.APIKey,
		Model:        cfg.Generation.Model,
		Command:      cfg.Generation.Command,
		SystemPrompt: cfg.Generation.SystemPrompt,
	}, pm)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start %s backend: %w", cfg.Generation.Backend, err)
	}
	guarded := backend.WithBreaker(b, logger)
	logger.Info("model backend ready", zap.String("backend", guarded.Name()))
	return breakdown.NewGenerator(guarded, logger), guarded, nil
}

// app is the wired planner for one command invocation.
type app struct {
	store   persistence.Store
	bus     *events.EventBus
	pm      *backend.ProcessManager
	orch    *orchestrator.Orchestrator
	session io.Closer
	logger  *zap.Logger
}

// open connects the store and, when withGenerator is set, the model backend.
// Read-only commands skip the backend so they work without credentials.
func (c *cli) open(ctx context.Context, withGenerator bool) (*app, error) {
	store, err := persistence.Open(ctx, persistence.Options{
		Driver:   c.cfg.Store.Driver,
		Path:     c.cfg.Store.Path,
		URL:      c.cfg.Store.URL,
		Database: c.cfg.Store.Database,
	}, c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	a := &app{
		store:  store,
		bus:    events.NewEventBus(),
		pm:     backend.NewProcessManager(),
		logger: c.logger,
	}

	var gen orchestrator.Generator
	if withGenerator {
		gen, a.session, err = c.newGenerator(ctx, c.cfg, a.pm, c.logger)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	timeout, err := c.cfg.GenerationTimeout()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.orch = orchestrator.New(orchestrator.Config{
		Store:             store,
		Generator:         gen,
		Bus:               a.bus,
		Logger:            c.logger,
		GenerationTimeout: timeout,
	})
	return a, nil
}

// Close stops subprocesses, the model session, the bus, and the store.
func (a *app) Close() {
	if err := a.pm.KillAll(); err != nil {
		a.logger.Warn("failed to kill subprocesses", zap.Error(err))
	}
	if a.session != nil {
		if err := a.session.Close(); err != nil {
			a.logger.Warn("failed to close model session", zap.Error(err))
		}
	}
	if n := a.bus.Dropped(); n > 0 {
		a.logger.Warn("event subscribers fell behind", zap.Uint64("dropped", n))
	}
	a.bus.Close()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", zap.Error(err))
	}
}
