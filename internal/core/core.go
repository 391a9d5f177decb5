// Package core runs cronbot's components as an ordered set of modules.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 30 * time.Second

// ErrNotAModule is returned by Register for values that implement neither
// Starter nor Stopper.
var ErrNotAModule = errors.New("core: module implements neither Starter nor Stopper")

// App manages the lifecycle of a set of modules.
type App struct {
	modules   []moduleInstance
	logger    *slog.Logger
	onStarted []func(context.Context)
	timeout   time.Duration
}

type moduleInstance struct {
	id      string
	module  any
	started bool
}

// NewApp creates an empty App.
func NewApp(logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		logger:  logger.With("component", "core"),
		timeout: shutdownTimeout,
	}
}

// Register appends a module. Modules start in registration order and
// stop in reverse.
func (a *App) Register(id string, module any) error {
	_, isStarter := module.(Starter)
	_, isStopper := module.(Stopper)
	if !isStarter && !isStopper {
		return fmt.Errorf("%w: %s", ErrNotAModule, id)
	}
	for _, mi := range a.modules {
		if mi.id == id {
			return fmt.Errorf("core: module %q already registered", id)
		}
	}
	a.modules = append(a.modules, moduleInstance{id: id, module: module})
	return nil
}

// OnStarted registers fn to run once every module has started.
func (a *App) OnStarted(fn func(ctx context.Context)) {
	a.onStarted = append(a.onStarted, fn)
}

// Modules returns the registered module IDs in start order.
func (a *App) Modules() []string {
	ids := make([]string, len(a.modules))
	for i, mi := range a.modules {
		ids[i] = mi.id
	}
	return ids
}

// Start starts all modules in order. A module that only implements
// Stopper is marked started when reached. If any Start() fails,
// already-started modules are stopped in reverse order.
func (a *App) Start() error {
	for i := range a.modules {
		mi := &a.modules[i]
		if s, ok := mi.module.(Starter); ok {
			a.logger.Info("starting module", "module", mi.id)
			if err := s.Start(); err != nil {
				a.logger.Error("module start failed", "module", mi.id, "error", err)
				a.stopModules(i - 1)
				return fmt.Errorf("starting module %s: %w", mi.id, err)
			}
		}
		mi.started = true
	}
	a.logger.Info("all modules started")
	return nil
}

// Stop stops all started modules in reverse order with a timeout.
func (a *App) Stop() {
	a.stopModules(len(a.modules) - 1)
}

func (a *App) stopModules(fromIndex int) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	for i := fromIndex; i >= 0; i-- {
		mi := &a.modules[i]
		if !mi.started {
			continue
		}
		if s, ok := mi.module.(Stopper); ok {
			a.logger.Info("stopping module", "module", mi.id)
			if err := s.Stop(ctx); err != nil {
				a.logger.Error("module stop error", "module", mi.id, "error", err)
			}
		}
		mi.started = false
	}
}

// Run starts all modules, runs the OnStarted hooks and blocks until ctx
// is cancelled or SIGINT/SIGTERM is received, then stops everything.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, fn := range a.onStarted {
		fn(ctx)
	}

	<-ctx.Done()
	a.logger.Info("shutdown requested", "reason", context.Cause(ctx))

	a.Stop()
	a.logger.Info("shutdown complete")
	return nil
}
