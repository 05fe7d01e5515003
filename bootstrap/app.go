package bootstrap

import (
	"context"
	"fmt"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/ohrlando/stream-list/logger"
)

// App runs one task with a typed config.
type App[C Config] struct {
	Name   string
	Cfg    C
	Logger *logger.Logger

	gracefulTimeout time.Duration
	onStart         []Hook
	onStop          []Hook
}

// NewApp applies defaults, validates the config, and initialises the global
// logger from the config's Logging section.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()
	app := &App[C]{
		Name:            base.Name,
		Cfg:             cfg,
		gracefulTimeout: 5 * time.Second,
	}

	if o := resolveOptions(opts); o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	logger.Init(&base.Logging)
	logger.Reset()
	app.Logger = logger.GetGlobalLogger()
	return app, nil
}

// RunTask runs the start hooks, then task under a context canceled on
// SIGINT/SIGTERM, then the stop hooks. The task error wins over a stop error.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	taskCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a.Logger.Debug("starting task", map[string]interface{}{"name": a.Name})

	taskErr := runHooks(taskCtx, a.onStart)
	if taskErr != nil {
		taskErr = fmt.Errorf("onStart hook failed: %w", taskErr)
	} else {
		taskErr = task(taskCtx)
	}

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// stop runs the stop hooks within the graceful timeout.
func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	hooks := slices.Clone(a.onStop)
	slices.Reverse(hooks)
	if err := runHooks(ctx, hooks); err != nil {
		a.Logger.Error("OnStop hook error", logger.ErrorFields("stop", err))
		return err
	}
	a.Logger.Debug("task finished", map[string]interface{}{"name": a.Name})
	return nil
}
