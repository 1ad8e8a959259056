package taskd

import (
	"context"
	"fmt"
	"sync"

	"github.com/lacewing-labs/taskd/internal/adapters/eventmgr"
	"github.com/lacewing-labs/taskd/internal/adapters/jobproc"
	"github.com/lacewing-labs/taskd/internal/adapters/manifest"
	"github.com/lacewing-labs/taskd/internal/adapters/rpc"
	"github.com/lacewing-labs/taskd/internal/adapters/statefile"
	"github.com/lacewing-labs/taskd/internal/app"
	"github.com/lacewing-labs/taskd/internal/domain"
	"github.com/lacewing-labs/taskd/pkg/log"
)

// Taskd is an embeddable per-domain service manager. Use New to
// construct one, then Run (or Start and Stop) to drive it.
type Taskd struct {
	config  Config
	domain  domain.Domain
	manager *app.Manager
	reactor *eventmgr.Reactor
	logger  log.Logger
	plugins []Plugin

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	running bool
	done    chan error
}

// New constructs a Taskd instance in its initial, unstarted state.
func New(cfg Config, opts ...Option) (*Taskd, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	d := domain.NewDomain(cfg.StateDir, cfg.LoadPaths)
	ctx, cancel := context.WithCancel(context.Background())

	reactor := eventmgr.New(ctx, o.logger)
	store := statefile.NewStore(d.StateDir())
	jobFactory := jobproc.NewFactory(o.logger)
	parser := manifest.New()

	manager := app.New(d, store, reactor, jobFactory, parser, o.logger)
	server := rpc.NewServer(manager, o.logger)
	manager.SetConnHandler(server.HandleConn)

	return &Taskd{
		config:  cfg,
		domain:  d,
		manager: manager,
		reactor: reactor,
		logger:  o.logger,
		plugins: o.plugins,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Manager exposes the underlying AdminAPI for callers that want to drive
// load/unload/list/kill/enable/dump without going over the admin socket
// (an in-process CLI, a test harness).
func (t *Taskd) Manager() *app.Manager {
	return t.manager
}

// Start fires the manager's Unconfigured→Running transition, initializes
// every registered plugin, and begins running the main loop on its own
// goroutine. It returns once Running has been entered (or initialization
// has failed); it does not wait for shutdown.
func (t *Taskd) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return fmt.Errorf("taskd: already running")
	}

	if err := t.manager.StartRunning(); err != nil {
		return err
	}

	pluginCfg := PluginConfig{
		StateDir:   t.domain.StateDir(),
		LoadPaths:  t.domain.LoadPaths(),
		SocketPath: t.domain.SocketPath(),
		Logger:     t.logger,
		LoadAll:    t.manager.LoadAll,
	}
	for i, p := range t.plugins {
		if err := p.Initialize(t.ctx, pluginCfg); err != nil {
			t.shutdownPlugins(t.plugins[:i])
			_ = t.manager.Close()
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		t.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	t.running = true
	t.done = make(chan error, 1)
	go func() {
		t.done <- t.manager.RunMainLoop()
	}()
	return nil
}

// Wait blocks until the manager reaches Finished, returning any error
// RunMainLoop produced. Does not tear down plugins or close the
// manager; callers that only call Wait (rather than Run or Stop) are
// responsible for that themselves.
func (t *Taskd) Wait() error {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	if done == nil {
		return fmt.Errorf("taskd: not started")
	}
	return <-done
}

// Run is Start followed by Wait plus teardown, for callers with no
// other work to interleave with the manager's own loop (cmd/taskd, in
// particular). Shutdown is ordinarily signal-driven (spec.md §4.7) —
// Run returns once SIGINT/SIGTERM escalation has run its course.
func (t *Taskd) Run() error {
	if err := t.Start(); err != nil {
		return err
	}
	err := t.Wait()
	t.teardown()
	return err
}

// Stop requests a graceful shutdown and blocks until the manager has
// finished draining jobs (spec.md §4.4's Running→GracefulShutdown→
// Finished path) and every plugin has been shut down. Safe to call from
// any goroutine, including one other than Start's caller.
func (t *Taskd) Stop() error {
	if err := t.manager.RequestStop(); err != nil {
		return err
	}
	err := t.Wait()
	t.teardown()
	return err
}

func (t *Taskd) teardown() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.mu.Unlock()

	t.shutdownPlugins(t.plugins)
	t.cancel()
	if err := t.manager.Close(); err != nil {
		t.logger.Warn("taskd: close error", log.Err(err))
	}
}

func (t *Taskd) shutdownPlugins(plugins []Plugin) {
	shutdownCtx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(shutdownCtx); err != nil {
			t.logger.Error("plugin shutdown failed", log.String("plugin", p.Name()), log.Err(err))
		} else {
			t.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
		}
	}
}
