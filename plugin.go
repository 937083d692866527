package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"fpsmon/core"
	"fpsmon/metrics"
)

// Plugin is the host-facing boundary. The host calls Initialize once, polls
// Update/FPS/FrameTimeMS from its own loop, and calls Close on unload. No
// error ever crosses this boundary; when anything inside is broken the host
// simply reads zeros.
type Plugin struct {
	cfg     *core.Config
	logger  *zap.Logger
	store   *metrics.Store
	monitor *Monitor
	sup     captureSupervisor
	svc     core.ServiceController
	janitor core.SessionJanitor

	mu          sync.Mutex
	cancel      context.CancelFunc
	initialized bool
	closed      bool
}

// NewPlugin wires the plugin boundary around an already-constructed monitor.
func NewPlugin(
	cfg *core.Config,
	monitor *Monitor,
	sup captureSupervisor,
	svc core.ServiceController,
	janitor core.SessionJanitor,
	store *metrics.Store,
	logger *zap.Logger,
) *Plugin {
	return &Plugin{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		monitor: monitor,
		sup:     sup,
		svc:     svc,
		janitor: janitor,
	}
}

// Initialize starts the monitoring loop in its own goroutine. Idempotent.
func (p *Plugin) Initialize() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized || p.closed {
		return
	}
	p.initialized = true

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go p.monitor.Start(ctx)

	p.logger.Info("plugin initialized")
}

// Update is the host's synchronous tick. All real work happens on the
// monitor goroutine, so there is nothing to do here.
func (p *Plugin) Update() {}

// FPS returns the most recent smoothed frames-per-second value, or 0 when
// no capture is active.
func (p *Plugin) FPS() float64 {
	return p.store.FPS()
}

// FrameTimeMS returns the most recent smoothed frame time in milliseconds,
// or 0 when no capture is active.
func (p *Plugin) FrameTimeMS() float64 {
	return p.store.FrameTimeMS()
}

// Close shuts the plugin down: cancel the monitor, wait briefly for it to
// exit, then force the full cleanup chain regardless. Idempotent.
func (p *Plugin) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	cancel := p.cancel
	initialized := p.initialized
	p.mu.Unlock()

	if initialized && cancel != nil {
		cancel()
		select {
		case <-p.monitor.Done():
		case <-time.After(p.cfg.ShutdownTimeout):
			p.logger.Warn("monitoring loop did not stop in time",
				zap.Duration("timeout", p.cfg.ShutdownTimeout),
			)
		}
	}

	// Unconditional cleanup: even if the monitor is stuck, nothing may be
	// left running once the host has unloaded us.
	p.sup.Stop()
	p.svc.EnsureStopped()
	p.janitor.ClearStaleSessions()

	p.logger.Info("plugin closed")
}
