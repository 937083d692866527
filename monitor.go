package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"fpsmon/core"
)

// captureSupervisor is the slice of capture.Supervisor the monitoring loop
// drives. Narrowed to an interface so the loop can be tested against fakes.
type captureSupervisor interface {
	StartCapture(ctx context.Context, pid uint32) error
	Active() bool
	Stop()
}

// Monitor runs the top-level detection loop: once per poll interval it looks
// for a foreground fullscreen or borderless window and, when a new target
// shows up, brings up the tracing service and starts a capture against it.
//
// While a capture is active the loop idles; the supervisor owns the session
// until it ends, and only then does the monitor look for the next target.
type Monitor struct {
	cfg     *core.Config
	scanner core.WindowScanner
	probe   core.ProcessProbe
	svc     core.ServiceController
	janitor core.SessionJanitor
	sup     captureSupervisor
	logger  *zap.Logger

	mu        sync.Mutex
	targetPID uint32

	done     chan struct{}
	doneOnce sync.Once
}

// NewMonitor wires the monitoring loop. All collaborators are required.
func NewMonitor(
	cfg *core.Config,
	scanner core.WindowScanner,
	probe core.ProcessProbe,
	svc core.ServiceController,
	janitor core.SessionJanitor,
	sup captureSupervisor,
	logger *zap.Logger,
) *Monitor {
	return &Monitor{
		cfg:     cfg,
		scanner: scanner,
		probe:   probe,
		svc:     svc,
		janitor: janitor,
		sup:     sup,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start runs the loop until the context is cancelled. Call it in its own
// goroutine; Done is closed when the loop has exited.
func (m *Monitor) Start(ctx context.Context) {
	defer m.doneOnce.Do(func() { close(m.done) })

	// Sessions left behind by a crash of a previous run would block the
	// tracer, so sweep them before the first tick.
	m.janitor.ClearStaleSessions()

	m.logger.Info("monitoring loop started",
		zap.Duration("poll_interval", m.cfg.PollInterval),
	)

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitoring loop stopped")
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// Done is closed once Start has returned.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// TargetPID returns the PID the monitor currently considers its target,
// or 0 when there is none.
func (m *Monitor) TargetPID() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.targetPID
}

func (m *Monitor) setTarget(pid uint32) {
	m.mu.Lock()
	m.targetPID = pid
	m.mu.Unlock()
}

// tick is one pass of the detection loop.
func (m *Monitor) tick(ctx context.Context) {
	// The supervisor owns the current session; don't look for a new target
	// until it has wound down.
	if m.sup.Active() {
		return
	}

	// Forget a target whose process has exited so the same game relaunching
	// gets picked up as a fresh target.
	if target := m.TargetPID(); target != 0 && !m.probe.Exists(target) {
		m.logger.Debug("previous target exited", zap.Uint32("pid", target))
		m.setTarget(0)
	}

	pid := m.scanner.FindActiveCandidatePID()
	if pid == 0 || pid == m.TargetPID() {
		return
	}

	m.setTarget(pid)
	name, _ := m.probe.NameOf(pid)
	m.logger.Info("capture target detected",
		zap.Uint32("pid", pid),
		zap.String("process", name),
	)

	// The service must be up before the tracer can attach. On failure the
	// target is cleared so the next tick retries from scratch.
	if err := m.svc.EnsureStarted(); err != nil {
		m.logger.Warn("tracing service unavailable, skipping capture",
			zap.Uint32("pid", pid),
			zap.Error(err),
		)
		m.setTarget(0)
		return
	}

	if err := m.sup.StartCapture(ctx, pid); err != nil {
		m.logger.Warn("capture start failed",
			zap.Uint32("pid", pid),
			zap.Error(err),
		)
		m.setTarget(0)
	}
}
