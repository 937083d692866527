// Package capture owns the tracer child process and the state machine that
// starts, supervises and tears it down. At most one capture session exists
// at any time.
package capture

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"fpsmon/core"
	"fpsmon/metrics"
)

// State is the supervisor's position in the capture lifecycle.
type State int

const (
	// StateIdle means no session exists and a new capture may start.
	StateIdle State = iota

	// StateStarting means a session is being set up.
	StateStarting

	// StateCapturing means the tracer is running and its output is being
	// consumed.
	StateCapturing

	// StateStopping means the session is being torn down.
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateCapturing:
		return "capturing"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Supervisor drives the capture lifecycle:
//
//	Idle -> Starting -> Capturing -> Stopping -> Idle
//
// Teardown is strictly ordered: the tracer process is confirmed gone before
// its trace session is closed, and the session is closed before the
// privileged service stops, because the service owns the session the tracer
// depends on. No failure on any step aborts the sequence; each step falls
// through to the next best-effort action so nothing is ever left running.
type Supervisor struct {
	probe    core.ProcessProbe
	svc      core.ServiceController
	janitor  core.SessionJanitor
	launcher Launcher
	agg      *metrics.Aggregator
	store    *metrics.Store
	logger   *zap.Logger
	cfg      *core.Config

	mu      sync.Mutex
	state   State
	session *Session
}

// NewSupervisor wires a Supervisor. All collaborators are required.
func NewSupervisor(
	cfg *core.Config,
	probe core.ProcessProbe,
	svc core.ServiceController,
	janitor core.SessionJanitor,
	launcher Launcher,
	agg *metrics.Aggregator,
	store *metrics.Store,
	logger *zap.Logger,
) *Supervisor {
	return &Supervisor{
		probe:    probe,
		svc:      svc,
		janitor:  janitor,
		launcher: launcher,
		agg:      agg,
		store:    store,
		logger:   logger,
		cfg:      cfg,
	}
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active reports whether a session exists in any state other than idle.
func (s *Supervisor) Active() bool {
	return s.State() != StateIdle
}

// StartCapture begins a capture session against the target PID. Any prior
// session is forced through teardown first. On a start failure the state
// returns to idle with both metric outputs at zero, and the monitoring loop
// simply retries on the next target change.
func (s *Supervisor) StartCapture(ctx context.Context, pid uint32) error {
	s.Stop()

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return core.ErrSessionActive
	}
	s.state = StateStarting
	s.mu.Unlock()

	// Samples never carry across sessions.
	s.agg.Reset()

	sess := newSession(pid)

	// Diagnostic only: an overlay hook in the target can skew present
	// timing, but it must never block the launch.
	if s.probe.OverlayModulePresent(pid) {
		s.logger.Warn("overlay hook module loaded in target process; frame timing may be affected",
			zap.Uint32("pid", pid),
			zap.String("module", core.OverlayModuleName),
		)
	}

	proc, err := s.launcher.Launch(pid, sess.Name)
	if err != nil {
		s.store.Reset()
		s.setState(StateIdle)
		s.logger.Warn("tracer launch failed",
			zap.Uint32("pid", pid),
			zap.Error(err),
		)
		return err
	}
	sess.proc = proc

	s.mu.Lock()
	s.session = sess
	s.state = StateCapturing
	s.mu.Unlock()

	s.logger.Info("capture started",
		zap.Uint32("pid", pid),
		zap.String("session", sess.Name),
	)

	go s.readFrames(proc.Stdout())
	go s.readDiagnostics(proc.Stderr())
	go func() {
		if err := proc.Wait(); err != nil {
			s.logger.Debug("tracer exited with error", zap.Error(err))
		}
		sess.markExited()
	}()
	go s.supervise(ctx, sess)

	return nil
}

// supervise watches the session until the target disappears, the tracer
// exits on its own, the never-alive timeout elapses, or the context is
// cancelled. Whatever fires first triggers the same teardown.
func (s *Supervisor) supervise(ctx context.Context, sess *Session) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	everAlive := false
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("capture cancelled", zap.String("session", sess.Name))
			s.stop(sess)
			return

		case <-sess.Exited():
			s.logger.Info("tracer exited, stopping capture",
				zap.String("session", sess.Name),
			)
			s.stop(sess)
			return

		case <-ticker.C:
			// Someone else already tore this session down.
			if s.currentSession() != sess {
				return
			}
			if s.probe.Exists(sess.TargetPID) {
				everAlive = true
				continue
			}
			if everAlive {
				s.logger.Info("target process gone",
					zap.Uint32("pid", sess.TargetPID),
				)
				s.stop(sess)
				return
			}
			if time.Since(sess.StartedAt) >= s.cfg.CaptureTimeout {
				s.logger.Warn("target never observed alive, stopping capture",
					zap.Uint32("pid", sess.TargetPID),
					zap.Duration("timeout", s.cfg.CaptureTimeout),
				)
				s.stop(sess)
				return
			}
		}
	}
}

func (s *Supervisor) currentSession() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Stop tears the current session down and returns once the supervisor is
// idle again. Safe to call from any goroutine and at any state; it is a
// no-op when idle or when another caller is already stopping.
func (s *Supervisor) Stop() {
	s.stop(nil)
}

// stop runs the Stopping transition. When only is non-nil the teardown is
// scoped to that session, so a stale watcher cannot tear down its successor.
func (s *Supervisor) stop(only *Session) {
	s.mu.Lock()
	if s.state == StateIdle || s.state == StateStopping {
		s.mu.Unlock()
		return
	}
	if only != nil && s.session != only {
		s.mu.Unlock()
		return
	}
	sess := s.session
	s.session = nil
	s.state = StateStopping
	s.mu.Unlock()

	if sess != nil {
		s.terminateTracer(sess)
	}

	// Metric outputs read zero whenever no session is active.
	s.agg.Reset()
	s.store.Reset()

	// The tracer is gone; now the trace session it owned can close, and
	// only then may the service that backs the session stop.
	if sess != nil {
		s.janitor.StopSession(sess.Name)
	}
	s.svc.EnsureStopped()

	s.setState(StateIdle)
	if sess != nil {
		s.logger.Info("capture stopped", zap.String("session", sess.Name))
	}
}

// terminateTracer confirms the tracer process is gone: kill, bounded wait,
// then force-termination by executable name as the last resort.
func (s *Supervisor) terminateTracer(sess *Session) {
	select {
	case <-sess.Exited():
		return
	default:
	}

	if err := sess.proc.Kill(); err != nil {
		s.logger.Warn("tracer kill failed", zap.Error(err))
	}

	select {
	case <-sess.Exited():
	case <-time.After(s.cfg.KillWaitTimeout):
		s.logger.Warn("tracer did not exit after kill, terminating by name",
			zap.String("executable", core.TracerExeName),
		)
		s.probe.KillByName(core.TracerExeName)
	}
}

// readFrames consumes tracer stdout line by line. The first line is dropped
// when it is the CSV header; every other line goes to the aggregator.
func (s *Supervisor) readFrames(r io.Reader) {
	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if first {
			first = false
			if strings.HasPrefix(strings.ToLower(line), core.CSVHeaderToken) {
				continue
			}
		}
		s.agg.Ingest(line)
	}
}

// readDiagnostics logs tracer stderr.
func (s *Supervisor) readDiagnostics(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			s.logger.Debug("tracer stderr", zap.String("line", line))
		}
	}
}

func (s *Supervisor) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
