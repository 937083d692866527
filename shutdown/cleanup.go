package shutdown

import (
	"context"

	"go.uber.org/zap"

	"fpsmon/core"
)

// CaptureStopper is the slice of the capture supervisor the shutdown path
// needs: force the current session through teardown.
type CaptureStopper interface {
	Stop()
	Active() bool
}

// CleanupCapture returns a shutdown function that tears down any active
// capture session. The supervisor's own teardown already confirms the tracer
// is dead and closes its trace session, so this must run before the service
// cleanup.
//
// Priority recommendation: 20-29 (service cleanup range).
//
// Usage:
//
//	manager.Register("stop-capture", 20, shutdown.CleanupCapture(logger, sup))
func CleanupCapture(logger *zap.Logger, sup CaptureStopper) core.ShutdownFunc {
	return func(ctx context.Context) error {
		if !sup.Active() {
			logger.Debug("No active capture session to stop")
			return nil
		}
		logger.Info("Stopping active capture session")
		sup.Stop()
		return nil
	}
}

// CleanupService returns a shutdown function that stops and removes the
// tracing service. EnsureStopped is idempotent, so this is safe even when
// the capture teardown already stopped the service.
//
// Priority recommendation: 25-29, after CleanupCapture.
//
// Usage:
//
//	manager.Register("stop-service", 25, shutdown.CleanupService(logger, svc))
func CleanupService(logger *zap.Logger, svc core.ServiceController) core.ShutdownFunc {
	return func(ctx context.Context) error {
		logger.Info("Stopping tracing service")
		svc.EnsureStopped()
		return nil
	}
}

// CleanupSessions returns a shutdown function that closes any trace sessions
// carrying our name prefix. This is the last line of defense: sessions left
// behind by a crash would otherwise block the next capture.
//
// Priority recommendation: 30+, after the service has stopped.
//
// Usage:
//
//	manager.Register("clear-sessions", 30, shutdown.CleanupSessions(logger, janitor))
func CleanupSessions(logger *zap.Logger, janitor core.SessionJanitor) core.ShutdownFunc {
	return func(ctx context.Context) error {
		logger.Info("Clearing stale trace sessions")
		janitor.ClearStaleSessions()
		return nil
	}
}

// CleanupLogger returns a shutdown function that flushes buffered log
// entries. Sync on stderr sinks can fail harmlessly, so the error is
// swallowed.
//
// Priority recommendation: 0-9, so later cleanup steps still get logged to
// file buffers that have been flushed at least once.
func CleanupLogger(logger *zap.Logger) core.ShutdownFunc {
	return func(ctx context.Context) error {
		_ = logger.Sync()
		return nil
	}
}
