// Package core provides shared interfaces, configuration and errors for the
// capture-lifecycle components.
package core

import "context"

// ShutdownFunc is a cleanup function executed during graceful shutdown.
// It receives a context that may carry a deadline; implementations should
// abandon work when the context is cancelled rather than block shutdown.
type ShutdownFunc func(ctx context.Context) error

// ProcessProbe answers best-effort questions about the OS process table.
// Every method absorbs OS failures: "cannot tell" always reads as the
// safe answer (not running, no name, no overlay).
type ProcessProbe interface {
	// Exists reports whether a process with the given PID is running and
	// owns a visible top-level window. A console-only or zombie remnant
	// reports false.
	Exists(pid uint32) bool

	// NameOf returns the lowercase process name, or ok=false when the PID
	// is stale or inaccessible.
	NameOf(pid uint32) (name string, ok bool)

	// OverlayModulePresent reports whether the known overlay hook DLL is
	// loaded in the target process. Access denial (anti-cheat) reports
	// false, never an error.
	OverlayModulePresent(pid uint32) bool

	// KillByName force-terminates every process whose lowercase executable
	// name matches, returning the number of processes signalled. Used only
	// as a teardown fallback.
	KillByName(name string) int
}

// WindowScanner locates the process owning the active fullscreen or
// borderless-fullscreen window.
type WindowScanner interface {
	// FindActiveCandidatePID returns the owning PID, or 0 when no window
	// qualifies.
	FindActiveCandidatePID() uint32
}

// ServiceController manages the privileged tracing service the tracer
// depends on. Both methods are idempotent.
type ServiceController interface {
	// EnsureStarted installs and starts the service if it is not already
	// running. On failure the service is left not-running and capture must
	// be treated as unavailable.
	EnsureStarted() error

	// EnsureStopped stops and deregisters the service, falling back to
	// force-termination by executable name when the service does not stop
	// cleanly. Failures are absorbed and logged.
	EnsureStopped()

	// Running reports the controller's view of the service state.
	Running() bool
}

// SessionJanitor closes trace sessions in the OS tracing-session registry.
type SessionJanitor interface {
	// ClearStaleSessions force-stops every session whose name carries the
	// session-name prefix. Safe to call with zero matching sessions.
	ClearStaleSessions()

	// StopSession force-stops a single session by name.
	StopSession(name string)
}

// CommandRunner executes an external command and returns its combined
// output. It exists so session-registry commands can be faked in tests.
type CommandRunner interface {
	Run(name string, args ...string) (output string, err error)
}
