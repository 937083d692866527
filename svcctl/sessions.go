package svcctl

import (
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"fpsmon/core"
)

// execRunner runs session-registry commands via the shell. Split out behind
// core.CommandRunner so tests can feed canned registry listings.
type execRunner struct{}

func (execRunner) Run(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).CombinedOutput()
	return string(out), err
}

// Janitor closes trace sessions in the OS tracing-session registry. A
// crashed tracer leaves its session behind, blocking the next capture, so
// the janitor runs at startup and during every full shutdown. It implements
// core.SessionJanitor.
type Janitor struct {
	runner core.CommandRunner
	logger *zap.Logger
}

// NewJanitor creates a Janitor backed by the logman command.
func NewJanitor(logger *zap.Logger) *Janitor {
	return &Janitor{runner: execRunner{}, logger: logger}
}

// NewJanitorWithRunner creates a Janitor with a custom command runner.
func NewJanitorWithRunner(runner core.CommandRunner, logger *zap.Logger) *Janitor {
	return &Janitor{runner: runner, logger: logger}
}

// ClearStaleSessions force-stops every trace session carrying the session
// name prefix. Idempotent; zero matches is the common case.
func (j *Janitor) ClearStaleSessions() {
	out, err := j.runner.Run("logman", "query", "-ets")
	if err != nil {
		// logman exits nonzero when no sessions exist at all.
		j.logger.Debug("trace session query failed", zap.Error(err))
		return
	}

	names := matchSessionNames(out, core.SessionNamePrefix)
	if len(names) == 0 {
		return
	}

	j.logger.Info("clearing stale trace sessions", zap.Strings("sessions", names))
	for _, name := range names {
		j.StopSession(name)
	}
}

// StopSession force-stops a single trace session by name. Failure is logged
// and absorbed.
func (j *Janitor) StopSession(name string) {
	if name == "" {
		return
	}
	if _, err := j.runner.Run("logman", "stop", name, "-ets"); err != nil {
		j.logger.Warn("failed to stop trace session",
			zap.String("session", name),
			zap.Error(err),
		)
		return
	}
	j.logger.Info("closed trace session", zap.String("session", name))
}

// matchSessionNames scans session-listing output for lines mentioning the
// prefix and extracts the session name as the line's first
// whitespace-delimited token.
func matchSessionNames(output, prefix string) []string {
	needle := strings.ToLower(prefix)

	var names []string
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(strings.ToLower(line), needle) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		names = append(names, fields[0])
	}
	return names
}

var _ core.SessionJanitor = (*Janitor)(nil)
