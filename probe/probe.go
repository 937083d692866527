// Package probe answers best-effort questions about the OS process table.
// Every query absorbs OS failures: a PID that cannot be inspected reads as
// not running, unnamed, and overlay-free.
package probe

import (
	"strings"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"fpsmon/core"
)

// Probe implements core.ProcessProbe on top of the live process table.
type Probe struct {
	logger *zap.Logger
}

// New creates a Probe.
func New(logger *zap.Logger) *Probe {
	return &Probe{logger: logger}
}

// Exists reports whether the PID is running and owns a visible top-level
// window. The window requirement distinguishes a live foreground app from a
// console-only or zombie remnant, and guards against PID reuse by short-lived
// helpers.
func (p *Probe) Exists(pid uint32) bool {
	if pid == 0 {
		return false
	}
	running, err := process.PidExists(int32(pid))
	if err != nil || !running {
		return false
	}
	return hasMainWindow(pid)
}

// NameOf returns the lowercase process name, best-effort.
func (p *Probe) NameOf(pid uint32) (string, bool) {
	if pid == 0 {
		return "", false
	}
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", false
	}
	name, err := proc.Name()
	if err != nil || name == "" {
		return "", false
	}
	return strings.ToLower(name), true
}

// OverlayModulePresent reports whether the known overlay hook DLL is loaded
// in the target process. Module enumeration is commonly denied by anti-cheat
// protection; denial reads as "unknown, assume clean" rather than an error
// or a positive.
func (p *Probe) OverlayModulePresent(pid uint32) bool {
	present, err := overlayModuleLoaded(pid)
	if err != nil {
		p.logger.Debug("module enumeration unavailable",
			zap.Uint32("pid", pid),
			zap.Error(err),
		)
		return false
	}
	return present
}

// KillByName force-terminates every process whose lowercase executable name
// matches. Returns the number of processes signalled. Enumeration or kill
// failures on individual processes are logged and skipped.
func (p *Probe) KillByName(name string) int {
	procs, err := process.Processes()
	if err != nil {
		p.logger.Warn("process enumeration failed", zap.Error(err))
		return 0
	}

	target := strings.ToLower(name)
	killed := 0
	for _, proc := range procs {
		pname, err := proc.Name()
		if err != nil || strings.ToLower(pname) != target {
			continue
		}
		if err := proc.Kill(); err != nil {
			p.logger.Warn("failed to kill process",
				zap.Int32("pid", proc.Pid),
				zap.String("name", target),
				zap.Error(err),
			)
			continue
		}
		p.logger.Info("force-terminated process",
			zap.Int32("pid", proc.Pid),
			zap.String("name", target),
		)
		killed++
	}
	return killed
}

var _ core.ProcessProbe = (*Probe)(nil)
