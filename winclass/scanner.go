package winclass

import (
	"os"

	"go.uber.org/zap"

	"fpsmon/core"
)

// Scanner enumerates visible top-level windows and returns the first PID
// owning a qualifying fullscreen or borderless surface. It implements
// core.WindowScanner.
type Scanner struct {
	probe   core.ProcessProbe
	logger  *zap.Logger
	hostPID uint32

	// enumerate is swapped in tests; the default is the platform
	// enumerator.
	enumerate func(logger *zap.Logger) []Window
}

// NewScanner creates a Scanner using the platform window enumerator.
func NewScanner(probe core.ProcessProbe, logger *zap.Logger) *Scanner {
	return &Scanner{
		probe:     probe,
		logger:    logger,
		hostPID:   uint32(os.Getpid()),
		enumerate: enumerateWindows,
	}
}

// FindActiveCandidatePID scans all visible top-level windows, not just the
// foreground one, because borderless windows do not always report as
// strictly topmost. Enumeration order is OS-defined and the first qualifying
// window wins.
//
// Returns 0 when no window qualifies.
func (s *Scanner) FindActiveCandidatePID() uint32 {
	for _, w := range s.enumerate(s.logger) {
		kind := Classify(w)
		if kind == KindNone {
			continue
		}
		// Reserved system PIDs and the host itself are never targets.
		if w.PID <= 4 || w.PID == s.hostPID {
			continue
		}

		name, _ := s.probe.NameOf(w.PID)
		if Denylisted(name, w.Class) {
			s.logger.Debug("skipping shell window",
				zap.Uint32("pid", w.PID),
				zap.String("process", name),
				zap.String("class", w.Class),
			)
			continue
		}

		s.logger.Debug("capture candidate found",
			zap.Uint32("pid", w.PID),
			zap.String("process", name),
			zap.String("kind", kind.String()),
		)
		return w.PID
	}
	return 0
}
