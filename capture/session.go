package capture

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"fpsmon/core"
)

// Session represents one run of the tracer against one target process. The
// session name correlates the tracer's trace session in the OS registry so
// teardown can close it by name.
//
// A Session is owned exclusively by the Supervisor; the tracer process
// handle belongs to the Session for its whole lifetime.
type Session struct {
	Name      string
	TargetPID uint32
	StartedAt time.Time

	proc     TracerProcess
	exited   chan struct{}
	exitOnce sync.Once
}

func newSession(pid uint32) *Session {
	return &Session{
		Name:      core.SessionNamePrefix + uuid.NewString(),
		TargetPID: pid,
		StartedAt: time.Now(),
		exited:    make(chan struct{}),
	}
}

// markExited records the tracer's exit. Safe to call more than once; the
// wait goroutine and teardown can race here.
func (s *Session) markExited() {
	s.exitOnce.Do(func() { close(s.exited) })
}

// Exited is closed once the tracer process has exited.
func (s *Session) Exited() <-chan struct{} {
	return s.exited
}
