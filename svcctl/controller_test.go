package svcctl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kardianos/service"
	"go.uber.org/zap"

	"fpsmon/core"
)

// recordingProbe counts KillByName calls.
type recordingProbe struct {
	killed []string
}

func (p *recordingProbe) Exists(uint32) bool                 { return false }
func (p *recordingProbe) NameOf(uint32) (string, bool)       { return "", false }
func (p *recordingProbe) OverlayModulePresent(uint32) bool   { return false }
func (p *recordingProbe) KillByName(name string) int {
	p.killed = append(p.killed, name)
	return 0
}

// fakeService scripts the kardianos service handle.
type fakeService struct {
	installErr error
	startErr   error
	stopErr    error
	status     service.Status
	statusErr  error

	calls []string
}

func (s *fakeService) Run() error     { s.calls = append(s.calls, "run"); return nil }
func (s *fakeService) Start() error   { s.calls = append(s.calls, "start"); return s.startErr }
func (s *fakeService) Stop() error    { s.calls = append(s.calls, "stop"); return s.stopErr }
func (s *fakeService) Restart() error { s.calls = append(s.calls, "restart"); return nil }
func (s *fakeService) Install() error { s.calls = append(s.calls, "install"); return s.installErr }
func (s *fakeService) Uninstall() error {
	s.calls = append(s.calls, "uninstall")
	return nil
}
func (s *fakeService) Logger(chan<- error) (service.Logger, error)       { return nil, nil }
func (s *fakeService) SystemLogger(chan<- error) (service.Logger, error) { return nil, nil }
func (s *fakeService) String() string                                    { return "fake" }
func (s *fakeService) Platform() string                                  { return "fake" }
func (s *fakeService) Status() (service.Status, error)                   { return s.status, s.statusErr }

func testConfig(t *testing.T, withBinary bool) *core.Config {
	t.Helper()
	cfg := &core.Config{
		ServiceStopTimeout: 50 * time.Millisecond,
		ServiceSettleDelay: time.Millisecond,
	}
	if withBinary {
		path := filepath.Join(t.TempDir(), "PresentMonService.exe")
		if err := os.WriteFile(path, []byte("stub"), 0o755); err != nil {
			t.Fatal(err)
		}
		cfg.ServicePath = path
	} else {
		cfg.ServicePath = filepath.Join(t.TempDir(), "missing.exe")
	}
	return cfg
}

func newTestController(t *testing.T, withBinary bool, fake *fakeService) (*Controller, *recordingProbe) {
	t.Helper()
	probe := &recordingProbe{}
	c := NewController(testConfig(t, withBinary), probe, zap.NewNop())
	c.open = func() (service.Service, error) { return fake, nil }
	return c, probe
}

func TestEnsureStarted_MissingBinary(t *testing.T) {
	fake := &fakeService{}
	c, _ := newTestController(t, false, fake)

	err := c.EnsureStarted()
	if !errors.Is(err, core.ErrServiceUnavailable) {
		t.Errorf("EnsureStarted() error = %v, want ErrServiceUnavailable", err)
	}
	if c.Running() {
		t.Error("Running() = true after failed start, want false")
	}
	if len(fake.calls) != 0 {
		t.Errorf("service commands issued despite missing binary: %v", fake.calls)
	}
}

func TestEnsureStarted_CleansStaleRegistrationFirst(t *testing.T) {
	fake := &fakeService{status: service.StatusRunning}
	c, _ := newTestController(t, true, fake)

	if err := c.EnsureStarted(); err != nil {
		t.Fatalf("EnsureStarted() error = %v", err)
	}
	if !c.Running() {
		t.Error("Running() = false after successful start")
	}

	want := []string{"stop", "uninstall", "install", "start"}
	if len(fake.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", fake.calls, want)
	}
	for i, call := range want {
		if fake.calls[i] != call {
			t.Errorf("calls[%d] = %q, want %q", i, fake.calls[i], call)
		}
	}
}

func TestEnsureStarted_IdempotentWhileRunning(t *testing.T) {
	fake := &fakeService{}
	c, _ := newTestController(t, true, fake)

	if err := c.EnsureStarted(); err != nil {
		t.Fatalf("EnsureStarted() error = %v", err)
	}
	issued := len(fake.calls)

	if err := c.EnsureStarted(); err != nil {
		t.Fatalf("second EnsureStarted() error = %v", err)
	}
	if len(fake.calls) != issued {
		t.Errorf("second EnsureStarted issued commands: %v", fake.calls[issued:])
	}
}

func TestEnsureStarted_StartFailureRollsBack(t *testing.T) {
	fake := &fakeService{startErr: errors.New("access denied")}
	c, _ := newTestController(t, true, fake)

	err := c.EnsureStarted()
	if !errors.Is(err, core.ErrServiceUnavailable) {
		t.Errorf("EnsureStarted() error = %v, want ErrServiceUnavailable", err)
	}
	if c.Running() {
		t.Error("Running() = true after start failure")
	}
	// The failed registration must not be left behind.
	if fake.calls[len(fake.calls)-1] != "uninstall" {
		t.Errorf("last call = %q, want uninstall", fake.calls[len(fake.calls)-1])
	}
}

func TestEnsureStopped_NoOpWhenNotRunning(t *testing.T) {
	fake := &fakeService{}
	c, probe := newTestController(t, true, fake)

	c.EnsureStopped()

	if len(fake.calls) != 0 {
		t.Errorf("EnsureStopped issued commands while not running: %v", fake.calls)
	}
	if len(probe.killed) != 0 {
		t.Errorf("EnsureStopped killed processes while not running: %v", probe.killed)
	}
}

func TestEnsureStopped_CleanStop(t *testing.T) {
	fake := &fakeService{status: service.StatusStopped}
	c, probe := newTestController(t, true, fake)

	if err := c.EnsureStarted(); err != nil {
		t.Fatalf("EnsureStarted() error = %v", err)
	}
	fake.calls = nil

	c.EnsureStopped()

	if c.Running() {
		t.Error("Running() = true after EnsureStopped")
	}
	if len(probe.killed) != 0 {
		t.Errorf("clean stop fell back to kill-by-name: %v", probe.killed)
	}
	// Registration is always deleted afterwards.
	if fake.calls[len(fake.calls)-1] != "uninstall" {
		t.Errorf("last call = %q, want uninstall", fake.calls[len(fake.calls)-1])
	}
}

func TestEnsureStopped_FallsBackToKillByName(t *testing.T) {
	fake := &fakeService{status: service.StatusRunning} // never reports stopped
	c, probe := newTestController(t, true, fake)

	if err := c.EnsureStarted(); err != nil {
		t.Fatalf("EnsureStarted() error = %v", err)
	}

	c.EnsureStopped()

	if len(probe.killed) != 2 {
		t.Fatalf("killed = %v, want tracer and service executables", probe.killed)
	}
	if probe.killed[0] != core.TracerExeName || probe.killed[1] != core.ServiceExeName {
		t.Errorf("killed = %v, want [%s %s]", probe.killed, core.TracerExeName, core.ServiceExeName)
	}
}

func TestEnsureStopped_StopCommandError(t *testing.T) {
	fake := &fakeService{stopErr: errors.New("rpc failure"), status: service.StatusRunning}
	c, probe := newTestController(t, true, fake)

	if err := c.EnsureStarted(); err != nil {
		t.Fatalf("EnsureStarted() error = %v", err)
	}

	c.EnsureStopped()

	if len(probe.killed) == 0 {
		t.Error("stop failure did not trigger force-termination")
	}
	if c.Running() {
		t.Error("Running() = true after EnsureStopped with errors")
	}
}
