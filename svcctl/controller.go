// Package svcctl owns the privileged tracing service the tracer depends on,
// and the cleanup of trace sessions left behind in the OS session registry.
package svcctl

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/kardianos/service"
	"go.uber.org/zap"

	"fpsmon/core"
)

// tracerProgram satisfies service.Interface. The controller only manages the
// externally-bundled service binary and never runs it in-process, but
// kardianos requires an Interface to construct a service handle.
type tracerProgram struct{}

func (tracerProgram) Start(service.Service) error { return nil }
func (tracerProgram) Stop(service.Service) error  { return nil }

// Controller installs, starts, stops and deregisters the privileged tracing
// service. It implements core.ServiceController.
//
// State machine: NotInstalled -> Installed/Running -> NotInstalled. The
// service may be reused across capture sessions; Running reflects this
// controller's view, not a live OS query.
type Controller struct {
	cfg    *core.Config
	probe  core.ProcessProbe
	logger *zap.Logger

	mu      sync.Mutex
	running bool

	// open is swapped in tests to avoid touching the OS service manager.
	open func() (service.Service, error)
}

// NewController creates a Controller for the bundled service binary.
func NewController(cfg *core.Config, probe core.ProcessProbe, logger *zap.Logger) *Controller {
	c := &Controller{
		cfg:    cfg,
		probe:  probe,
		logger: logger,
	}
	c.open = c.openService
	return c
}

func (c *Controller) openService() (service.Service, error) {
	svcConfig := &service.Config{
		Name:        core.ServiceName,
		DisplayName: "PresentMon Tracing Service",
		Description: "Privileged service used by the frame-presentation tracer to open trace sessions.",
		Executable:  c.cfg.ServicePath,
		Option: service.KeyValue{
			"StartType": "manual",
		},
	}
	return service.New(tracerProgram{}, svcConfig)
}

// Running reports the controller's view of the service state.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// EnsureStarted installs and starts the service unless it is already
// running. A stale registration from a prior run or crash is stopped and
// deleted first, best-effort. Any hard failure leaves the service
// not-running and the caller must treat capture as unavailable.
func (c *Controller) EnsureStarted() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	if _, err := os.Stat(c.cfg.ServicePath); err != nil {
		return fmt.Errorf("%w: %s", core.ErrServiceUnavailable, core.ErrServicePathInvalid(c.cfg.ServicePath).Error())
	}

	s, err := c.open()
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrServiceUnavailable, err)
	}

	// A stale registration from a crashed run would make Install fail;
	// clearing it is best-effort and both steps may legitimately error.
	_ = s.Stop()
	_ = s.Uninstall()

	if err := s.Install(); err != nil {
		return fmt.Errorf("%w: install: %v", core.ErrServiceUnavailable, err)
	}
	if err := s.Start(); err != nil {
		_ = s.Uninstall()
		return fmt.Errorf("%w: start: %v", core.ErrServiceUnavailable, err)
	}

	// The service needs a moment before it accepts trace-session requests.
	time.Sleep(c.cfg.ServiceSettleDelay)

	c.running = true
	c.logger.Info("tracing service started",
		zap.String("service", core.ServiceName),
		zap.String("executable", c.cfg.ServicePath),
	)
	return nil
}

// EnsureStopped stops and deregisters the service. If the service does not
// confirm stopped within the timeout, or any step fails, the tracer and
// service executables are force-terminated by name. The registration is
// always deleted afterwards. Never fails; everything is logged.
func (c *Controller) EnsureStopped() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	c.running = false

	s, err := c.open()
	if err != nil {
		c.logger.Warn("cannot open service for stop", zap.Error(err))
		c.forceTerminate()
		return
	}

	if err := s.Stop(); err != nil {
		c.logger.Warn("service stop command failed", zap.Error(err))
		c.forceTerminate()
	} else {
		time.Sleep(c.cfg.ServiceSettleDelay)
		if !c.waitStopped(s) {
			c.forceTerminate()
		}
	}

	if err := s.Uninstall(); err != nil {
		c.logger.Warn("service uninstall failed", zap.Error(err))
	} else {
		c.logger.Info("tracing service deregistered", zap.String("service", core.ServiceName))
	}
}

// waitStopped polls the service status until it reports stopped or the stop
// timeout elapses. A status query failure counts as not stopped.
func (c *Controller) waitStopped(s service.Service) bool {
	deadline := time.Now().Add(c.cfg.ServiceStopTimeout)
	for {
		status, err := s.Status()
		if err == nil && status == service.StatusStopped {
			return true
		}
		if time.Now().After(deadline) {
			c.logger.Warn("service did not report stopped before timeout",
				zap.Duration("timeout", c.cfg.ServiceStopTimeout),
			)
			return false
		}
		time.Sleep(time.Second)
	}
}

// forceTerminate kills the tracer and service executables by name. Last
// resort; the teardown sequence must never leave either running.
func (c *Controller) forceTerminate() {
	c.logger.Warn("falling back to force-termination by executable name")
	c.probe.KillByName(core.TracerExeName)
	c.probe.KillByName(core.ServiceExeName)
}

var _ core.ServiceController = (*Controller)(nil)
