package main

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"fpsmon/core"
	"fpsmon/metrics"
)

func newPluginHarness(t *testing.T) (*Plugin, *monitorHarness, *metrics.Store) {
	t.Helper()
	h := newMonitorHarness(t)
	store := metrics.NewStore()
	cfg := &core.Config{
		PollInterval:    5 * time.Millisecond,
		ShutdownTimeout: time.Second,
	}
	p := NewPlugin(cfg, h.monitor, h.sup, h.svc, h.janitor, store, zap.NewNop())
	return p, h, store
}

func TestPlugin_MetricsReadThroughToStore(t *testing.T) {
	p, _, store := newPluginHarness(t)

	if got := p.FPS(); got != 0 {
		t.Errorf("FPS with no capture = %v, want 0", got)
	}

	store.Publish(62.5, 16.0)
	if got := p.FPS(); got != 62.5 {
		t.Errorf("FPS = %v, want 62.5", got)
	}
	if got := p.FrameTimeMS(); got != 16.0 {
		t.Errorf("FrameTimeMS = %v, want 16.0", got)
	}
}

func TestPlugin_CloseForcesCleanup(t *testing.T) {
	p, h, _ := newPluginHarness(t)

	p.Initialize()
	p.Close()

	select {
	case <-h.monitor.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("monitor still running after Close")
	}

	h.svc.mu.Lock()
	stops := h.svc.stops
	h.svc.mu.Unlock()
	if stops == 0 {
		t.Error("Close did not stop the service")
	}

	h.janitor.mu.Lock()
	cleared := h.janitor.cleared
	h.janitor.mu.Unlock()
	if cleared == 0 {
		t.Error("Close did not clear trace sessions")
	}
}

func TestPlugin_CloseWithoutInitializeStillCleansUp(t *testing.T) {
	p, h, _ := newPluginHarness(t)

	p.Close()

	h.svc.mu.Lock()
	stops := h.svc.stops
	h.svc.mu.Unlock()
	if stops != 1 {
		t.Errorf("EnsureStopped called %d times, want 1", stops)
	}
}

func TestPlugin_InitializeIdempotent(t *testing.T) {
	p, h, _ := newPluginHarness(t)

	p.Initialize()
	p.Initialize()
	p.Close()

	// A second Initialize must not have started a second loop; Done closing
	// once is enough to prove a single goroutine ran.
	select {
	case <-h.monitor.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("monitor still running after Close")
	}

	// Close is idempotent too.
	p.Close()
}
