package core

import (
	"os"
	"path/filepath"
	"time"
)

// Fixed identifiers shared between the tracer, its privileged service and
// the trace-session registry. These must match the bundled binaries.
const (
	// ServiceName is the registration name of the privileged tracing service.
	ServiceName = "PresentMonService"

	// TracerExeName is the lowercase executable name of the bundled tracer,
	// used for force-termination fallbacks.
	TracerExeName = "presentmon.exe"

	// ServiceExeName is the lowercase executable name of the service binary.
	ServiceExeName = "presentmonservice.exe"

	// SessionNamePrefix prefixes every trace session this process opens.
	// Stale-session cleanup matches on this prefix.
	SessionNamePrefix = "fpsmon_"

	// OverlayModuleName is the lowercase DLL name of the RTSS overlay hook.
	// Its presence in a target process can interfere with present tracing.
	OverlayModuleName = "rtsshooks64.dll"
)

// CSV stream layout emitted by the tracer on stdout.
const (
	// CSVHeaderToken is the lowercase first column name of the header line.
	CSVHeaderToken = "application"

	// FrameColumnCount is the minimum number of columns a data line must have.
	FrameColumnCount = 10

	// FrameTimeColumn is the zero-based column holding the inter-present
	// interval in milliseconds.
	FrameTimeColumn = 9
)

// Window-classification thresholds. These are empirically tuned values
// carried over unchanged; do not re-derive them.
const (
	// BorderlessAreaRatio is the minimum client-to-monitor area ratio for a
	// focused borderless window to count as a fullscreen candidate.
	BorderlessAreaRatio = 0.98

	// MinClientWidth and MinClientHeight filter tooltips and overlay
	// windows out of the scan.
	MinClientWidth  = 320
	MinClientHeight = 240

	// MaxMonitorOffsetPx is how far a client rectangle may extend past its
	// monitor bounds before the window is treated as stale/off-screen.
	MaxMonitorOffsetPx = 256
)

// SmoothingWindowSize is the number of raw frame intervals averaged into one
// published metric sample.
const SmoothingWindowSize = 5

// Config holds runtime configuration. Paths and intervals can be overridden
// through the environment; the classifier thresholds above cannot.
type Config struct {
	// TracerPath is the path to the bundled tracer executable.
	TracerPath string

	// ServicePath is the path to the bundled privileged service executable.
	ServicePath string

	// LogFilePath is where the rotating log file is written.
	LogFilePath string

	// PollInterval drives both the monitoring loop and the capture
	// supervisory loop.
	PollInterval time.Duration

	// CaptureTimeout stops a capture whose target was never observed alive.
	CaptureTimeout time.Duration

	// KillWaitTimeout bounds the wait for the tracer to exit after a kill
	// before falling back to termination by name.
	KillWaitTimeout time.Duration

	// ServiceStopTimeout bounds the wait for the privileged service to
	// report stopped.
	ServiceStopTimeout time.Duration

	// ServiceSettleDelay is slept after service start/stop commands before
	// the state is trusted.
	ServiceSettleDelay time.Duration

	// ShutdownTimeout bounds the wait for the monitoring loop on shutdown.
	ShutdownTimeout time.Duration
}

// LoadConfig builds the configuration from the environment, applying
// defaults for anything unset. It never fails on malformed values; they
// fall back to defaults the same way the env atoms do.
func LoadConfig() (*Config, error) {
	binDir := GetEnvOrDefault("FPSMON_BIN_DIR", defaultBinDir())

	cfg := &Config{
		TracerPath:         GetEnvOrDefault("FPSMON_TRACER_PATH", filepath.Join(binDir, "PresentMon.exe")),
		ServicePath:        GetEnvOrDefault("FPSMON_SERVICE_PATH", filepath.Join(binDir, "PresentMonService.exe")),
		LogFilePath:        GetEnvOrDefault("FPSMON_LOG_FILE", "fpsmon.log"),
		PollInterval:       ParseDurationEnv("FPSMON_POLL_INTERVAL_SECONDS", 1),
		CaptureTimeout:     ParseDurationEnv("FPSMON_CAPTURE_TIMEOUT_SECONDS", 10),
		KillWaitTimeout:    ParseDurationEnv("FPSMON_KILL_WAIT_SECONDS", 5),
		ServiceStopTimeout: ParseDurationEnv("FPSMON_SERVICE_STOP_TIMEOUT_SECONDS", 15),
		ServiceSettleDelay: ParseDurationEnv("FPSMON_SERVICE_SETTLE_SECONDS", 2),
		ShutdownTimeout:    ParseDurationEnv("FPSMON_SHUTDOWN_TIMEOUT_SECONDS", 5),
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}

	return cfg, nil
}

// defaultBinDir resolves the bin directory next to the running executable,
// falling back to a relative path when the executable path is unknown.
func defaultBinDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "bin"
	}
	return filepath.Join(filepath.Dir(exe), "bin")
}
