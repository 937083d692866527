package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the capture lifecycle. Callers match these with
// errors.Is; none of them ever reaches the host boundary.
var (
	// ErrTracerMissing indicates the bundled tracer executable could not be
	// found at its configured path.
	ErrTracerMissing = errors.New("tracer executable not found")

	// ErrServiceUnavailable indicates the privileged tracing service could
	// not be installed or started; capture is unavailable until the next
	// target change.
	ErrServiceUnavailable = errors.New("tracing service unavailable")

	// ErrSessionActive indicates a capture session is still being torn down
	// and a new one may not start yet.
	ErrSessionActive = errors.New("capture session still active")
)

// ConfigError represents a configuration problem with an actionable
// instruction for resolution.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeTracerPathInvalid  = "TRACER_PATH_INVALID"
	ErrCodeServicePathInvalid = "SERVICE_PATH_INVALID"
)

// ErrTracerPathInvalid returns an error for a missing tracer binary.
func ErrTracerPathInvalid(path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeTracerPathInvalid,
		Message: fmt.Sprintf("Tracer executable not found at %s", path),
		Action:  "Set FPSMON_TRACER_PATH to the bundled PresentMon.exe location",
	}
}

// ErrServicePathInvalid returns an error for a missing service binary.
func ErrServicePathInvalid(path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeServicePathInvalid,
		Message: fmt.Sprintf("Service executable not found at %s", path),
		Action:  "Set FPSMON_SERVICE_PATH to the bundled PresentMonService.exe location",
	}
}
