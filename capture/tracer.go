package capture

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"fpsmon/core"
)

// TracerProcess is a running tracer child process.
type TracerProcess interface {
	Stdout() io.Reader
	Stderr() io.Reader

	// Wait blocks until the process exits.
	Wait() error

	// Kill forcefully terminates the process.
	Kill() error
}

// Launcher starts the tracer against a target PID. Split out so supervisor
// tests can run the state machine against a scripted process.
type Launcher interface {
	Launch(pid uint32, sessionName string) (TracerProcess, error)
}

// ExecLauncher launches the bundled tracer executable.
type ExecLauncher struct {
	// TracerPath is the path to the tracer binary.
	TracerPath string
}

// Launch starts the tracer with CSV-over-stdout output and automatic
// termination when the target exits. Any pre-existing trace session of the
// same name is taken over.
func (l *ExecLauncher) Launch(pid uint32, sessionName string) (TracerProcess, error) {
	if _, err := os.Stat(l.TracerPath); err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrTracerMissing, core.ErrTracerPathInvalid(l.TracerPath).Error())
	}

	cmd := exec.Command(l.TracerPath,
		"-process_id", strconv.FormatUint(uint64(pid), 10),
		"-output_stdout",
		"-terminate_on_proc_exit",
		"-stop_existing_session",
		"-session_name", sessionName,
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("tracer stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("tracer stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting tracer: %w", err)
	}

	return &execProcess{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout io.Reader
	stderr io.Reader
}

func (p *execProcess) Stdout() io.Reader { return p.stdout }
func (p *execProcess) Stderr() io.Reader { return p.stderr }
func (p *execProcess) Wait() error       { return p.cmd.Wait() }

func (p *execProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}
