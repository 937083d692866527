package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"fpsmon/capture"
	"fpsmon/core"
	"fpsmon/logging"
	"fpsmon/metrics"
	"fpsmon/probe"
	"fpsmon/shutdown"
	"fpsmon/svcctl"
	"fpsmon/winclass"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Use fmt here since logger isn't initialized yet
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	isDevelopment := os.Getenv("DEV_MODE") == "true"

	cfg, err := core.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(core.ExitCodeError)
	}

	logger, err := logging.NewLogger(isDevelopment, cfg.LogFilePath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(core.ExitCodeError)
	}
	zl := logger.Zap()

	logger.Info("Configuration loaded",
		zap.String("tracer_path", cfg.TracerPath),
		zap.String("service_path", cfg.ServicePath),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Duration("capture_timeout", cfg.CaptureTimeout),
		zap.Bool("dev_mode", isDevelopment),
	)

	// Shared collaborators.
	prb := probe.New(zl)
	scanner := winclass.NewScanner(prb, zl)
	svc := svcctl.NewController(cfg, prb, zl)
	janitor := svcctl.NewJanitor(zl)
	store := metrics.NewStore()
	agg := metrics.NewAggregator(store, zl)
	launcher := &capture.ExecLauncher{TracerPath: cfg.TracerPath}
	sup := capture.NewSupervisor(cfg, prb, svc, janitor, launcher, agg, store, zl)

	// Subcommands run their action and exit; the default is the monitor.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "cleanup":
			os.Exit(runCleanup(prb, svc, janitor))
		case "status":
			os.Exit(runStatus(cfg, svc))
		case "help", "-h", "--help":
			printUsage()
			os.Exit(core.ExitCodeSuccess)
		default:
			color.Red("Unknown command: %s", os.Args[1])
			printUsage()
			os.Exit(core.ExitCodeError)
		}
	}

	monitor := NewMonitor(cfg, scanner, prb, svc, janitor, sup, zl)
	plugin := NewPlugin(cfg, monitor, sup, svc, janitor, store, zl)

	manager := shutdown.NewManager(zl, shutdown.WithTimeout(cfg.ShutdownTimeout))
	manager.Register("flush-logs", 5, shutdown.CleanupLogger(zl))
	manager.Register("stop-monitor", 10, func(ctx context.Context) error {
		plugin.Close()
		return nil
	})
	manager.Register("stop-capture", 20, shutdown.CleanupCapture(zl, sup))
	manager.Register("stop-service", 25, shutdown.CleanupService(zl, svc))
	manager.Register("clear-sessions", 30, shutdown.CleanupSessions(zl, janitor))

	manager.Start()
	plugin.Initialize()

	manager.Wait()
	if err := manager.Shutdown(); err != nil {
		logger.Error("Shutdown finished with errors", zap.Error(err))
		os.Exit(core.ExitCodeError)
	}

	code := manager.ExitCode()
	logger.Info("Exiting", zap.String("reason", core.ExitCodeName(code)))
	os.Exit(code)
}

// runCleanup force-removes everything a crashed run could have left behind:
// stray tracer and service processes, the installed service, and any trace
// sessions carrying our name prefix. Safe to run when nothing is active.
func runCleanup(prb core.ProcessProbe, svc core.ServiceController, janitor core.SessionJanitor) int {
	color.Yellow("Cleaning up leftover capture state...")

	if killed := prb.KillByName(core.TracerExeName); killed > 0 {
		color.Yellow("  terminated %d stray %s process(es)", killed, core.TracerExeName)
	}

	svc.EnsureStopped()
	color.Yellow("  tracing service stopped")

	janitor.ClearStaleSessions()
	color.Yellow("  stale trace sessions cleared")

	color.Green("Cleanup complete.")
	return core.ExitCodeSuccess
}

// runStatus reports whether the bundled binaries are present and whether the
// tracing service is currently running.
func runStatus(cfg *core.Config, svc core.ServiceController) int {
	printPath := func(label, path string) {
		if _, err := os.Stat(path); err != nil {
			color.Red("  %s: missing (%s)", label, path)
		} else {
			color.Green("  %s: %s", label, path)
		}
	}

	fmt.Println("Binaries:")
	printPath("tracer", cfg.TracerPath)
	printPath("service", cfg.ServicePath)

	fmt.Println("Service:")
	if svc.Running() {
		color.Green("  %s: running", core.ServiceName)
	} else {
		fmt.Printf("  %s: not running\n", core.ServiceName)
	}

	return core.ExitCodeSuccess
}

func printUsage() {
	fmt.Println("Usage: fpsmon [command]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  (none)    run the FPS monitor")
	fmt.Println("  cleanup   stop stray tracer processes, the service, and stale trace sessions")
	fmt.Println("  status    show binary and service state")
	fmt.Println("  help      show this help")
}
