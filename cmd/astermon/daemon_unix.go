//go:build !windows

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/playok/astermon/internal/config"
)

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

const stopTimeout = 10 * time.Second

func cmdStart(args []string) {
	cfg := loadConfig(args)

	if pid, ok := runningPID(cfg.PidFile); ok {
		fmt.Printf("astermon is already running (PID %d)\n", pid)
		os.Exit(1)
	}

	pid, err := spawnDaemon(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "astermon: %v\n", err)
		os.Exit(1)
	}
	if err := writePidFile(cfg.PidFile, pid); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not record PID %d in %s: %v\n", pid, cfg.PidFile, err)
	}

	fmt.Printf("astermon started (PID %d)\n", pid)
	printSummary(cfg)
}

func cmdStop(args []string) {
	cfg := loadConfig(args)

	pid, ok := runningPID(cfg.PidFile)
	if !ok {
		fmt.Fprintf(os.Stderr, "astermon is not running (PID file: %s)\n", cfg.PidFile)
		os.Exit(1)
	}

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		fmt.Fprintf(os.Stderr, "astermon: signal PID %d: %v\n", pid, err)
		os.Exit(1)
	}

	exited := waitForExit(pid, stopTimeout)
	os.Remove(cfg.PidFile)
	if !exited {
		fmt.Printf("astermon (PID %d) is still draining after %v\n", pid, stopTimeout)
		return
	}
	fmt.Printf("astermon stopped (PID %d)\n", pid)
}

func cmdStatus(args []string) {
	cfg := loadConfig(args)

	pid, ok := runningPID(cfg.PidFile)
	if !ok {
		fmt.Println("astermon is stopped")
		os.Exit(1)
	}
	fmt.Printf("astermon is running (PID %d)\n", pid)
	printSummary(cfg)
}

// spawnDaemon re-executes the binary as "run" in a new session with output
// sent to the configured log file, and returns the child's PID.
func spawnDaemon(cfg *config.Config) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("locate executable: %w", err)
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return 0, fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	child := exec.Command(exe, append([]string{"run"}, buildForwardFlags(cfg)...)...)
	child.Args[0] = filepath.Base(exe)
	child.Stdout = logFile
	child.Stderr = logFile
	child.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := child.Start(); err != nil {
		return 0, fmt.Errorf("start daemon: %w", err)
	}
	pid := child.Process.Pid
	child.Process.Release()
	return pid, nil
}

// runningPID reads the PID file and reports whether that process is alive.
// A PID file left behind by a dead process is removed.
func runningPID(pidFile string) (int, bool) {
	pid, err := readPidFile(pidFile)
	if err != nil {
		return 0, false
	}
	if !processExists(pid) {
		os.Remove(pidFile)
		return pid, false
	}
	return pid, true
}

func waitForExit(pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !processExists(pid) {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return !processExists(pid)
}

func printSummary(cfg *config.Config) {
	if cfg.Process.Enabled {
		fmt.Printf("  Process : http://%s\n", cfg.Process.Listen)
	}
	if cfg.Calls.Enabled {
		fmt.Printf("  Calls   : http://%s\n", cfg.Calls.Listen)
	}
	fmt.Printf("  Base    : %s\n", cfg.BasePath)
	fmt.Printf("  Config  : %s\n", cfg.ConfigPath)
	fmt.Printf("  PID     : %s\n", cfg.PidFile)
	fmt.Printf("  Log     : %s\n", cfg.LogFile)
	if cfg.History.Database != "" {
		fmt.Printf("  History : %s\n", cfg.History.Database)
	}
}

// processExists sends signal 0, which checks for the process without
// delivering anything.
func processExists(pid int) bool {
	return syscall.Kill(pid, syscall.Signal(0)) == nil
}
