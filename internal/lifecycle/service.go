// Package lifecycle manages the daemon's process lifetime: single-instance
// enforcement via a PID file, port advertisement for CLI discovery, signal-
// driven graceful shutdown, and the inactivity watchdog that lets an
// unattended per-project daemon exit on its own. Grounded on
// Aman-CERP-amanmcp's internal/daemon package (PIDFile's
// Read/Write/Remove/IsRunning/signal-0 liveness check), generalized with a
// port-advertisement file and inactivity watchdog the teacher doesn't need
// (its daemon exits when the shell session gone, whereas a project-scoped
// MCP server needs to notice idleness itself).
package lifecycle

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// state values for Service.state, a sync/atomic CAS guard preventing a
// concurrent signal and watchdog expiry from both running shutdown.
const (
	stateRunning int32 = iota
	stateStopping
)

// Service wires together the PID file, port file and inactivity watchdog
// for one daemon process, and drives a single graceful shutdown no matter
// which of SIGINT/SIGTERM/inactivity triggered it.
type Service struct {
	pidFile  *PIDFile
	portFile *PortFile
	watchdog *Watchdog

	state   atomic.Int32
	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewService acquires the single-instance PID file and constructs a Service
// bound to ctx; cancel stops the returned context on any shutdown trigger.
func NewService(ctx context.Context, pidPath, portPath string) (*Service, context.Context, error) {
	pidFile, err := AcquireSingleInstance(pidPath)
	if err != nil {
		return nil, nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	svc := &Service{
		pidFile:  pidFile,
		portFile: NewPortFile(portPath),
		cancel:   cancel,
		stopped:  make(chan struct{}),
	}
	svc.watchdog = NewWatchdog(DefaultInactivityTimeout, DefaultHeartbeatInterval, svc.triggerShutdown)
	return svc, runCtx, nil
}

// AdvertisePort writes the port file once the listener is bound.
func (s *Service) AdvertisePort(addr string, port int) error {
	return s.portFile.Write(PortInfo{PID: os.Getpid(), Addr: addr, Port: port})
}

// Touch rearms the inactivity watchdog; wired as watch.Manager's
// ActivityFunc so any filesystem event across any watched project resets
// the idle clock.
func (s *Service) Touch() {
	s.watchdog.Touch()
}

// WatchSignals starts the inactivity watchdog and begins listening for
// SIGINT/SIGTERM, triggering graceful shutdown on either.
func (s *Service) WatchSignals() {
	s.watchdog.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("lifecycle.service.signal_received", slog.String("signal", sig.String()))
		s.triggerShutdown()
	}()
}

// triggerShutdown runs the shutdown sequence exactly once, regardless of
// whether it's invoked by a signal, the watchdog, or Stop.
func (s *Service) triggerShutdown() {
	if !s.state.CompareAndSwap(stateRunning, stateStopping) {
		return
	}
	s.watchdog.Stop()
	s.cancel()
	if err := s.portFile.Remove(); err != nil {
		slog.Warn("lifecycle.service.port_file_remove_err", slog.String("error", err.Error()))
	}
	if err := s.pidFile.Remove(); err != nil {
		slog.Warn("lifecycle.service.pid_file_remove_err", slog.String("error", err.Error()))
	}
	close(s.stopped)
}

// Stop triggers shutdown from outside a signal or watchdog expiry, for
// example a test or an explicit CLI "stop" command.
func (s *Service) Stop() {
	s.triggerShutdown()
}

// Done returns a channel closed once the shutdown sequence has completed.
func (s *Service) Done() <-chan struct{} {
	return s.stopped
}
