package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultGracePeriod is how long Stop waits after SIGTERM before SIGKILL.
const DefaultGracePeriod = 5 * time.Second

// SupervisorOptions configures a Supervisor. Zero values select the
// defaults used to run a Node agent in production mode.
type SupervisorOptions struct {
	Resolver    *Resolver
	Command     string   // Defaults to "npm"
	Args        []string // Defaults to "run prod"
	InstallArgs []string // Defaults to "install"
	Fallbacks   []string // Defaults to the npm locations in KnownLocations

	Port            int    // Port cleaned up on Shutdown; 0 skips cleanup
	ClearCodeOnExit bool   // Empty the pairing artifact on Shutdown
	LogPath         string // Agent stdout/stderr are appended here; "" discards

	Poller      Poller
	GracePeriod time.Duration
	Clock       Clock
	Logger      *slog.Logger
}

// Supervisor owns the lifecycle of the single agent process: dependency
// preparation, spawn, readiness detection, termination and cleanup.
type Supervisor struct {
	opts     SupervisorOptions
	resolver *Resolver
	clock    Clock
	logger   *slog.Logger

	// lifecycle serializes Start and Stop. mu guards the fields below and is
	// never held across a blocking call.
	lifecycle sync.Mutex

	mu      sync.Mutex
	state   State
	cmd     *exec.Cmd
	done    chan struct{}
	runID   string
	workDir string
	exitErr error
}

// NewSupervisor creates a Supervisor.
func NewSupervisor(opts SupervisorOptions) *Supervisor {
	if opts.Command == "" {
		opts.Command = "npm"
	}
	if opts.Args == nil {
		opts.Args = []string{"run", "prod"}
	}
	if opts.InstallArgs == nil {
		opts.InstallArgs = []string{"install"}
	}
	if opts.Fallbacks == nil {
		opts.Fallbacks = KnownLocations["npm"]
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = DefaultGracePeriod
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Poller.Interval <= 0 {
		opts.Poller.Interval = PairingPollInterval
	}
	if opts.Poller.Timeout <= 0 {
		opts.Poller.Timeout = PairingPollTimeout
	}
	if opts.Poller.Clock == nil {
		opts.Poller.Clock = opts.Clock
	}
	if opts.Logger == nil {
		opts.Logger = DiscardLogger()
	}
	if opts.Resolver == nil {
		opts.Resolver = NewResolver(ResolverOptions{Logger: opts.Logger})
	}

	return &Supervisor{
		opts:     opts,
		resolver: opts.Resolver,
		clock:    opts.Clock,
		logger:   opts.Logger,
	}
}

// Start launches the agent in workDir and waits for its pairing code.
//
// Any process from a previous Start is terminated first. If the agent's
// node_modules directory is missing, npm install runs to completion before
// the spawn. Start returns the pairing code, or "" if none appeared within
// the poll timeout; the latter is not an error and the agent keeps running.
func (s *Supervisor) Start(ctx context.Context, workDir string) (string, error) {
	if workDir == "" {
		return "", ErrAgentDirNotSelected
	}

	cmd, done, logger, err := s.launch(ctx, workDir)
	if err != nil {
		return "", err
	}

	logger.Info("agent started", "pid", cmd.Process.Pid, "dir", workDir)

	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-done:
			cancel()
		case <-pollCtx.Done():
		}
	}()

	probe := func() (string, bool) {
		code := ReadPairingCode(workDir)
		return code, code != ""
	}
	code, ok := s.opts.Poller.Poll(pollCtx, probe)
	if !ok {
		// The agent may have written the code just before exiting.
		code, _ = probe()
	}

	s.mu.Lock()
	if s.cmd == cmd && s.state == StateStarting {
		s.state = StateRunning
	}
	s.mu.Unlock()

	if code == "" {
		logger.Warn("no pairing code observed", "timeout", s.opts.Poller.Timeout)
	} else {
		logger.Info("pairing code received")
	}
	return code, nil
}

// launch stops any previous agent, prepares workDir and spawns the agent.
// The state reads Starting from the moment the previous agent is gone.
func (s *Supervisor) launch(ctx context.Context, workDir string) (*exec.Cmd, chan struct{}, *slog.Logger, error) {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.stop()
	s.setState(StateStarting)

	if !dirExists(filepath.Join(workDir, dependenciesDir)) {
		s.logger.Info("installing agent dependencies", "dir", workDir)
		if _, err := s.resolver.Run(ctx, workDir, s.opts.Command, s.opts.Fallbacks, s.opts.InstallArgs...); err != nil {
			s.setState(StateIdle)
			return nil, nil, nil, &PreconditionError{Dir: workDir, Err: err}
		}
	}

	runID := uuid.NewString()
	logger := s.logger.With("run", runID)

	out, closeOut := s.openAgentLog(runID, workDir)
	cmd, err := s.resolver.ResolveAndRun(Launch{
		Name:      s.opts.Command,
		Args:      s.opts.Args,
		Dir:       workDir,
		Fallbacks: s.opts.Fallbacks,
		Stdout:    out,
		Stderr:    out,
		Configure: configureProcess,
	})
	if err != nil {
		closeOut()
		s.setState(StateIdle)
		logger.Error("agent spawn failed", "err", err)
		return nil, nil, nil, err
	}

	done := make(chan struct{})
	s.mu.Lock()
	s.cmd = cmd
	s.done = done
	s.runID = runID
	s.workDir = workDir
	s.exitErr = nil
	s.state = StateStarting
	s.mu.Unlock()
	go s.monitor(cmd, done, closeOut, logger)

	return cmd, done, logger, nil
}

func (s *Supervisor) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Stop terminates the agent process if one is running.
func (s *Supervisor) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.stop()
}

// Shutdown stops the agent, kills whatever still owns the agent port and
// empties the pairing artifact in agentDir. Cleanup failures are logged and
// never returned.
func (s *Supervisor) Shutdown(ctx context.Context, agentDir string) {
	s.Stop()

	if s.opts.Port > 0 {
		pids, err := KillPort(ctx, s.resolver.runner, s.resolver.Env(), s.opts.Port)
		if err != nil {
			s.logger.Warn("port cleanup failed", "port", s.opts.Port, "err", err)
		} else if len(pids) > 0 {
			s.logger.Info("killed port owners", "port", s.opts.Port, "pids", pids)
		}
	}

	if s.opts.ClearCodeOnExit {
		if err := ClearPairingCode(agentDir); err != nil {
			s.logger.Warn("pairing code cleanup failed", "dir", agentDir, "err", err)
		}
	}
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PID returns the agent's process ID, or 0 if no agent is running.
func (s *Supervisor) PID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil || s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// Exited returns a channel closed when the current agent process exits.
// If no agent is running the returned channel is already closed.
func (s *Supervisor) Exited() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return s.done
}

// ExitErr returns the wait error of the last agent that exited on its own.
func (s *Supervisor) ExitErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitErr
}

// stop terminates the current process and waits for it to exit. The
// handle is detached first so monitor does not record the exit, and so
// State and PID stay answerable during the grace period.
// Must be called with s.lifecycle held.
func (s *Supervisor) stop() {
	s.mu.Lock()
	cmd, done, runID := s.cmd, s.done, s.runID
	s.cmd = nil
	s.done = nil
	s.mu.Unlock()
	if cmd == nil {
		return
	}
	logger := s.logger.With("run", runID)

	if err := terminate(cmd.Process); err != nil {
		logger.Debug("terminate failed", "err", err)
	}
	select {
	case <-done:
	case <-s.clock.After(s.opts.GracePeriod):
		logger.Warn("agent did not exit after SIGTERM, killing", "grace", s.opts.GracePeriod)
		if err := forceKill(cmd.Process); err != nil {
			logger.Debug("kill failed", "err", err)
		}
		<-done
	}

	s.setState(StateStopped)
	logger.Info("agent stopped")
}

// monitor waits for cmd to exit and clears the handle if it is still the
// current one.
func (s *Supervisor) monitor(cmd *exec.Cmd, done chan struct{}, closeOut func(), logger *slog.Logger) {
	err := cmd.Wait()
	close(done)
	closeOut()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd != cmd {
		return
	}
	s.cmd = nil
	s.done = nil
	s.exitErr = err
	s.state = StateStopped
	if err != nil {
		logger.Warn("agent exited", "err", err)
	} else {
		logger.Info("agent exited")
	}
}

// openAgentLog opens the agent output file. A nil writer sends output to
// the null device.
func (s *Supervisor) openAgentLog(runID, workDir string) (io.Writer, func()) {
	if s.opts.LogPath == "" {
		return nil, func() {}
	}
	if err := os.MkdirAll(filepath.Dir(s.opts.LogPath), 0o755); err != nil {
		s.logger.Warn("agent log unavailable", "err", err)
		return nil, func() {}
	}
	f, err := os.OpenFile(s.opts.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		s.logger.Warn("agent log unavailable", "err", err)
		return nil, func() {}
	}
	fmt.Fprintf(f, "=== run %s started %s in %s ===\n", runID, s.clock.Now().Format(time.RFC3339), workDir)
	return f, func() { _ = f.Close() }
}
