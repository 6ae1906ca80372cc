// Package process manages the lifecycle of the debuggee process.
package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// State represents the state of the debuggee process.
type State int

const (
	// StateCreated indicates the process has been created but not started.
	StateCreated State = iota
	// StateRunning indicates the process is currently running.
	StateRunning
	// StateExited indicates the process has exited normally or with an error.
	StateExited
	// StateKilled indicates the process was killed by a signal.
	StateKilled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateKilled:
		return "killed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Sentinel errors.
var (
	// ErrNotStarted is returned when operations require a started process.
	ErrNotStarted = errors.New("process not started")

	// ErrAlreadyStarted is returned when starting an already started process.
	ErrAlreadyStarted = errors.New("process already started")

	// ErrStillRunning is returned when a wait deadline expires.
	ErrStillRunning = errors.New("process still running")
)

// Runner wraps the debuggee command with lifecycle tracking: start, signal,
// exit code and a Done channel closed once the process has been waited for.
// Runner is safe for concurrent use.
type Runner struct {
	// ID uniquely identifies this run.
	ID string

	// Name is a human-readable name, typically the script path.
	Name string

	// Cmd is the underlying command.
	Cmd *exec.Cmd

	started  chan struct{}
	done     chan struct{}
	state    atomic.Int32
	exitCode atomic.Int32
	exitErr  error
	mu       sync.RWMutex
	waitOnce sync.Once
}

// NewRunner creates a runner for the given command. The command must not be
// started before being handed over.
func NewRunner(name string, cmd *exec.Cmd) *Runner {
	r := &Runner{
		ID:      uuid.New().String(),
		Name:    name,
		Cmd:     cmd,
		started: make(chan struct{}),
		done:    make(chan struct{}),
	}
	r.state.Store(int32(StateCreated))
	r.exitCode.Store(-1) // -1 indicates not exited
	return r
}

// Start starts the process and begins exit tracking.
func (r *Runner) Start() error {
	if r.State() != StateCreated {
		return ErrAlreadyStarted
	}

	if err := r.Cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", r.Name, err)
	}

	r.state.Store(int32(StateRunning))
	close(r.started)

	go r.waitLoop()

	return nil
}

// waitLoop waits for the process to exit and records the outcome.
func (r *Runner) waitLoop() {
	r.waitOnce.Do(func() {
		err := r.Cmd.Wait()

		r.mu.Lock()
		r.exitErr = err
		r.mu.Unlock()

		exitCode := 0
		state := StateExited

		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				exitCode = exitErr.ExitCode()
				if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
					state = StateKilled
				}
			} else {
				exitCode = -1
			}
		}

		r.exitCode.Store(int32(exitCode))
		r.state.Store(int32(state))
		close(r.done)
	})
}

// State returns the current process state.
func (r *Runner) State() State {
	return State(r.state.Load())
}

// IsRunning returns true if the process is currently running.
func (r *Runner) IsRunning() bool {
	return r.State() == StateRunning
}

// PID returns the process ID, or -1 if not started.
func (r *Runner) PID() int {
	if r.Cmd.Process == nil {
		return -1
	}
	return r.Cmd.Process.Pid
}

// Done returns a channel closed once the process has exited and been
// waited for. No process handle survives past this point.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// ExitCode returns the exit code, or -1 before exit.
func (r *Runner) ExitCode() int {
	return int(r.exitCode.Load())
}

// ExitStatus returns a short status string for the termination event.
func (r *Runner) ExitStatus() string {
	return r.State().String()
}

// ExitError returns any error from waiting on the process.
func (r *Runner) ExitError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.exitErr
}

// WaitForStart blocks until the process has started, or the timeout expires.
func (r *Runner) WaitForStart(timeout time.Duration) error {
	select {
	case <-r.started:
		return nil
	case <-time.After(timeout):
		return ErrNotStarted
	}
}

// WaitForFinish blocks until the process has exited and been waited for, or
// the timeout expires.
func (r *Runner) WaitForFinish(timeout time.Duration) error {
	select {
	case <-r.done:
		return nil
	case <-time.After(timeout):
		return ErrStillRunning
	}
}

// Signal sends a signal to the process.
func (r *Runner) Signal(sig os.Signal) error {
	if !r.IsRunning() {
		return ErrNotStarted
	}
	if r.Cmd.Process == nil {
		return ErrNotStarted
	}
	return r.Cmd.Process.Signal(sig)
}

// Kill sends SIGKILL to the process. Killing a process that has already
// exited is not an error.
func (r *Runner) Kill() error {
	err := r.Signal(syscall.SIGKILL)
	if errors.Is(err, ErrNotStarted) && r.State() != StateCreated {
		return nil
	}
	return err
}

// Terminate sends SIGTERM to the process.
func (r *Runner) Terminate() error {
	return r.Signal(syscall.SIGTERM)
}
