package process

import (
	"errors"
	"os/exec"
	"sync"
	"time"
)

// ErrSessionActive is returned when launching while a debuggee is running.
var ErrSessionActive = errors.New("a debuggee is already running")

// Launcher starts and tracks the debuggee runner.
//
// There is exactly one debug session at a time, so the launcher holds at most
// one live runner. The exit callback fires exactly once per run, after the
// process has been waited for.
type Launcher struct {
	mu     sync.Mutex
	runner *Runner
	onExit func(*Runner)
}

// LauncherOption configures a Launcher.
type LauncherOption func(*Launcher)

// WithExitCallback sets a callback invoked when the debuggee exits.
func WithExitCallback(fn func(*Runner)) LauncherOption {
	return func(l *Launcher) {
		l.onExit = fn
	}
}

// NewLauncher creates a launcher.
func NewLauncher(opts ...LauncherOption) *Launcher {
	l := &Launcher{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch starts the debuggee and begins exit monitoring.
// Returns ErrSessionActive if the previous runner is still alive.
func (l *Launcher) Launch(name string, cmd *exec.Cmd) (*Runner, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.runner != nil && l.runner.IsRunning() {
		return nil, ErrSessionActive
	}

	runner := NewRunner(name, cmd)
	if err := runner.Start(); err != nil {
		return nil, err
	}

	l.runner = runner
	go l.monitor(runner)

	return runner, nil
}

// monitor fires the exit callback once the runner is gone.
func (l *Launcher) monitor(runner *Runner) {
	<-runner.Done()

	if l.onExit != nil {
		func() {
			defer func() {
				_ = recover() // callback panics must not take the launcher down
			}()
			l.onExit(runner)
		}()
	}

	l.mu.Lock()
	if l.runner == runner {
		l.runner = nil
	}
	l.mu.Unlock()
}

// Current returns the live runner, or nil.
func (l *Launcher) Current() *Runner {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.runner
}

// Shutdown terminates any live runner: SIGTERM first, SIGKILL after the
// timeout, then waits for exit.
func (l *Launcher) Shutdown(timeout time.Duration) {
	runner := l.Current()
	if runner == nil {
		return
	}

	if runner.IsRunning() {
		_ = runner.Terminate()
	}

	select {
	case <-runner.Done():
	case <-time.After(timeout):
		_ = runner.Kill()
		<-runner.Done()
	}
}
