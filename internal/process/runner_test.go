package process

import (
	"errors"
	"os/exec"
	"testing"
	"time"
)

func TestRunnerLifecycle(t *testing.T) {
	r := NewRunner("true", exec.Command("true"))

	if r.State() != StateCreated {
		t.Errorf("State() = %s, want created", r.State())
	}
	if r.ExitCode() != -1 {
		t.Errorf("ExitCode() before start = %d, want -1", r.ExitCode())
	}
	if r.ID == "" {
		t.Error("runner has no ID")
	}

	if err := r.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := r.WaitForStart(time.Second); err != nil {
		t.Fatalf("WaitForStart() error: %v", err)
	}
	if err := r.WaitForFinish(5 * time.Second); err != nil {
		t.Fatalf("WaitForFinish() error: %v", err)
	}

	if r.State() != StateExited {
		t.Errorf("State() = %s, want exited", r.State())
	}
	if r.ExitCode() != 0 {
		t.Errorf("ExitCode() = %d, want 0", r.ExitCode())
	}
	if r.ExitStatus() != "exited" {
		t.Errorf("ExitStatus() = %q, want exited", r.ExitStatus())
	}
}

func TestRunnerStartTwice(t *testing.T) {
	r := NewRunner("true", exec.Command("true"))
	if err := r.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := r.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() = %v, want ErrAlreadyStarted", err)
	}
	_ = r.WaitForFinish(5 * time.Second)
}

func TestRunnerNonZeroExit(t *testing.T) {
	r := NewRunner("false", exec.Command("false"))
	if err := r.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := r.WaitForFinish(5 * time.Second); err != nil {
		t.Fatalf("WaitForFinish() error: %v", err)
	}

	if r.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", r.ExitCode())
	}
	if r.State() != StateExited {
		t.Errorf("State() = %s, want exited", r.State())
	}
	if r.ExitError() == nil {
		t.Error("ExitError() = nil for failing command")
	}
}

func TestRunnerKill(t *testing.T) {
	r := NewRunner("sleep", exec.Command("sleep", "30"))
	if err := r.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if !r.IsRunning() {
		t.Fatal("runner not running after start")
	}
	if r.PID() <= 0 {
		t.Errorf("PID() = %d, want positive", r.PID())
	}

	if err := r.Kill(); err != nil {
		t.Fatalf("Kill() error: %v", err)
	}
	if err := r.WaitForFinish(5 * time.Second); err != nil {
		t.Fatalf("WaitForFinish() after kill: %v", err)
	}

	if r.State() != StateKilled {
		t.Errorf("State() = %s, want killed", r.State())
	}
	if r.ExitStatus() != "killed" {
		t.Errorf("ExitStatus() = %q, want killed", r.ExitStatus())
	}

	// The process is gone; a second kill is a no-op.
	if err := r.Kill(); err != nil {
		t.Errorf("Kill() after exit = %v, want nil", err)
	}
}

func TestRunnerSignalBeforeStart(t *testing.T) {
	r := NewRunner("sleep", exec.Command("sleep", "30"))
	if err := r.Terminate(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Terminate() before start = %v, want ErrNotStarted", err)
	}
}

func TestRunnerWaitTimeouts(t *testing.T) {
	r := NewRunner("sleep", exec.Command("sleep", "30"))

	if err := r.WaitForStart(10 * time.Millisecond); !errors.Is(err, ErrNotStarted) {
		t.Errorf("WaitForStart() without start = %v, want ErrNotStarted", err)
	}

	if err := r.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := r.WaitForFinish(10 * time.Millisecond); !errors.Is(err, ErrStillRunning) {
		t.Errorf("WaitForFinish() while running = %v, want ErrStillRunning", err)
	}

	_ = r.Kill()
	_ = r.WaitForFinish(5 * time.Second)
}

func TestRunnerDoneChannel(t *testing.T) {
	r := NewRunner("true", exec.Command("true"))
	if err := r.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	select {
	case <-r.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Done() not closed after exit")
	}
}
