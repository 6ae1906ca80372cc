package process

import (
	"errors"
	"os/exec"
	"sync/atomic"
	"testing"
	"time"
)

func TestLauncherLaunch(t *testing.T) {
	l := NewLauncher()

	runner, err := l.Launch("true", exec.Command("true"))
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	if l.Current() != runner {
		t.Error("Current() does not return the launched runner")
	}

	if err := runner.WaitForFinish(5 * time.Second); err != nil {
		t.Fatalf("WaitForFinish() error: %v", err)
	}

	// The monitor clears the slot once the runner is gone.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && l.Current() != nil {
		time.Sleep(5 * time.Millisecond)
	}
	if l.Current() != nil {
		t.Error("Current() still set after exit")
	}
}

func TestLauncherSingleSession(t *testing.T) {
	l := NewLauncher()

	runner, err := l.Launch("sleep", exec.Command("sleep", "30"))
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	defer func() {
		_ = runner.Kill()
		_ = runner.WaitForFinish(5 * time.Second)
	}()

	if _, err := l.Launch("true", exec.Command("true")); !errors.Is(err, ErrSessionActive) {
		t.Errorf("second Launch() = %v, want ErrSessionActive", err)
	}
}

func TestLauncherExitCallback(t *testing.T) {
	var fired atomic.Int32
	exited := make(chan *Runner, 1)

	l := NewLauncher(WithExitCallback(func(r *Runner) {
		fired.Add(1)
		exited <- r
	}))

	runner, err := l.Launch("true", exec.Command("true"))
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}

	select {
	case r := <-exited:
		if r != runner {
			t.Error("callback received a different runner")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("exit callback never fired")
	}

	time.Sleep(20 * time.Millisecond)
	if fired.Load() != 1 {
		t.Errorf("callback fired %d times, want 1", fired.Load())
	}
}

func TestLauncherCallbackPanicContained(t *testing.T) {
	l := NewLauncher(WithExitCallback(func(*Runner) {
		panic("boom")
	}))

	runner, err := l.Launch("true", exec.Command("true"))
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	_ = runner.WaitForFinish(5 * time.Second)

	// The monitor recovered and released the slot; a new launch works.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && l.Current() != nil {
		time.Sleep(5 * time.Millisecond)
	}
	second, err := l.Launch("true", exec.Command("true"))
	if err != nil {
		t.Fatalf("Launch() after panic = %v", err)
	}
	_ = second.WaitForFinish(5 * time.Second)
}

func TestLauncherShutdown(t *testing.T) {
	l := NewLauncher()

	runner, err := l.Launch("sleep", exec.Command("sleep", "30"))
	if err != nil {
		t.Fatalf("Launch() error: %v", err)
	}

	l.Shutdown(2 * time.Second)

	select {
	case <-runner.Done():
	default:
		t.Error("runner still alive after Shutdown")
	}
}

func TestLauncherShutdownIdle(t *testing.T) {
	l := NewLauncher()
	l.Shutdown(time.Second) // no runner, returns immediately
}
