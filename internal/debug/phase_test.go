package debug

import "testing"

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseIdle, "idle"},
		{PhaseStarting, "starting"},
		{PhaseRunning, "running"},
		{PhasePaused, "paused"},
		{PhaseFinished, "finished"},
		{Phase(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestPhaseActive(t *testing.T) {
	if PhaseIdle.active() {
		t.Error("idle reported active")
	}
	for _, p := range []Phase{PhaseStarting, PhaseRunning, PhasePaused, PhaseFinished} {
		if !p.active() {
			t.Errorf("%s reported inactive", p)
		}
	}
}
