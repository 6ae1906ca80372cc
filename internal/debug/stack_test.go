package debug

import "testing"

func TestStackSnapshotTop(t *testing.T) {
	snap := StackSnapshot{Frames: []Frame{
		{Name: "inner", File: "/tmp/a.py", Line: 12, Locals: map[string]string{"x": "1"}},
		{Name: "outer", File: "/tmp/a.py", Line: 30},
	}}

	top, ok := snap.Top()
	if !ok || top.Name != "inner" {
		t.Errorf("Top() = %+v, ok=%v", top, ok)
	}
	if got := snap.TopLocals(); got["x"] != "1" {
		t.Errorf("TopLocals() = %v", got)
	}
	if snap.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", snap.Depth())
	}
}

func TestStackSnapshotEmpty(t *testing.T) {
	var snap StackSnapshot

	if _, ok := snap.Top(); ok {
		t.Error("Top() reported a frame in an empty snapshot")
	}
	if snap.TopLocals() != nil {
		t.Error("TopLocals() non-nil for an empty snapshot")
	}
	if snap.Depth() != 0 {
		t.Errorf("Depth() = %d, want 0", snap.Depth())
	}
}
