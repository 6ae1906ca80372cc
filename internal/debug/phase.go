package debug

// Phase is the controller's top-level session state.
type Phase int

const (
	// PhaseIdle means no session exists.
	PhaseIdle Phase = iota
	// PhaseStarting means the process is launched but the link has not
	// bootstrapped yet.
	PhaseStarting
	// PhaseRunning means the debuggee is executing.
	PhaseRunning
	// PhasePaused means the debuggee halted at a breakpoint or step boundary
	// and awaits a command.
	PhasePaused
	// PhaseFinished means the process exited and UI reset is pending.
	PhaseFinished
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStarting:
		return "starting"
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// active reports whether a session exists in this phase.
func (p Phase) active() bool {
	return p != PhaseIdle
}
