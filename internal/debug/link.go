package debug

// Link is the outbound half of the debug link capability.
//
// Every request is fire-and-forget: completion is observed later through a
// distinct Event, never a synchronous acknowledgment. Requests fail with an
// error wrapping ErrLinkClosed once the link is gone.
type Link interface {
	// Run resumes execution until the next breakpoint, step target, or
	// termination.
	Run() error

	// StepOver executes the current line without descending into calls.
	StepOver() error

	// StepInto descends into the call on the current line.
	StepInto() error

	// StepReturn runs until the current function returns.
	StepReturn() error

	// SetBreakpoint creates a breakpoint in the debuggee at a 1-based line.
	SetBreakpoint(file string, line int) error

	// ClearBreakpoint removes a breakpoint from the debuggee.
	ClearBreakpoint(bp *Breakpoint) error

	// EnableBreakpoint re-enables an existing breakpoint in the debuggee.
	EnableBreakpoint(bp *Breakpoint) error

	// DisableBreakpoint disables an existing breakpoint in the debuggee.
	DisableBreakpoint(bp *Breakpoint) error

	// Close tears down the link. Safe to call more than once.
	Close() error
}
