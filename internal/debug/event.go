package debug

// Event is one asynchronous notification from the debug link.
//
// The variant set is closed: the controller routes every variant through a
// single exclusive-access point, in arrival order. Unknown wire events are
// surfaced as ErrorEvent by the link layer rather than invented here.
type Event interface {
	// Kind returns the wire name of the event, for logging.
	Kind() string

	isEvent()
}

// BootstrapEvent signals that the debuggee-side runner is ready to accept
// breakpoints and a run command.
type BootstrapEvent struct{}

// LineEvent signals that the debuggee halted at a source line.
// Line is 1-based.
type LineEvent struct {
	File string
	Line int
}

// StackEvent carries a fresh call-stack snapshot.
type StackEvent struct {
	Stack StackSnapshot
}

// BreakpointEnableEvent signals that a breakpoint became enabled.
// The event is authoritative for marker display and may be unsolicited.
type BreakpointEnableEvent struct {
	Breakpoint Breakpoint
}

// BreakpointDisableEvent signals that a breakpoint became disabled.
// The event is authoritative for marker display and may be unsolicited.
type BreakpointDisableEvent struct {
	Breakpoint Breakpoint
}

// BreakpointIgnoreEvent signals an updated ignore count for a breakpoint.
// Accepted and routed; currently inert.
type BreakpointIgnoreEvent struct {
	Breakpoint Breakpoint
	Count      int
}

// BreakpointClearEvent signals that the debuggee dropped a breakpoint.
// Accepted and routed; currently inert.
type BreakpointClearEvent struct {
	Breakpoint Breakpoint
}

// InfoEvent carries an informative message from the debugger.
type InfoEvent struct {
	Message string
}

// WarningEvent carries a warning message from the debugger.
type WarningEvent struct {
	Message string
}

// ErrorEvent carries an error message from the debugger.
type ErrorEvent struct {
	Message string
}

// PostmortemEvent signals a catastrophic failure inside the debugger.
// The controller records it and leaves the session recoverable.
type PostmortemEvent struct {
	Context string
}

// RestartEvent signals that the debugger restarted.
// Accepted and routed; currently inert.
type RestartEvent struct{}

// CallEvent signals that the debuggee entered a function call.
// Accepted and routed; currently inert.
type CallEvent struct {
	Args []string
}

// ReturnEvent signals that the debuggee returned from a function call.
// Accepted and routed; currently inert.
type ReturnEvent struct {
	Value string
}

// ExceptionEvent signals that the debuggee raised a named exception.
// Accepted and routed; currently inert.
type ExceptionEvent struct {
	Name  string
	Value string
}

func (BootstrapEvent) Kind() string         { return "bootstrap" }
func (LineEvent) Kind() string              { return "line" }
func (StackEvent) Kind() string             { return "stack" }
func (BreakpointEnableEvent) Kind() string  { return "breakpoint_enable" }
func (BreakpointDisableEvent) Kind() string { return "breakpoint_disable" }
func (BreakpointIgnoreEvent) Kind() string  { return "breakpoint_ignore" }
func (BreakpointClearEvent) Kind() string   { return "breakpoint_clear" }
func (InfoEvent) Kind() string              { return "info" }
func (WarningEvent) Kind() string           { return "warning" }
func (ErrorEvent) Kind() string             { return "error" }
func (PostmortemEvent) Kind() string        { return "postmortem" }
func (RestartEvent) Kind() string           { return "restart" }
func (CallEvent) Kind() string              { return "call" }
func (ReturnEvent) Kind() string            { return "return" }
func (ExceptionEvent) Kind() string         { return "exception" }

func (BootstrapEvent) isEvent()         {}
func (LineEvent) isEvent()              {}
func (StackEvent) isEvent()             {}
func (BreakpointEnableEvent) isEvent()  {}
func (BreakpointDisableEvent) isEvent() {}
func (BreakpointIgnoreEvent) isEvent()  {}
func (BreakpointClearEvent) isEvent()   {}
func (InfoEvent) isEvent()              {}
func (WarningEvent) isEvent()           {}
func (ErrorEvent) isEvent()             {}
func (PostmortemEvent) isEvent()        {}
func (RestartEvent) isEvent()           {}
func (CallEvent) isEvent()              {}
func (ReturnEvent) isEvent()            {}
func (ExceptionEvent) isEvent()         {}
