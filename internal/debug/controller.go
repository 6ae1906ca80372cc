package debug

import (
	"fmt"
	"sync"
	"time"

	"github.com/dshills/stride/internal/app"
)

// ProcessHandle is the running debuggee process, as the controller sees it.
//
// The handle delivers termination out-of-band from the debug link: the
// controller watches Done and reads the exit code and status afterwards.
type ProcessHandle interface {
	// Kill forcibly terminates the process.
	Kill() error

	// Done returns a channel closed when the process has exited and been
	// waited for.
	Done() <-chan struct{}

	// ExitCode returns the exit code, or -1 before exit.
	ExitCode() int

	// ExitStatus returns a short status string ("exited", "killed").
	ExitStatus() string
}

// LaunchFunc spawns the debuggee process for a script.
type LaunchFunc func(script string) (ProcessHandle, error)

// OpenLinkFunc opens the debug link to a freshly launched debuggee.
type OpenLinkFunc func() (Link, error)

// ControllerConfig wires a Controller to its collaborators.
type ControllerConfig struct {
	// Workspace exposes the host's open documents.
	Workspace Workspace

	// Sink receives UI notifications.
	Sink Sink

	// Launch spawns the debuggee process.
	Launch LaunchFunc

	// OpenLink opens the debug link after launch.
	OpenLink OpenLinkFunc

	// Logger is the session logger. Defaults to the application logger.
	Logger *app.Logger

	// StopTimeout bounds the wait for process exit during Stop.
	// Defaults to 5 seconds.
	StopTimeout time.Duration
}

// Controller owns a single debug session: the breakpoint store, the session
// phase, the marker view, and the active link and process handles.
//
// Commands and events are processed strictly one at a time under one mutex;
// no two phase transitions can interleave. Every inbound link event and every
// UI command crosses an asynchronous boundary into this mutex. No controller
// operation blocks waiting for a link reply.
type Controller struct {
	cfg ControllerConfig
	log *app.Logger

	mu      sync.Mutex
	phase   Phase
	store   *Store
	markers map[string]map[int]bool // 0-based lines with a visible marker
	link    Link
	proc    ProcessHandle
}

// NewController creates an idle controller with an empty breakpoint store.
func NewController(cfg ControllerConfig) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = app.GetLogger()
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 5 * time.Second
	}
	return &Controller{
		cfg:     cfg,
		log:     cfg.Logger.WithComponent("session"),
		phase:   PhaseIdle,
		store:   NewStore(),
		markers: make(map[string]map[int]bool),
	}
}

// Store returns the breakpoint store. The UI may read it; only the
// controller mutates it.
func (c *Controller) Store() *Store {
	return c.store
}

// Phase returns the current session phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// MarkerLines returns the 0-based lines with a visible breakpoint marker in
// a file, for read-only rendering.
func (c *Controller) MarkerLines(file string) []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]int, 0, len(c.markers[file]))
	for line := range c.markers[file] {
		lines = append(lines, line)
	}
	return lines
}

// HasMarker reports whether a marker is shown at a 0-based line.
func (c *Controller) HasMarker(file string, line int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.markers[file][line]
}

// Start begins a debug session for the current document.
//
// The session moves to Starting; breakpoints are applied and the debuggee
// resumed once the bootstrap event arrives. A start with no usable document
// recovers locally via an implicit stop.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseIdle {
		c.log.Warn("start requested in phase %s", c.phase)
		return NewSessionError("start", c.phase, ErrInvalidTransition)
	}

	doc, ok := c.cfg.Workspace.CurrentDocument()
	if !ok {
		c.log.Debug("no active document")
		c.stopLocked()
		return NewSessionError("start", c.phase, ErrNoActiveDocument)
	}
	if doc.Path() == "" {
		// An untitled document may still be nameable: saving assigns the
		// path. Only a document that stays pathless aborts the start.
		c.log.Debug("naming untitled document before launch")
		if err := doc.Save(); err != nil || doc.Path() == "" {
			c.stopLocked()
			return NewSessionError("start", c.phase, ErrNoActiveDocument)
		}
	}

	if doc.IsModified() {
		c.log.Info("saving script to %s", doc.Path())
		if err := doc.Save(); err != nil {
			c.cfg.Sink.ShowStatus(fmt.Sprintf("Unable to save %s: %v", doc.Path(), err))
			return NewSessionError("start", c.phase, err)
		}
	}

	script := doc.Path()
	c.log.Debug("launching debuggee for %s", script)

	proc, err := c.cfg.Launch(script)
	if err != nil {
		c.cfg.Sink.ShowStatus(fmt.Sprintf("Unable to start %s: %v", script, err))
		c.log.Error("launch failed: %v", err)
		return NewSessionError("start", PhaseIdle, fmt.Errorf("%w: %v", ErrLaunchFailed, err))
	}

	link, err := c.cfg.OpenLink()
	if err != nil {
		c.killAndWaitLocked(proc)
		c.cfg.Sink.ShowStatus(fmt.Sprintf("Unable to connect debugger: %v", err))
		c.log.Error("open link failed: %v", err)
		return NewSessionError("start", PhaseIdle, fmt.Errorf("%w: %v", ErrLinkClosed, err))
	}

	c.proc = proc
	c.link = link
	c.phase = PhaseStarting

	c.cfg.Sink.ShowStatus(fmt.Sprintf("Running script %s", script))
	c.cfg.Sink.SetReadOnly(true)
	c.cfg.Sink.UpdateInspector(map[string]string{})
	c.applyActionsLocked()

	go c.watchProcess(proc)

	return nil
}

// Stop ends the session from any phase, killing the debuggee and resetting
// session-scoped UI affordances. Stop while Idle is a no-op. It is the sole
// cancellation primitive and is safe to call concurrently with event
// dispatch.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// stopLocked tears the session down. The process is killed and reaped,
// bounded by StopTimeout, before the controller reports Idle; no handle
// survives.
func (c *Controller) stopLocked() {
	if c.phase == PhaseIdle && c.proc == nil {
		return
	}

	c.log.Debug("stopping session in phase %s", c.phase)

	if c.proc != nil {
		c.killAndWaitLocked(c.proc)
		c.proc = nil
	}

	if c.link != nil {
		_ = c.link.Close()
		c.link = nil
	}

	c.phase = PhaseIdle
	c.cfg.Sink.SetReadOnly(false)
	c.cfg.Sink.UpdateInspector(nil)
	c.applyActionsLocked()
}

// killAndWaitLocked kills the debuggee and waits for it to be reaped. The
// wait is bounded by StopTimeout so a handle that never reports exit cannot
// wedge the controller; the dropped handle is only logged.
func (c *Controller) killAndWaitLocked(proc ProcessHandle) {
	_ = proc.Kill()
	select {
	case <-proc.Done():
	case <-time.After(c.cfg.StopTimeout):
		c.log.Error("debuggee did not exit within %s after kill", c.cfg.StopTimeout)
	}
}

// Continue resumes execution. Legal while Paused, or Running where it is a
// harmless re-issue of the run command.
func (c *Controller) Continue() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhasePaused && c.phase != PhaseRunning {
		c.log.Warn("continue requested in phase %s", c.phase)
		return NewSessionError("run", c.phase, ErrInvalidTransition)
	}
	return c.resumeLocked("run", c.link.Run)
}

// StepOver executes the current line. Legal only while Paused.
func (c *Controller) StepOver() error {
	return c.step("step_over", func() error { return c.link.StepOver() })
}

// StepInto descends into the call on the current line. Legal only while
// Paused.
func (c *Controller) StepInto() error {
	return c.step("step_into", func() error { return c.link.StepInto() })
}

// StepReturn runs until the current function returns. Legal only while
// Paused.
func (c *Controller) StepReturn() error {
	return c.step("step_return", func() error { return c.link.StepReturn() })
}

func (c *Controller) step(op string, send func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhasePaused {
		c.log.Warn("%s requested in phase %s", op, c.phase)
		return NewSessionError(op, c.phase, ErrInvalidTransition)
	}
	return c.resumeLocked(op, send)
}

// resumeLocked issues a fire-and-forget resume request and optimistically
// moves to Running; the next line event or termination settles the phase.
func (c *Controller) resumeLocked(op string, send func() error) error {
	if err := send(); err != nil {
		return c.linkFailureLocked(op, err)
	}
	c.phase = PhaseRunning
	c.applyActionsLocked()
	return nil
}

// linkFailureLocked surfaces a failed link request and forces the session
// to Idle.
func (c *Controller) linkFailureLocked(op string, err error) error {
	c.log.Error("%s: link request failed: %v", op, err)
	c.cfg.Sink.ShowStatus(fmt.Sprintf("Debugger connection lost: %v", err))
	c.stopLocked()
	return NewSessionError(op, PhaseIdle, fmt.Errorf("%w: %v", ErrLinkClosed, err))
}

// ToggleBreakpoint toggles the breakpoint at a 0-based line. Valid in any
// phase; breakpoints set while Idle are applied on the next bootstrap.
//
// A visible marker means toggle-off: the breakpoint is disabled, never
// deleted, so the next toggle re-enables the same record. Two toggles always
// return marker and store to their prior state.
func (c *Controller) ToggleBreakpoint(file string, line int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	storeLine := line + 1 // 0-based UI to 1-based store/link

	if c.markers[file][line] {
		bp, ok := c.store.Get(file, storeLine)
		if ok {
			c.store.Disable(bp)
			if c.link != nil {
				if err := c.link.DisableBreakpoint(bp); err != nil {
					return c.linkFailureLocked("toggle", err)
				}
			}
		}
		c.clearMarkerLocked(file, line)
		return nil
	}

	bp, existed := c.store.Get(file, storeLine)
	if existed {
		c.store.Enable(bp)
		if c.link != nil {
			if err := c.link.EnableBreakpoint(bp); err != nil {
				return c.linkFailureLocked("toggle", err)
			}
		}
	} else {
		bp = c.store.Create(file, storeLine)
		if c.link != nil {
			if err := c.link.SetBreakpoint(file, storeLine); err != nil {
				return c.linkFailureLocked("toggle", err)
			}
		}
	}
	c.setMarkerLocked(file, line)
	return nil
}

// HandleEvent routes one link event. Events are processed in arrival order
// under the controller mutex; no variant may panic the controller.
func (c *Controller) HandleEvent(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Debug("event %s in phase %s", ev.Kind(), c.phase)

	switch ev := ev.(type) {
	case BootstrapEvent:
		c.handleBootstrapLocked()
	case LineEvent:
		c.handleLineLocked(ev)
	case StackEvent:
		// An empty snapshot carries nothing to show and must not remove
		// the inspector.
		if c.phase.active() {
			if locals := ev.Stack.TopLocals(); locals != nil {
				c.cfg.Sink.UpdateInspector(locals)
			}
		}
	case BreakpointEnableEvent:
		c.handleBreakpointEnableLocked(ev.Breakpoint)
	case BreakpointDisableEvent:
		c.handleBreakpointDisableLocked(ev.Breakpoint)
	case InfoEvent:
		c.cfg.Sink.ShowStatus(fmt.Sprintf("Debugger info: %s", ev.Message))
	case WarningEvent:
		c.cfg.Sink.ShowStatus(fmt.Sprintf("Debugger warning: %s", ev.Message))
	case ErrorEvent:
		c.cfg.Sink.ShowStatus(fmt.Sprintf("Debugger error: %s", ev.Message))
	case PostmortemEvent:
		// Must never crash and never vanish silently. Recovery beyond the
		// diagnostic record is a future escalation policy.
		c.log.Error("debugger postmortem: %s", ev.Context)
		c.cfg.Sink.ShowStatus("Debugger hit an internal error; session left as-is")
	case BreakpointIgnoreEvent, BreakpointClearEvent, RestartEvent, CallEvent, ReturnEvent, ExceptionEvent:
		// Accepted and routed; intentionally inert extension points.
	default:
		c.log.Warn("unhandled event %s", ev.Kind())
	}
}

// handleBootstrapLocked re-applies every enabled breakpoint from every open
// file, then starts the debuggee running.
func (c *Controller) handleBootstrapLocked() {
	if c.phase != PhaseStarting {
		c.log.Warn("bootstrap event in phase %s", c.phase)
		return
	}

	for _, file := range c.cfg.Workspace.OpenFiles() {
		for line, bp := range c.store.AllFor(file) {
			if !bp.Enabled {
				continue
			}
			if err := c.link.SetBreakpoint(file, line); err != nil {
				_ = c.linkFailureLocked("bootstrap", err)
				return
			}
		}
	}

	if err := c.link.Run(); err != nil {
		_ = c.linkFailureLocked("bootstrap", err)
		return
	}

	c.phase = PhaseRunning
	c.applyActionsLocked()
}

// handleLineLocked pauses the session at the reported position.
func (c *Controller) handleLineLocked(ev LineEvent) {
	if !c.phase.active() || c.phase == PhaseFinished {
		c.log.Debug("line event ignored in phase %s", c.phase)
		return
	}

	c.phase = PhasePaused
	c.cfg.Sink.MoveSelection(ev.File, ev.Line-1)
	c.applyActionsLocked()
}

// handleBreakpointEnableLocked mirrors an enable event into store and
// markers. The event is authoritative even when unsolicited.
func (c *Controller) handleBreakpointEnableLocked(bp Breakpoint) {
	stored := c.store.Create(bp.File, bp.Line)
	c.store.Enable(stored)
	c.setMarkerLocked(bp.File, bp.Line-1)
}

// handleBreakpointDisableLocked mirrors a disable event into store and
// markers. The marker is removed regardless of who initiated the disable.
func (c *Controller) handleBreakpointDisableLocked(bp Breakpoint) {
	if stored, ok := c.store.Get(bp.File, bp.Line); ok {
		c.store.Disable(stored)
	}
	c.clearMarkerLocked(bp.File, bp.Line-1)
}

// watchProcess waits for debuggee exit and runs termination cleanup. A
// handle replaced by Stop is stale and produces no transition.
func (c *Controller) watchProcess(proc ProcessHandle) {
	<-proc.Done()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.proc != proc {
		return
	}

	c.handleTerminationLocked(proc.ExitCode(), proc.ExitStatus())
}

// handleTerminationLocked resynchronizes markers from the store, clears the
// stale execution position, and settles the session in Idle. This is the one
// point where markers are guaranteed fresh against authoritative state.
func (c *Controller) handleTerminationLocked(code int, status string) {
	c.log.Info("debuggee finished: code=%d status=%s", code, status)

	c.phase = PhaseFinished
	c.cfg.Sink.ShowStatus("Your script has finished running.")

	c.markers = make(map[string]map[int]bool)
	for _, file := range c.cfg.Workspace.OpenFiles() {
		c.cfg.Sink.ClearAllMarkers(file)
		c.cfg.Sink.ClearSelection(file)
		for line, bp := range c.store.AllFor(file) {
			if bp.Enabled {
				c.setMarkerLocked(file, line-1)
			}
		}
	}

	for _, name := range SessionActions {
		c.cfg.Sink.EnableAction(name, name == ActionStop)
	}

	c.stopLocked()
}

func (c *Controller) setMarkerLocked(file string, line int) {
	if c.markers[file] == nil {
		c.markers[file] = make(map[int]bool)
	}
	c.markers[file][line] = true
	c.cfg.Sink.SetMarker(file, line)
}

func (c *Controller) clearMarkerLocked(file string, line int) {
	if lines, ok := c.markers[file]; ok {
		delete(lines, line)
		if len(lines) == 0 {
			delete(c.markers, file)
		}
	}
	c.cfg.Sink.ClearMarker(file, line)
}

// applyActionsLocked enables the session actions legal in the current phase.
func (c *Controller) applyActionsLocked() {
	var stop, run, steps bool
	switch c.phase {
	case PhaseIdle:
		// Everything off.
	case PhaseStarting, PhaseRunning:
		stop = true
	case PhasePaused:
		stop, run, steps = true, true, true
	case PhaseFinished:
		stop = true
	}

	c.cfg.Sink.EnableAction(ActionStop, stop)
	c.cfg.Sink.EnableAction(ActionContinue, run)
	c.cfg.Sink.EnableAction(ActionStepOver, steps)
	c.cfg.Sink.EnableAction(ActionStepInto, steps)
	c.cfg.Sink.EnableAction(ActionStepReturn, steps)
}
