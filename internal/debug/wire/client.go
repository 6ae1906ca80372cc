package wire

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/stride/internal/app"
	"github.com/dshills/stride/internal/debug"
)

// Client is the controller-facing end of the debug link.
//
// Outbound requests are fire-and-forget. A receive loop decodes inbound
// frames into debug events and hands each one, in arrival order, to the
// single registered consumer. Client implements debug.Link.
type Client struct {
	transport Transport
	consume   func(debug.Event)
	log       *app.Logger

	seq       int64
	done      chan struct{}
	closeOnce sync.Once
	err       error
	errMu     sync.RWMutex
}

// NewClient creates a client over the given transport and starts receiving.
// Every decoded event is delivered to consume from the receive goroutine.
func NewClient(transport Transport, consume func(debug.Event), logger *app.Logger) *Client {
	if logger == nil {
		logger = app.GetLogger()
	}
	c := &Client{
		transport: transport,
		consume:   consume,
		log:       logger.WithComponent("link"),
		done:      make(chan struct{}),
	}
	go c.receiveLoop()
	return c
}

// Close shuts down the client and the underlying transport.
// Safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.transport.Close()
	})
	return err
}

// Err returns any error that ended the receive loop.
func (c *Client) Err() error {
	c.errMu.RLock()
	defer c.errMu.RUnlock()
	return c.err
}

// receiveLoop decodes inbound frames until the transport fails or the
// client closes. Transport failure after process exit is routine; the
// controller learns about termination from the process handle, not from
// this loop.
func (c *Client) receiveLoop() {
	for {
		content, err := c.transport.Receive()
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}

			c.errMu.Lock()
			c.err = err
			c.errMu.Unlock()

			c.log.Debug("receive loop ended: %v", err)
			return
		}

		select {
		case <-c.done:
			return
		default:
		}

		ev, ok := decodeEvent(content)
		if !ok {
			c.log.Warn("discarding non-event frame: %.120s", content)
			continue
		}
		c.consume(ev)
	}
}

// send builds and sends one fire-and-forget request frame.
func (c *Client) send(command string, args map[string]any) error {
	select {
	case <-c.done:
		return fmt.Errorf("%w: %s", debug.ErrLinkClosed, command)
	default:
	}

	msg := []byte(`{}`)
	msg, _ = sjson.SetBytes(msg, "type", "request")
	msg, _ = sjson.SetBytes(msg, "seq", atomic.AddInt64(&c.seq, 1))
	msg, _ = sjson.SetBytes(msg, "command", command)
	for key, value := range args {
		var err error
		msg, err = sjson.SetBytes(msg, "arguments."+key, value)
		if err != nil {
			return fmt.Errorf("build %s request: %w", command, err)
		}
	}

	if err := c.transport.Send(msg); err != nil {
		return fmt.Errorf("%w: send %s: %v", debug.ErrLinkClosed, command, err)
	}

	c.log.Debug("sent %s", command)
	return nil
}

// Run resumes execution.
func (c *Client) Run() error {
	return c.send("run", nil)
}

// StepOver executes the current line without descending into calls.
func (c *Client) StepOver() error {
	return c.send("step_over", nil)
}

// StepInto descends into the call on the current line.
func (c *Client) StepInto() error {
	return c.send("step_into", nil)
}

// StepReturn runs until the current function returns.
func (c *Client) StepReturn() error {
	return c.send("step_return", nil)
}

// SetBreakpoint creates a breakpoint at a 1-based line.
func (c *Client) SetBreakpoint(file string, line int) error {
	return c.send("set_breakpoint", map[string]any{"file": file, "line": line})
}

// ClearBreakpoint removes a breakpoint from the debuggee.
func (c *Client) ClearBreakpoint(bp *debug.Breakpoint) error {
	return c.send("clear_breakpoint", map[string]any{"file": bp.File, "line": bp.Line})
}

// EnableBreakpoint re-enables an existing breakpoint.
func (c *Client) EnableBreakpoint(bp *debug.Breakpoint) error {
	return c.send("enable_breakpoint", map[string]any{"file": bp.File, "line": bp.Line})
}

// DisableBreakpoint disables an existing breakpoint.
func (c *Client) DisableBreakpoint(bp *debug.Breakpoint) error {
	return c.send("disable_breakpoint", map[string]any{"file": bp.File, "line": bp.Line})
}

// decodeEvent decodes one inbound frame into a debug event. Frames that are
// not events report false; unknown event names surface as an ErrorEvent so
// nothing inbound vanishes silently.
func decodeEvent(content []byte) (debug.Event, bool) {
	if gjson.GetBytes(content, "type").String() != "event" {
		return nil, false
	}

	name := gjson.GetBytes(content, "event").String()
	body := gjson.GetBytes(content, "body")

	switch name {
	case "bootstrap":
		return debug.BootstrapEvent{}, true
	case "line":
		return debug.LineEvent{
			File: body.Get("file").String(),
			Line: int(body.Get("line").Int()),
		}, true
	case "stack":
		return debug.StackEvent{Stack: decodeStack(body)}, true
	case "breakpoint_enable":
		return debug.BreakpointEnableEvent{Breakpoint: decodeBreakpoint(body)}, true
	case "breakpoint_disable":
		return debug.BreakpointDisableEvent{Breakpoint: decodeBreakpoint(body)}, true
	case "breakpoint_ignore":
		return debug.BreakpointIgnoreEvent{
			Breakpoint: decodeBreakpoint(body),
			Count:      int(body.Get("count").Int()),
		}, true
	case "breakpoint_clear":
		return debug.BreakpointClearEvent{Breakpoint: decodeBreakpoint(body)}, true
	case "info":
		return debug.InfoEvent{Message: body.Get("message").String()}, true
	case "warning":
		return debug.WarningEvent{Message: body.Get("message").String()}, true
	case "error":
		return debug.ErrorEvent{Message: body.Get("message").String()}, true
	case "postmortem":
		return debug.PostmortemEvent{Context: body.Get("context").String()}, true
	case "restart":
		return debug.RestartEvent{}, true
	case "call":
		var args []string
		for _, arg := range body.Get("args").Array() {
			args = append(args, arg.String())
		}
		return debug.CallEvent{Args: args}, true
	case "return":
		return debug.ReturnEvent{Value: body.Get("value").String()}, true
	case "exception":
		return debug.ExceptionEvent{
			Name:  body.Get("name").String(),
			Value: body.Get("value").String(),
		}, true
	default:
		return debug.ErrorEvent{Message: fmt.Sprintf("unknown link event %q", name)}, true
	}
}

// decodeBreakpoint decodes a breakpoint body. Lines are 1-based on the wire.
func decodeBreakpoint(body gjson.Result) debug.Breakpoint {
	return debug.Breakpoint{
		File:        body.Get("file").String(),
		Line:        int(body.Get("line").Int()),
		Enabled:     body.Get("enabled").Bool(),
		IgnoreCount: int(body.Get("ignoreCount").Int()),
	}
}

// decodeStack decodes a stack body, innermost frame first.
func decodeStack(body gjson.Result) debug.StackSnapshot {
	var snapshot debug.StackSnapshot
	body.Get("frames").ForEach(func(_, frame gjson.Result) bool {
		locals := make(map[string]string)
		frame.Get("locals").ForEach(func(key, value gjson.Result) bool {
			locals[key.String()] = value.String()
			return true
		})
		snapshot.Frames = append(snapshot.Frames, debug.Frame{
			Name:   frame.Get("name").String(),
			File:   frame.Get("file").String(),
			Line:   int(frame.Get("line").Int()),
			Locals: locals,
		})
		return true
	})
	return snapshot
}
