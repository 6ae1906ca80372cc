package debug

import (
	"errors"
	"fmt"
)

// Session errors.
var (
	// ErrNoActiveDocument indicates a session start was requested with no
	// document open and nothing nameable to save.
	ErrNoActiveDocument = errors.New("no active document")

	// ErrLinkClosed indicates a request was issued while the debug link is
	// absent or closed.
	ErrLinkClosed = errors.New("debug link closed")

	// ErrInvalidTransition indicates a command was issued in a session phase
	// that forbids it.
	ErrInvalidTransition = errors.New("invalid session phase transition")

	// ErrLaunchFailed indicates the debuggee process could not be spawned.
	ErrLaunchFailed = errors.New("debuggee launch failed")
)

// SessionError wraps an error with the operation and session phase in which
// it occurred.
type SessionError struct {
	Op    string // Operation name (e.g., "start", "step_over", "toggle")
	Phase Phase  // Session phase when the error occurred
	Err   error  // Underlying error
}

// NewSessionError creates a new SessionError.
func NewSessionError(op string, phase Phase, err error) *SessionError {
	return &SessionError{Op: op, Phase: phase, Err: err}
}

func (e *SessionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s in phase %s: %v", e.Op, e.Phase, e.Err)
	}
	return fmt.Sprintf("%s in phase %s", e.Op, e.Phase)
}

func (e *SessionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is implements errors.Is for SessionError.
// Matches both the wrapper itself and the wrapped error.
func (e *SessionError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*SessionError); ok {
		return e == t
	}
	return errors.Is(e.Err, target)
}
