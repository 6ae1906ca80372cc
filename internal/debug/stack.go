package debug

// Frame is one entry of a call-stack snapshot.
type Frame struct {
	// Name is the function name.
	Name string `json:"name"`

	// File is the source file path.
	File string `json:"file"`

	// Line is the 1-based current line in the source.
	Line int `json:"line"`

	// Locals maps local-variable names to rendered values.
	Locals map[string]string `json:"locals"`
}

// StackSnapshot is an ordered call stack, innermost frame first.
//
// The controller only consumes the innermost frame's locals for live
// inspection; deeper frames are forwarded unmodified.
type StackSnapshot struct {
	Frames []Frame `json:"frames"`
}

// Top returns the innermost frame, or false if the snapshot is empty.
func (s StackSnapshot) Top() (Frame, bool) {
	if len(s.Frames) == 0 {
		return Frame{}, false
	}
	return s.Frames[0], true
}

// TopLocals returns the innermost frame's locals, or nil if the snapshot
// is empty.
func (s StackSnapshot) TopLocals() map[string]string {
	top, ok := s.Top()
	if !ok {
		return nil
	}
	return top.Locals
}

// Depth returns the number of frames in the snapshot.
func (s StackSnapshot) Depth() int {
	return len(s.Frames)
}
