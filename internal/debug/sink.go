package debug

// Session action names, used with Sink.EnableAction.
const (
	ActionStop       = "stop"
	ActionContinue   = "run"
	ActionStepOver   = "step-over"
	ActionStepInto   = "step-in"
	ActionStepReturn = "step-out"
)

// SessionActions lists every action the controller manages, in display order.
var SessionActions = []string{
	ActionStop,
	ActionContinue,
	ActionStepOver,
	ActionStepInto,
	ActionStepReturn,
}

// Sink receives UI notifications from the controller.
//
// All line numbers crossing this boundary are 0-based; the controller owns
// the translation from the link's 1-based lines. Implementations hold no
// authoritative session state and must tolerate calls for files they are not
// currently displaying.
type Sink interface {
	// MoveSelection moves the execution-position selection to a line.
	MoveSelection(file string, line int)

	// ClearSelection removes any execution-position selection for a file.
	ClearSelection(file string)

	// UpdateInspector replaces the variable inspector contents.
	// A nil mapping removes the inspector.
	UpdateInspector(locals map[string]string)

	// SetMarker shows a breakpoint marker at a line.
	SetMarker(file string, line int)

	// ClearMarker removes the breakpoint marker at a line.
	ClearMarker(file string, line int)

	// ClearAllMarkers removes every breakpoint marker for a file.
	ClearAllMarkers(file string)

	// ShowStatus displays a transient status message.
	ShowStatus(text string)

	// SetReadOnly toggles read-only mode on the source display.
	SetReadOnly(readOnly bool)

	// EnableAction enables or disables a named session action.
	EnableAction(name string, enabled bool)
}

// Document is a single open source file.
type Document interface {
	// Path returns the file path, or empty if the document was never saved.
	Path() string

	// IsModified reports whether the document has unsaved changes.
	IsModified() bool

	// Save persists the document contents.
	Save() error
}

// Workspace exposes the host's open documents to the controller.
//
// The controller reads through this interface instead of holding widget
// references, so the UI never owns session state.
type Workspace interface {
	// CurrentDocument returns the active document, if any.
	CurrentDocument() (Document, bool)

	// OpenFiles returns the paths of every open document.
	OpenFiles() []string
}
