// Package ui provides the terminal frontend: the host shell that renders
// source, markers and locals, and turns keystrokes into session commands.
package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/stride/internal/app"
	"github.com/dshills/stride/internal/debug"
)

const (
	localsPanelWidth = 30
	gutterWidth      = 6
)

// Frontend renders one script in a terminal and implements the controller's
// Sink and Workspace contracts. All sink lines are 0-based.
//
// Sink methods arrive from controller goroutines; drawing is serialized with
// a mutex, matching how the editor's terminal backend guards tcell.
type Frontend struct {
	screen tcell.Screen
	log    *app.Logger

	mu       sync.Mutex
	doc      *scriptDocument
	lines    []string
	markers  map[int]bool
	selected int // execution position, -1 when none
	cursor   int
	topLine  int
	status   string
	readOnly bool
	actions  map[string]bool
	locals   map[string]string
	hasPanel bool
}

// scriptDocument is a saved-on-disk script; the frontend never edits it, so
// it is never modified.
type scriptDocument struct {
	path string
}

func (d *scriptDocument) Path() string     { return d.path }
func (d *scriptDocument) IsModified() bool { return false }
func (d *scriptDocument) Save() error      { return nil }

// New creates a frontend for the script at path.
func New(path string, logger *app.Logger) (*Frontend, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	if logger == nil {
		logger = app.GetLogger()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}

	return &Frontend{
		screen:   screen,
		log:      logger.WithComponent("ui"),
		doc:      &scriptDocument{path: path},
		lines:    strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n"),
		markers:  make(map[int]bool),
		selected: -1,
		actions:  make(map[string]bool),
	}, nil
}

// Init initializes the terminal screen.
func (f *Frontend) Init() error {
	if err := f.screen.Init(); err != nil {
		return err
	}
	f.draw()
	return nil
}

// Close restores the terminal.
func (f *Frontend) Close() {
	f.screen.Fini()
}

// Workspace contract.

// CurrentDocument returns the script being debugged.
func (f *Frontend) CurrentDocument() (debug.Document, bool) {
	return f.doc, true
}

// OpenFiles returns the single open script.
func (f *Frontend) OpenFiles() []string {
	return []string{f.doc.path}
}

// Sink contract.

// MoveSelection highlights the execution position.
func (f *Frontend) MoveSelection(file string, line int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if file != f.doc.path {
		return
	}
	f.selected = line
	f.cursor = line
	f.scrollTo(line)
	f.draw()
}

// ClearSelection removes the execution position highlight.
func (f *Frontend) ClearSelection(file string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if file != f.doc.path {
		return
	}
	f.selected = -1
	f.draw()
}

// UpdateInspector replaces the locals panel. A nil mapping removes it.
func (f *Frontend) UpdateInspector(locals map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.locals = locals
	f.hasPanel = locals != nil
	f.draw()
}

// SetMarker shows a breakpoint marker.
func (f *Frontend) SetMarker(file string, line int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if file != f.doc.path {
		return
	}
	f.markers[line] = true
	f.draw()
}

// ClearMarker removes a breakpoint marker.
func (f *Frontend) ClearMarker(file string, line int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if file != f.doc.path {
		return
	}
	delete(f.markers, line)
	f.draw()
}

// ClearAllMarkers removes every breakpoint marker.
func (f *Frontend) ClearAllMarkers(file string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if file != f.doc.path {
		return
	}
	f.markers = make(map[int]bool)
	f.draw()
}

// ShowStatus displays a status message.
func (f *Frontend) ShowStatus(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.status = text
	f.draw()
}

// SetReadOnly toggles the read-only indicator.
func (f *Frontend) SetReadOnly(readOnly bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.readOnly = readOnly
	f.draw()
}

// EnableAction records which session actions are currently legal, shown in
// the key help line.
func (f *Frontend) EnableAction(name string, enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.actions[name] = enabled
	f.draw()
}

// Run drives the key loop until the user quits. Commands are forwarded to
// the controller; command errors are already surfaced through the sink, so
// they are only logged here.
func (f *Frontend) Run(ctrl *debug.Controller) {
	for {
		ev := f.screen.PollEvent()
		if ev == nil {
			// Screen finalized out from under the loop.
			ctrl.Stop()
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			f.mu.Lock()
			f.screen.Sync()
			f.draw()
			f.mu.Unlock()
		case *tcell.EventKey:
			if f.handleKey(ev, ctrl) {
				return
			}
		}
	}
}

// handleKey handles one keystroke; returns true to quit.
func (f *Frontend) handleKey(ev *tcell.EventKey, ctrl *debug.Controller) bool {
	switch {
	case ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape || ev.Rune() == 'q':
		ctrl.Stop()
		return true
	case ev.Key() == tcell.KeyF5 || ev.Rune() == 'c':
		if ctrl.Phase() == debug.PhaseIdle {
			if err := ctrl.Start(); err != nil {
				f.log.Warn("start: %v", err)
			}
		} else if err := ctrl.Continue(); err != nil {
			f.log.Debug("continue: %v", err)
		}
	case ev.Key() == tcell.KeyF10 || ev.Rune() == 'n':
		if err := ctrl.StepOver(); err != nil {
			f.log.Debug("step over: %v", err)
		}
	case ev.Key() == tcell.KeyF11 || ev.Rune() == 's':
		if err := ctrl.StepInto(); err != nil {
			f.log.Debug("step into: %v", err)
		}
	case ev.Key() == tcell.KeyF12 || ev.Rune() == 'o':
		if err := ctrl.StepReturn(); err != nil {
			f.log.Debug("step return: %v", err)
		}
	case ev.Rune() == 'b':
		f.mu.Lock()
		line := f.cursor
		f.mu.Unlock()
		if err := ctrl.ToggleBreakpoint(f.doc.path, line); err != nil {
			f.log.Warn("toggle breakpoint: %v", err)
		}
	case ev.Rune() == 'x':
		ctrl.Stop()
	case ev.Key() == tcell.KeyUp || ev.Rune() == 'k':
		f.moveCursor(-1)
	case ev.Key() == tcell.KeyDown || ev.Rune() == 'j':
		f.moveCursor(1)
	}
	return false
}

func (f *Frontend) moveCursor(delta int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cursor += delta
	if f.cursor < 0 {
		f.cursor = 0
	}
	if f.cursor >= len(f.lines) {
		f.cursor = len(f.lines) - 1
	}
	f.scrollTo(f.cursor)
	f.draw()
}

// scrollTo keeps a line inside the source viewport. Caller holds the mutex.
func (f *Frontend) scrollTo(line int) {
	_, height := f.screen.Size()
	visible := height - 2
	if visible < 1 {
		visible = 1
	}
	if line < f.topLine {
		f.topLine = line
	}
	if line >= f.topLine+visible {
		f.topLine = line - visible + 1
	}
}

// draw repaints the whole screen. Caller holds the mutex.
func (f *Frontend) draw() {
	width, height := f.screen.Size()
	f.screen.Clear()

	srcWidth := width
	if f.hasPanel && width > localsPanelWidth+20 {
		srcWidth = width - localsPanelWidth
	}

	base := tcell.StyleDefault
	gutter := base.Foreground(tcell.ColorGray)
	marker := base.Foreground(tcell.ColorRed)
	execLine := base.Background(tcell.ColorDarkBlue).Foreground(tcell.ColorWhite)
	cursorSt := base.Reverse(true)

	for row := 0; row < height-1; row++ {
		line := f.topLine + row
		if line >= len(f.lines) {
			break
		}

		style := base
		if line == f.selected {
			style = execLine
		} else if line == f.cursor {
			style = cursorSt
		}

		gutterStyle := gutter
		if f.markers[line] {
			gutterStyle = marker
		}
		f.drawText(0, row, fmt.Sprintf("%4d", line+1), gutterStyle)
		if f.markers[line] {
			f.screen.SetContent(4, row, '●', nil, marker)
		}
		f.drawClipped(gutterWidth, row, srcWidth-gutterWidth, f.lines[line], style)
	}

	if f.hasPanel && srcWidth < width {
		f.drawLocals(srcWidth, width, height, base)
	}

	f.drawStatusLine(width, height, base)
	f.screen.Show()
}

// drawLocals paints the inspector panel. Caller holds the mutex.
func (f *Frontend) drawLocals(left, width, height int, base tcell.Style) {
	title := base.Bold(true)
	for row := 0; row < height-1; row++ {
		f.drawText(left, row, "│", base.Foreground(tcell.ColorGray))
	}
	f.drawText(left+2, 0, "Locals", title)

	row := 1
	for name, value := range f.locals {
		if row >= height-1 {
			break
		}
		entry := fmt.Sprintf("%s = %s", name, value)
		f.drawClipped(left+2, row, width-left-2, entry, base)
		row++
	}
}

// drawStatusLine paints status and key help on the bottom row. Caller holds
// the mutex.
func (f *Frontend) drawStatusLine(width, height int, base tcell.Style) {
	statusStyle := base.Reverse(true)
	for x := 0; x < width; x++ {
		f.screen.SetContent(x, height-1, ' ', nil, statusStyle)
	}

	mode := ""
	if f.readOnly {
		mode = "[debug] "
	}

	help := f.helpText()
	text := mode + f.status
	f.drawClipped(0, height-1, width-len(help)-1, text, statusStyle)
	f.drawText(width-len(help), height-1, help, statusStyle)
}

// helpText lists the currently enabled actions. Caller holds the mutex.
func (f *Frontend) helpText() string {
	var parts []string
	parts = append(parts, "b:break")
	if f.actions[debug.ActionContinue] {
		parts = append(parts, "c:continue")
	} else {
		parts = append(parts, "c:run")
	}
	if f.actions[debug.ActionStepOver] {
		parts = append(parts, "n:over", "s:into", "o:out")
	}
	if f.actions[debug.ActionStop] {
		parts = append(parts, "x:stop")
	}
	parts = append(parts, "q:quit")
	return strings.Join(parts, "  ")
}

func (f *Frontend) drawText(x, y int, text string, style tcell.Style) {
	for i, r := range text {
		f.screen.SetContent(x+i, y, r, nil, style)
	}
}

func (f *Frontend) drawClipped(x, y, maxWidth int, text string, style tcell.Style) {
	for i, r := range text {
		if i >= maxWidth {
			break
		}
		f.screen.SetContent(x+i, y, r, nil, style)
	}
}
