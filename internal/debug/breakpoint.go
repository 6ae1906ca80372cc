package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Breakpoint is a user-defined pause point at a specific file and line.
//
// Line numbers are 1-based, matching the debug link. A breakpoint is stable
// across edits only while no session is active; the store never reconciles
// line drift itself.
type Breakpoint struct {
	// File is the source file path.
	File string `json:"file"`

	// Line is the 1-based line number.
	Line int `json:"line"`

	// Enabled indicates whether the debuggee should honor the breakpoint.
	Enabled bool `json:"enabled"`

	// IgnoreCount is the number of hits to skip before pausing.
	// Reserved for the ignore-count protocol extension; currently inert.
	IgnoreCount int `json:"ignoreCount,omitempty"`
}

// Store holds every breakpoint, grouped by file.
//
// The store enforces at most one Breakpoint per (file, line). It is owned by
// the session controller; the UI only ever reads it. Store is safe for
// concurrent use.
type Store struct {
	mu     sync.RWMutex
	byFile map[string]map[int]*Breakpoint
}

// NewStore creates an empty breakpoint store.
func NewStore() *Store {
	return &Store{
		byFile: make(map[string]map[int]*Breakpoint),
	}
}

// Get returns the breakpoint at the given location, if any.
func (s *Store) Get(file string, line int) (*Breakpoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bp, ok := s.byFile[file][line]
	return bp, ok
}

// Create returns the breakpoint at (file, line), creating it if absent.
//
// Toggle logic needs create-or-reuse semantics: an existing breakpoint is
// returned re-enabled rather than duplicated or rejected.
func (s *Store) Create(file string, line int) *Breakpoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bp, ok := s.byFile[file][line]; ok {
		bp.Enabled = true
		return bp
	}

	bp := &Breakpoint{
		File:    file,
		Line:    line,
		Enabled: true,
	}

	if s.byFile[file] == nil {
		s.byFile[file] = make(map[int]*Breakpoint)
	}
	s.byFile[file][line] = bp

	return bp
}

// Enable marks the breakpoint enabled.
func (s *Store) Enable(bp *Breakpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bp.Enabled = true
}

// Disable marks the breakpoint disabled. The record is kept so a later
// toggle re-enables the same breakpoint.
func (s *Store) Disable(bp *Breakpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bp.Enabled = false
}

// AllFor returns a copy of the line-to-breakpoint mapping for a file.
// Used to re-derive UI markers after a session ends.
func (s *Store) AllFor(file string) map[int]*Breakpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[int]*Breakpoint, len(s.byFile[file]))
	for line, bp := range s.byFile[file] {
		result[line] = bp
	}
	return result
}

// Files returns every file path that has breakpoints, sorted.
func (s *Store) Files() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := make([]string, 0, len(s.byFile))
	for file := range s.byFile {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

// Count returns the total number of breakpoints across all files.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, lines := range s.byFile {
		n += len(lines)
	}
	return n
}

// ClearFile removes every breakpoint for a file.
func (s *Store) ClearFile(file string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byFile, file)
}

// Clear removes every breakpoint.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byFile = make(map[string]map[int]*Breakpoint)
}

// persistedStore is the on-disk format for saved breakpoints.
type persistedStore struct {
	Version     int           `json:"version"`
	Breakpoints []*Breakpoint `json:"breakpoints"`
}

// Save persists all breakpoints to the given path as JSON.
// Persistence is an explicit caller responsibility, never automatic.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	bps := make([]*Breakpoint, 0, 16)
	for _, lines := range s.byFile {
		for _, bp := range lines {
			bps = append(bps, bp)
		}
	}
	s.mu.RUnlock()

	sort.Slice(bps, func(i, j int) bool {
		if bps[i].File != bps[j].File {
			return bps[i].File < bps[j].File
		}
		return bps[i].Line < bps[j].Line
	})

	content, err := json.MarshalIndent(persistedStore{Version: 1, Breakpoints: bps}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal breakpoints: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write breakpoints: %w", err)
	}

	return nil
}

// Load replaces the store contents with breakpoints from the given path.
// A missing file is not an error; the store is left empty.
func (s *Store) Load(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read breakpoints: %w", err)
	}

	var data persistedStore
	if err := json.Unmarshal(content, &data); err != nil {
		return fmt.Errorf("unmarshal breakpoints: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byFile = make(map[string]map[int]*Breakpoint)
	for _, bp := range data.Breakpoints {
		if bp.File == "" || bp.Line < 1 {
			continue
		}
		if s.byFile[bp.File] == nil {
			s.byFile[bp.File] = make(map[int]*Breakpoint)
		}
		s.byFile[bp.File][bp.Line] = bp
	}

	return nil
}
