package debug

import (
	"path/filepath"
	"testing"
)

func TestStoreCreateReusesRecord(t *testing.T) {
	s := NewStore()

	bp := s.Create("/tmp/a.py", 10)
	if !bp.Enabled {
		t.Error("new breakpoint not enabled")
	}

	s.Disable(bp)
	again := s.Create("/tmp/a.py", 10)
	if again != bp {
		t.Error("Create made a second record for the same file and line")
	}
	if !again.Enabled {
		t.Error("Create did not re-enable the existing record")
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
}

func TestStoreGet(t *testing.T) {
	s := NewStore()
	s.Create("/tmp/a.py", 3)

	if _, ok := s.Get("/tmp/a.py", 3); !ok {
		t.Error("Get missed an existing breakpoint")
	}
	if _, ok := s.Get("/tmp/a.py", 4); ok {
		t.Error("Get found a breakpoint on the wrong line")
	}
	if _, ok := s.Get("/tmp/b.py", 3); ok {
		t.Error("Get found a breakpoint in the wrong file")
	}
}

func TestStoreEnableDisable(t *testing.T) {
	s := NewStore()
	bp := s.Create("/tmp/a.py", 5)

	s.Disable(bp)
	if got, _ := s.Get("/tmp/a.py", 5); got.Enabled {
		t.Error("breakpoint enabled after Disable")
	}
	s.Enable(bp)
	if got, _ := s.Get("/tmp/a.py", 5); !got.Enabled {
		t.Error("breakpoint disabled after Enable")
	}
}

func TestStoreAllForCopies(t *testing.T) {
	s := NewStore()
	s.Create("/tmp/a.py", 1)
	s.Create("/tmp/a.py", 2)

	all := s.AllFor("/tmp/a.py")
	if len(all) != 2 {
		t.Fatalf("AllFor returned %d entries, want 2", len(all))
	}

	delete(all, 1)
	if s.Count() != 2 {
		t.Error("mutating the AllFor result changed the store")
	}
}

func TestStoreFiles(t *testing.T) {
	s := NewStore()
	s.Create("/tmp/b.py", 1)
	s.Create("/tmp/a.py", 1)
	s.Create("/tmp/a.py", 7)

	files := s.Files()
	if len(files) != 2 || files[0] != "/tmp/a.py" || files[1] != "/tmp/b.py" {
		t.Errorf("Files() = %v, want sorted [/tmp/a.py /tmp/b.py]", files)
	}
}

func TestStoreClearFile(t *testing.T) {
	s := NewStore()
	s.Create("/tmp/a.py", 1)
	s.Create("/tmp/b.py", 1)

	s.ClearFile("/tmp/a.py")
	if s.Count() != 1 {
		t.Errorf("Count() = %d after ClearFile, want 1", s.Count())
	}
	if _, ok := s.Get("/tmp/b.py", 1); !ok {
		t.Error("ClearFile removed another file's breakpoint")
	}

	s.Clear()
	if s.Count() != 0 {
		t.Errorf("Count() = %d after Clear, want 0", s.Count())
	}
}

func TestStoreSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breakpoints.json")

	s := NewStore()
	s.Create("/tmp/a.py", 10)
	bp := s.Create("/tmp/a.py", 20)
	s.Disable(bp)
	s.Create("/tmp/b.py", 1)

	if err := s.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded := NewStore()
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if loaded.Count() != 3 {
		t.Fatalf("Count() = %d after load, want 3", loaded.Count())
	}
	if got, ok := loaded.Get("/tmp/a.py", 20); !ok || got.Enabled {
		t.Errorf("disabled breakpoint after round trip = %+v, ok=%v", got, ok)
	}
	if got, ok := loaded.Get("/tmp/a.py", 10); !ok || !got.Enabled {
		t.Errorf("enabled breakpoint after round trip = %+v, ok=%v", got, ok)
	}
}

func TestStoreLoadMissingFile(t *testing.T) {
	s := NewStore()
	if err := s.Load(filepath.Join(t.TempDir(), "absent.json")); err != nil {
		t.Fatalf("Load() of missing file: %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d, want 0", s.Count())
	}
}
