package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Interpreter != "python3" {
		t.Errorf("Interpreter = %q", cfg.Interpreter)
	}
	if cfg.Transport != TransportTCP {
		t.Errorf("Transport = %q", cfg.Transport)
	}
	if cfg.Address() != "localhost:31415" {
		t.Errorf("Address() = %q", cfg.Address())
	}
	if cfg.WebSocketURL() != "ws://localhost:31415/debug" {
		t.Errorf("WebSocketURL() = %q", cfg.WebSocketURL())
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() of missing file: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
interpreter: /usr/bin/python3.12
port: 40000
transport: websocket
connect_timeout: 3s
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Interpreter != "/usr/bin/python3.12" {
		t.Errorf("Interpreter = %q", cfg.Interpreter)
	}
	if cfg.Port != 40000 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.Transport != TransportWebSocket {
		t.Errorf("Transport = %q", cfg.Transport)
	}
	if cfg.ConnectTimeout != 3*time.Second {
		t.Errorf("ConnectTimeout = %s", cfg.ConnectTimeout)
	}
	// Untouched keys keep their defaults.
	if cfg.RunnerModule != "stride_runner" {
		t.Errorf("RunnerModule = %q", cfg.RunnerModule)
	}
	if cfg.StopTimeout != 5*time.Second {
		t.Errorf("StopTimeout = %s", cfg.StopTimeout)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", ":\n  - ["},
		{"port out of range", "port: 70000"},
		{"unknown transport", "transport: carrier-pigeon"},
		{"empty interpreter", `interpreter: ""`},
		{"negative timeout", "connect_timeout: -1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() accepted a bad config")
			}
		})
	}
}
