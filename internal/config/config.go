// Package config loads Stride's configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Transport kinds accepted in the configuration.
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "websocket"
)

// Config holds everything a debug session needs from the environment.
type Config struct {
	// Interpreter is the Python interpreter used to run the debuggee.
	Interpreter string `yaml:"interpreter"`

	// RunnerModule is the debuggee-side runner module, executed as
	// `interpreter -m <module> <host> <port> <script>`.
	RunnerModule string `yaml:"runner_module"`

	// Host is the address the runner listens on.
	Host string `yaml:"host"`

	// Port is the debug link port.
	Port int `yaml:"port"`

	// Transport selects the link transport: "tcp" or "websocket".
	Transport string `yaml:"transport"`

	// ConnectTimeout bounds the wait for the runner to start listening.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// StopTimeout bounds the wait for debuggee exit during stop.
	StopTimeout time.Duration `yaml:"stop_timeout"`

	// LogLevel is the minimum log level: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFile is where logs are written. Empty disables logging, since
	// writing to stderr would corrupt the terminal the frontend owns.
	LogFile string `yaml:"log_file"`

	// BreakpointsPath is where breakpoints persist between runs.
	// Empty disables persistence.
	BreakpointsPath string `yaml:"breakpoints_path"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Interpreter:    "python3",
		RunnerModule:   "stride_runner",
		Host:           "localhost",
		Port:           31415,
		Transport:      TransportTCP,
		ConnectTimeout: 10 * time.Second,
		StopTimeout:    5 * time.Second,
		LogLevel:       "info",
	}
}

// Load reads the configuration file at path, layered over the defaults.
// A missing file is not an error; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration for values no session could run with.
func (c Config) Validate() error {
	if c.Interpreter == "" {
		return fmt.Errorf("interpreter must not be empty")
	}
	if c.RunnerModule == "" {
		return fmt.Errorf("runner_module must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Transport != TransportTCP && c.Transport != TransportWebSocket {
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect_timeout must be positive")
	}
	if c.StopTimeout <= 0 {
		return fmt.Errorf("stop_timeout must be positive")
	}
	return nil
}

// Address returns the host:port the debug link dials.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WebSocketURL returns the URL the websocket transport dials.
func (c Config) WebSocketURL() string {
	return fmt.Sprintf("ws://%s/debug", c.Address())
}
