// Package main is the entry point for the stride debugger shell.
package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/stride/internal/app"
	"github.com/dshills/stride/internal/config"
	"github.com/dshills/stride/internal/debug"
	"github.com/dshills/stride/internal/debug/wire"
	"github.com/dshills/stride/internal/process"
	"github.com/dshills/stride/internal/ui"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "stride",
		Short:         "Visual debugger for Python scripts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(), "configuration file")

	root.AddCommand(newDebugCmd(&cfgPath))
	root.AddCommand(newVersionCmd())
	return root
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "stride.yaml"
	}
	return filepath.Join(dir, "stride", "config.yaml")
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stride %s (%s)\n", version, commit)
		},
	}
}

func newDebugCmd(cfgPath *string) *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "debug <script>",
		Short: "Debug a Python script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			script, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			return runDebug(cfg, script)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "debug link host")
	cmd.Flags().IntVar(&port, "port", 0, "debug link port")
	return cmd
}

func runDebug(cfg config.Config, script string) error {
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	app.SetLogger(logger)

	frontend, err := ui.New(script, logger)
	if err != nil {
		return err
	}
	if err := frontend.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer frontend.Close()

	launcher := process.NewLauncher()
	defer launcher.Shutdown(cfg.StopTimeout)

	// The link delivers events before NewController returns a handle, so
	// the consume closure resolves the controller late.
	var ctrl *debug.Controller

	ctrl = debug.NewController(debug.ControllerConfig{
		Workspace: frontend,
		Sink:      frontend,
		Logger:    logger,
		Launch: func(path string) (debug.ProcessHandle, error) {
			cmd := exec.Command(cfg.Interpreter, "-m", cfg.RunnerModule,
				cfg.Host, strconv.Itoa(cfg.Port), path)
			cmd.Dir = filepath.Dir(path)
			runner, err := launcher.Launch(filepath.Base(path), cmd)
			if err != nil {
				return nil, err
			}
			return runner, nil
		},
		OpenLink: func() (debug.Link, error) {
			transport, err := dialTransport(cfg)
			if err != nil {
				return nil, err
			}
			return wire.NewClient(transport, func(ev debug.Event) {
				ctrl.HandleEvent(ev)
			}, logger), nil
		},
		StopTimeout: cfg.StopTimeout,
	})

	if cfg.BreakpointsPath != "" {
		if err := ctrl.Store().Load(cfg.BreakpointsPath); err != nil {
			logger.Warn("load breakpoints: %v", err)
		}
		for _, file := range frontend.OpenFiles() {
			for _, bp := range ctrl.Store().AllFor(file) {
				if bp.Enabled {
					frontend.SetMarker(file, bp.Line-1)
				}
			}
		}
		defer func() {
			if err := ctrl.Store().Save(cfg.BreakpointsPath); err != nil {
				logger.Warn("save breakpoints: %v", err)
			}
		}()
	}

	frontend.Run(ctrl)
	return nil
}

// dialTransport connects to the debuggee runner, retrying until it starts
// listening or the connect timeout elapses.
func dialTransport(cfg config.Config) (wire.Transport, error) {
	deadline := time.Now().Add(cfg.ConnectTimeout)
	var lastErr error
	for {
		var transport wire.Transport
		var err error
		switch cfg.Transport {
		case config.TransportWebSocket:
			transport, err = wire.NewWebSocketTransport(cfg.WebSocketURL())
		default:
			transport, err = wire.NewSocketTransport(cfg.Address())
		}
		if err == nil {
			return transport, nil
		}
		lastErr = err
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("connect to runner: %w", lastErr)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// newLogger builds the process logger. With no log file configured, output
// is discarded so it cannot corrupt the terminal UI.
func newLogger(cfg config.Config) (*app.Logger, func(), error) {
	var output io.Writer = io.Discard
	closeLog := func() {}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		output = f
		closeLog = func() { f.Close() }
	}

	logger := app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(cfg.LogLevel),
		Output: output,
		Prefix: "stride",
	})
	return logger, closeLog, nil
}
