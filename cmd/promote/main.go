// cmd/promote/main.go
//
// Entry point for the assessment builder. Run it from the project directory
// that should hold the .promote folder.
//
// Flow:
// 1. Initialize .promote and load config
// 2. Start the loopback confirmation bridge (best effort)
// 3. Run the TUI until the user quits

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/promote/internal/bridge"
	"github.com/kingrea/promote/internal/config"
	"github.com/kingrea/promote/internal/logging"
	"github.com/kingrea/promote/internal/tui"
)

func main() {
	projectDir := flag.String("project", "", "path to the project directory (defaults to cwd)")
	compID := flag.Int("comp-id", 0, "company id to use and remember for this project")
	noBridge := flag.Bool("no-bridge", false, "do not start the confirmation bridge")
	flag.Parse()

	project, err := resolveProject(*projectDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving project directory: %v\n", err)
		os.Exit(1)
	}
	if err := config.InitPromoteDir(project); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing .promote directory: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.NewConfig(project)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *compID != 0 {
		if err := cfg.SetCompID(*compID); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving comp id: %v\n", err)
			os.Exit(1)
		}
	}

	registry := bridge.NewRegistry()
	opts := []tui.AppOption{tui.WithRegistry(registry)}
	var server *bridge.Server
	if !*noBridge {
		var bridgeLog *logging.Logger
		server, bridgeLog = startBridge(cfg, registry)
		defer bridgeLog.Close()
		if server != nil {
			opts = append(opts, tui.WithBridgeURL(server.BaseURL()))
		}
	}

	app, err := tui.NewApp(project, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting TUI: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, runErr := p.Run()

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := server.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: bridge shutdown: %v\n", err)
		}
		cancel()
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", runErr)
		os.Exit(1)
	}
}

func resolveProject(dir string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = cwd
	}
	return filepath.Abs(dir)
}

// startBridge returns nil when the bridge is disabled or cannot bind; the
// TUI still works without it, confirmations just aren't served.
func startBridge(cfg *config.Config, registry *bridge.Registry) (*bridge.Server, *logging.Logger) {
	var opts []bridge.Option
	opts = append(opts, bridge.WithRegistry(registry))
	logger, err := logging.New(cfg.BridgeLogPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: bridge log unavailable: %v\n", err)
	} else {
		opts = append(opts, bridge.WithLogger(logger))
	}
	server := bridge.NewServer(bridge.SettingsFromConfig(cfg), opts...)
	if err := server.Start(context.Background()); err != nil {
		if !errors.Is(err, bridge.ErrDisabled) {
			fmt.Fprintf(os.Stderr, "Warning: confirmation bridge not started: %v\n", err)
		}
		return nil, logger
	}
	return server, logger
}
