// fredbear TUI - a terminal client for the Fredbear555Ai assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/fredbear555/fredbear-tui/internal/access"
	"github.com/fredbear555/fredbear-tui/internal/cli"
	"github.com/fredbear555/fredbear-tui/internal/config"
	"github.com/fredbear555/fredbear-tui/internal/gemini"
	"github.com/fredbear555/fredbear-tui/internal/logging"
	"github.com/fredbear555/fredbear-tui/internal/ui"
	"github.com/fredbear555/fredbear-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "2.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdSessions:
		cli.HandleSessions(args)
	case cli.CmdConfig:
		cli.HandleConfig(args)
	case cli.CmdAuth:
		cli.HandleAuth(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	}
}

// runTUI starts the full-screen client.
func runTUI(args cli.Args) {
	cfg := cli.MustLoadConfig(args)

	logDir, err := cfg.LogDir()
	if err == nil {
		err = logging.Initialize(logDir, cfg.Logging.Debug)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "fredbear: logging disabled: %v\n", err)
	}
	defer logging.Sync()

	st := cli.MustOpenStore(cfg)
	defer func() {
		if c, ok := st.(interface{ Close() error }); ok {
			_ = c.Close()
		}
	}()

	accessCtrl := access.NewController(st)

	backend, err := gemini.NewClient(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fredbear: %v\n", err)
		fmt.Fprintln(os.Stderr, "set GEMINI_API_KEY or run: fredbear config set backend.api_key <key>")
		os.Exit(1)
	}

	app := ui.NewApp(cfg, st, accessCtrl, backend)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Hot-reload config edits into the running UI.
	if path, pathErr := config.ConfigPath(); pathErr == nil {
		if watcher, watchErr := config.NewWatcher(path, func(next *config.Config) {
			p.Send(chat.ConfigReloadedMsg{Cfg: next})
		}); watchErr == nil {
			if err := watcher.Watch(); err == nil {
				defer watcher.Close()
			}
		}
	}

	final, err := p.Run()
	if err != nil {
		logging.L().Error("tui exited with error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "fredbear: %v\n", err)
		os.Exit(1)
	}

	// Flush pending session writes before the process ends.
	if app, ok := final.(ui.App); ok {
		if err := app.Close(); err != nil {
			logging.L().Warn("session flush on exit failed", zap.Error(err))
		}
	}
}
