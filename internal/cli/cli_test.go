// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/fredbear555/fredbear-tui/internal/config"
)

func TestParseDefaultsToTUI(t *testing.T) {
	cmd, _ := parseFrom(nil)
	if cmd != CmdTUI {
		t.Errorf("cmd = %v, want CmdTUI", cmd)
	}
}

func TestParseAsk(t *testing.T) {
	cmd, args := parseFrom([]string{"ask", "what", "is", "go"})
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v, want CmdAsk", cmd)
	}
	if args.Query != "what is go" {
		t.Errorf("Query = %q", args.Query)
	}
}

func TestParseAskFlags(t *testing.T) {
	cmd, args := parseFrom([]string{"ask", "--mode", "math", "-m", "gemini-2.5-pro", "solve", "it"})
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v, want CmdAsk", cmd)
	}
	if args.Mode != "math" {
		t.Errorf("Mode = %q", args.Mode)
	}
	if args.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q", args.Model)
	}
	if args.Query != "solve it" {
		t.Errorf("Query = %q", args.Query)
	}
}

func TestParseAskEqualsForms(t *testing.T) {
	_, args := parseFrom([]string{"ask", "--mode=image", "--model=x", "a cat"})
	if args.Mode != "image" || args.Model != "x" || args.Query != "a cat" {
		t.Errorf("args = %+v", args)
	}
}

func TestParseUnknownCommandBecomesAsk(t *testing.T) {
	cmd, args := parseFrom([]string{"why", "is", "the", "sky", "blue"})
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v, want CmdAsk", cmd)
	}
	if args.Query != "why is the sky blue" {
		t.Errorf("Query = %q", args.Query)
	}
}

func TestParseSessions(t *testing.T) {
	cmd, args := parseFrom([]string{"sessions", "delete", "sess_abc"})
	if cmd != CmdSessions {
		t.Fatalf("cmd = %v, want CmdSessions", cmd)
	}
	if args.Subcommand != "delete" {
		t.Errorf("Subcommand = %q", args.Subcommand)
	}
	if len(args.Raw) != 1 || args.Raw[0] != "sess_abc" {
		t.Errorf("Raw = %v", args.Raw)
	}
}

func TestParseConfigSet(t *testing.T) {
	cmd, args := parseFrom([]string{"config", "set", "generation.mode", "math"})
	if cmd != CmdConfig {
		t.Fatalf("cmd = %v, want CmdConfig", cmd)
	}
	if args.Subcommand != "set" || args.ConfigKey != "generation.mode" || args.ConfigVal != "math" {
		t.Errorf("args = %+v", args)
	}
}

func TestParseAuthShortcuts(t *testing.T) {
	cmd, args := parseFrom([]string{"login"})
	if cmd != CmdAuth || args.Subcommand != "login" {
		t.Errorf("cmd = %v subcommand = %q", cmd, args.Subcommand)
	}
	cmd, args = parseFrom([]string{"auth", "logout"})
	if cmd != CmdAuth || args.Subcommand != "logout" {
		t.Errorf("cmd = %v subcommand = %q", cmd, args.Subcommand)
	}
}

func TestParseGlobalDebug(t *testing.T) {
	cmd, args := parseFrom([]string{"--debug", "sessions"})
	if cmd != CmdSessions {
		t.Fatalf("cmd = %v, want CmdSessions", cmd)
	}
	if !args.Debug {
		t.Error("Debug not set")
	}
}

func TestParseVersionAndHelp(t *testing.T) {
	if cmd, _ := parseFrom([]string{"--version"}); cmd != CmdVersion {
		t.Errorf("--version parsed as %v", cmd)
	}
	if cmd, _ := parseFrom([]string{"help"}); cmd != CmdHelp {
		t.Errorf("help parsed as %v", cmd)
	}
}

func TestSetConfigValue(t *testing.T) {
	cfg := config.Default()

	if err := setConfigValue(cfg, "generation.temperature", "0.4"); err != nil {
		t.Fatalf("set temperature: %v", err)
	}
	if cfg.Generation.Temperature != 0.4 {
		t.Errorf("Temperature = %v", cfg.Generation.Temperature)
	}

	if err := setConfigValue(cfg, "generation.thinking", "budget:2048"); err != nil {
		t.Fatalf("set thinking: %v", err)
	}
	if cfg.Generation.Thinking.Budget != 2048 {
		t.Errorf("Thinking = %+v", cfg.Generation.Thinking)
	}

	if err := setConfigValue(cfg, "bogus.key", "x"); err == nil {
		t.Error("unknown key accepted")
	}
	if err := setConfigValue(cfg, "backend.requests_per_minute", "abc"); err == nil {
		t.Error("non-numeric rpm accepted")
	}
}
