// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// handlers.go - command handlers for the non-TUI entry points.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/term"

	"github.com/fredbear555/fredbear-tui/internal/access"
	"github.com/fredbear555/fredbear-tui/internal/config"
	"github.com/fredbear555/fredbear-tui/internal/gemini"
	"github.com/fredbear555/fredbear-tui/internal/session"
	"github.com/fredbear555/fredbear-tui/internal/store"
)

// fatal prints an error and exits nonzero.
func fatal(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "fredbear: "+format+"\n", a...)
	os.Exit(1)
}

// MustLoadConfig loads configuration or exits with a readable error.
func MustLoadConfig(args Args) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fatal("config: %v", err)
	}
	if args.Debug {
		cfg.Logging.Debug = true
	}
	return cfg
}

// MustOpenStore opens the configured store backend or exits.
func MustOpenStore(cfg *config.Config) store.Store {
	dataDir, err := cfg.DataDir()
	if err != nil {
		fatal("data dir: %v", err)
	}
	switch cfg.Storage.Backend {
	case "sqlite":
		st, err := store.NewSQLiteStore(filepath.Join(dataDir, "fredbear.db"))
		if err != nil {
			fatal("open sqlite store: %v", err)
		}
		return st
	default:
		st, err := store.NewFileStore(filepath.Join(dataDir, "store"))
		if err != nil {
			fatal("open file store: %v", err)
		}
		return st
	}
}

// closeStore closes backends that hold resources.
func closeStore(st store.Store) {
	if c, ok := st.(interface{ Close() error }); ok {
		_ = c.Close()
	}
}

// requireAuth resumes the persisted access flow and exits unless a verified
// identity is available.
func requireAuth(st store.Store) *access.Controller {
	ctrl := access.NewController(st)
	if ctrl.Step() != access.StepAuthenticated {
		fatal("not signed in; run: fredbear auth login")
	}
	return ctrl
}

// =============================================================================
// ASK
// =============================================================================

// HandleAsk answers one question on stdout without opening the TUI. The reply
// is not saved to any session.
func HandleAsk(args Args) {
	if strings.TrimSpace(args.Query) == "" {
		fatal("ask: no question given")
	}

	cfg := MustLoadConfig(args)
	st := MustOpenStore(cfg)
	defer closeStore(st)

	ctrl := requireAuth(st)

	settings := cfg.Generation
	if args.Mode != "" {
		mode := config.Mode(strings.ToLower(args.Mode))
		valid := false
		for _, m := range config.ValidModes {
			if m == mode {
				valid = true
			}
		}
		if !valid {
			fatal("ask: unknown mode %q", args.Mode)
		}
		settings.Mode = mode
	}

	modelName := args.Model
	if modelName == "" {
		modelName = gemini.ModelForTier(cfg.Backend, ctrl.Tier())
	}

	ctx := context.Background()
	client, err := gemini.NewClient(ctx, cfg)
	if err != nil {
		fatal("backend: %v", err)
	}

	switch settings.Mode {
	case config.ModeImage:
		uri, err := client.GenerateImage(ctx, args.Query)
		if err != nil {
			fatal("image generation: %v", err)
		}
		fmt.Println(uri)

	case config.ModeVideo:
		uri, err := client.GenerateVideo(ctx, args.Query)
		if err != nil {
			fatal("video generation: %v", err)
		}
		fmt.Println(uri)

	default:
		// Stream deltas as they arrive; chunks carry cumulative text.
		printed := 0
		_, err := client.StreamChat(ctx, gemini.ChatRequest{
			Model:    modelName,
			Message:  args.Query,
			Settings: settings,
		}, func(fullText string) {
			if len(fullText) > printed {
				fmt.Print(fullText[printed:])
				printed = len(fullText)
			}
		})
		fmt.Println()
		if err != nil {
			fatal("generation: %v", err)
		}
	}
}

// =============================================================================
// SESSIONS
// =============================================================================

// HandleSessions lists, shows, or deletes saved conversations for the signed
// in identity.
func HandleSessions(args Args) {
	cfg := MustLoadConfig(args)
	st := MustOpenStore(cfg)
	defer closeStore(st)

	ctrl := requireAuth(st)
	mgr := session.NewManager(store.NewNamespaced(st, ctrl.Identity()), 0)
	defer mgr.Close()

	switch args.Subcommand {
	case "", "list":
		for _, s := range mgr.List() {
			marker := " "
			if s.ID == mgr.CurrentID() {
				marker = "*"
			}
			fmt.Printf("%s %s  %-30s  %3d messages  %s\n",
				marker, s.ID, s.Title, len(s.Messages), s.LastModified.Format("2006-01-02 15:04"))
		}

	case "show":
		if len(args.Raw) == 0 {
			fatal("sessions show: missing session id")
		}
		s, err := mgr.Get(args.Raw[0])
		if err != nil {
			fatal("sessions show: %v", err)
		}
		fmt.Printf("%s (%s)\n\n", s.Title, s.ID)
		for _, msg := range s.Messages {
			fmt.Printf("[%s] %s\n%s\n\n", msg.Timestamp.Format("15:04"), msg.Role, msg.Content)
		}

	case "delete":
		if len(args.Raw) == 0 {
			fatal("sessions delete: missing session id")
		}
		if err := mgr.Delete(args.Raw[0]); err != nil {
			fatal("sessions delete: %v", err)
		}
		if err := mgr.Flush(); err != nil {
			fatal("sessions delete: %v", err)
		}
		fmt.Println("deleted")

	default:
		fatal("sessions: unknown subcommand %q (use list, show, delete)", args.Subcommand)
	}
}

// =============================================================================
// CONFIG
// =============================================================================

// HandleConfig shows or edits the configuration file.
func HandleConfig(args Args) {
	switch args.Subcommand {
	case "", "show":
		cfg := MustLoadConfig(args)
		shown := *cfg
		if shown.Backend.APIKey != "" {
			shown.Backend.APIKey = "(set)"
		}
		if err := toml.NewEncoder(os.Stdout).Encode(shown); err != nil {
			fatal("config show: %v", err)
		}

	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			fatal("config path: %v", err)
		}
		fmt.Println(path)

	case "set":
		if args.ConfigKey == "" || args.ConfigVal == "" {
			fatal("config set: usage: fredbear config set <key> <value>")
		}
		cfg := MustLoadConfig(args)
		if err := setConfigValue(cfg, args.ConfigKey, args.ConfigVal); err != nil {
			fatal("config set: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			fatal("config set: %v", err)
		}
		if err := config.Save(cfg); err != nil {
			fatal("config set: %v", err)
		}
		fmt.Printf("%s = %s\n", args.ConfigKey, args.ConfigVal)

	default:
		fatal("config: unknown subcommand %q (use show, path, set)", args.Subcommand)
	}
}

// setConfigValue maps dotted keys to config fields. Only the commonly edited
// fields are settable from the CLI; the rest need the file.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "backend.api_key":
		cfg.Backend.APIKey = value
	case "backend.free_model":
		cfg.Backend.FreeModel = value
	case "backend.premium_model":
		cfg.Backend.PremiumModel = value
	case "backend.requests_per_minute":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("requests_per_minute: %w", err)
		}
		cfg.Backend.RequestsPerMinute = n
	case "generation.mode":
		cfg.Generation.Mode = config.Mode(value)
	case "generation.temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature: %w", err)
		}
		cfg.Generation.Temperature = f
	case "generation.thinking":
		tm, err := config.ParseThinkingMode(value)
		if err != nil {
			return err
		}
		cfg.Generation.Thinking = tm
	case "storage.backend":
		cfg.Storage.Backend = value
	case "ui.theme":
		cfg.UI.Theme = value
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}

// =============================================================================
// AUTH
// =============================================================================

// HandleAuth runs the access flow on plain stdin/stdout for scripted or
// remote use where the TUI is unavailable.
func HandleAuth(args Args) {
	cfg := MustLoadConfig(args)
	st := MustOpenStore(cfg)
	defer closeStore(st)

	ctrl := access.NewController(st)

	switch args.Subcommand {
	case "", "status":
		fmt.Printf("step: %s\n", ctrl.Step())
		if id := ctrl.Identity(); id != "" {
			fmt.Printf("identity: %s\n", id)
		}
		if tier := ctrl.Tier(); tier != "" {
			fmt.Printf("tier: %s\n", tier)
		}

	case "login":
		runLogin(ctrl)

	case "logout":
		if err := ctrl.Logout(); err != nil {
			fatal("logout: %v", err)
		}
		fmt.Println("signed out")

	default:
		fatal("auth: unknown subcommand %q (use login, logout, status)", args.Subcommand)
	}
}

// runLogin walks the whole access flow over the terminal.
func runLogin(ctrl *access.Controller) {
	if ctrl.Step() == access.StepAuthenticated {
		fmt.Printf("already signed in as %s (%s)\n", ctrl.Identity(), ctrl.Tier())
		return
	}

	in := bufio.NewReader(os.Stdin)

	name := promptLine(in, "name: ")
	password := promptPassword("password: ")

	err := ctrl.SignIn(name, password)
	if errors.Is(err, access.ErrUnknownIdentity) {
		if strings.EqualFold(promptLine(in, "no such account; create it? [y/N]: "), "y") {
			err = ctrl.SignUp(name, password)
		}
	}
	if err != nil {
		fatal("login: %v", err)
	}

	for ctrl.Step() == access.StepChallenge {
		answer := promptLine(in, ctrl.CurrentChallenge().Question()+" ")
		n, convErr := strconv.Atoi(answer)
		if convErr != nil {
			fmt.Println("enter a number")
			continue
		}
		if err := ctrl.SubmitChallenge(n); err != nil {
			fmt.Println("wrong answer, new challenge issued")
		}
	}

	if ctrl.Step() == access.StepTierSelection {
		choice := promptLine(in, "tier [free/premium] (free): ")
		tier := access.TierFree
		if strings.EqualFold(choice, "premium") {
			tier = access.TierPremium
		}
		if err := ctrl.SelectTier(tier); err != nil {
			fatal("login: %v", err)
		}
	}

	switch ctrl.Step() {
	case access.StepFreeVerification:
		fmt.Println("free access requires the Fredbear555 channel subscription")
		if !strings.EqualFold(promptLine(in, "confirm you are subscribed [y/N]: "), "y") {
			fatal("login: subscription not confirmed")
		}
		if err := ctrl.AcknowledgeResource(); err != nil {
			fatal("login: %v", err)
		}
		token, err := ctrl.IssueFreeToken()
		if err != nil {
			fatal("login: %v", err)
		}
		fmt.Printf("your access key: %s\n", token)
		key := promptLine(in, "enter access key: ")
		if err := ctrl.VerifyFree(key); err != nil {
			fatal("login: %v", err)
		}

	case access.StepPremiumVerification:
		key := promptPassword("premium key: ")
		if err := ctrl.VerifyPremium(key); err != nil {
			fatal("login: %v", err)
		}
	}

	fmt.Printf("signed in as %s (%s)\n", ctrl.Identity(), ctrl.Tier())
}

func promptLine(in *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		fatal("input closed")
	}
	return strings.TrimSpace(line)
}

// promptPassword reads without echo when stdin is a terminal.
func promptPassword(prompt string) string {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			fatal("read password: %v", err)
		}
		return string(raw)
	}
	in := bufio.NewReader(os.Stdin)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}
