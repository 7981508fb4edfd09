// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui hosts the root bubbletea model. It runs the access flow first
// and swaps to the conversation view once a tier is verified.
package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/fredbear555/fredbear-tui/internal/access"
	"github.com/fredbear555/fredbear-tui/internal/config"
	"github.com/fredbear555/fredbear-tui/internal/gemini"
	"github.com/fredbear555/fredbear-tui/internal/logging"
	"github.com/fredbear555/fredbear-tui/internal/session"
	"github.com/fredbear555/fredbear-tui/internal/store"
	"github.com/fredbear555/fredbear-tui/internal/stream"
	"github.com/fredbear555/fredbear-tui/internal/ui/auth"
	"github.com/fredbear555/fredbear-tui/internal/ui/chat"
)

// screen selects which child model owns the terminal.
type screen int

const (
	screenAuth screen = iota
	screenChat
)

// modelSource resolves the backend model for the verified tier. It holds the
// backend config behind a mutex so a config reload reaches sends already
// wired through the stream controller.
type modelSource struct {
	mu      sync.Mutex
	backend config.BackendConfig
	tier    access.Tier
}

func newModelSource(backend config.BackendConfig, tier access.Tier) *modelSource {
	return &modelSource{backend: backend, tier: tier}
}

// Model returns the model name for the current backend config and tier.
func (m *modelSource) Model() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return gemini.ModelForTier(m.backend, m.tier)
}

// SetBackend swaps in a freshly reloaded backend config.
func (m *modelSource) SetBackend(backend config.BackendConfig) {
	m.mu.Lock()
	m.backend = backend
	m.mu.Unlock()
}

// App is the root model.
type App struct {
	cfg      *config.Config
	st       store.Store
	accessFl *access.Controller
	backend  gemini.Backend

	// sessions and models are created on authentication, namespaced to the
	// identity and its verified tier.
	sessions *session.Manager
	models   *modelSource

	screen screen
	auth   auth.Model
	chat   chat.Model

	width  int
	height int
}

// NewApp wires the root model. The session manager is built after the access
// flow completes so each identity gets its own session namespace.
func NewApp(cfg *config.Config, st store.Store, accessFl *access.Controller, backend gemini.Backend) App {
	return App{
		cfg:      cfg,
		st:       st,
		accessFl: accessFl,
		backend:  backend,
		auth:     auth.New(accessFl),
	}
}

// Close flushes any pending session writes. Call after the program exits.
func (a App) Close() error {
	if a.sessions != nil {
		return a.sessions.Close()
	}
	return nil
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.auth.Done() {
		// A prior authenticated session resumed; skip straight to chat.
		return func() tea.Msg {
			return auth.AuthenticatedMsg{Identity: a.accessFl.Identity(), Tier: a.accessFl.Tier()}
		}
	}
	return a.auth.Init()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case auth.AuthenticatedMsg:
		return a.enterChat(msg)

	case chat.LogoutMsg:
		return a.logout()

	case chat.ConfigReloadedMsg:
		a.cfg = msg.Cfg
		if a.models != nil {
			a.models.SetBackend(msg.Cfg.Backend)
		}
	}

	var cmd tea.Cmd
	switch a.screen {
	case screenAuth:
		a.auth, cmd = a.auth.Update(msg)
	case screenChat:
		a.chat, cmd = a.chat.Update(msg)
	}
	return a, cmd
}

// enterChat builds the conversation view for the verified tier.
func (a App) enterChat(msg auth.AuthenticatedMsg) (tea.Model, tea.Cmd) {
	logging.L().Info("access flow complete",
		zap.String("identity", msg.Identity), zap.String("tier", string(msg.Tier)))

	a.sessions = session.NewManager(
		store.NewNamespaced(a.st, msg.Identity), session.DefaultDebounce)

	settings := chat.NewSettingsStore(a.cfg.Generation)
	a.models = newModelSource(a.cfg.Backend, msg.Tier)
	updates := make(chan string, 64)

	ctrl := stream.NewController(a.sessions, a.backend,
		settings.Get,
		a.models.Model,
		stream.WithOnUpdate(func(id string) {
			// Never block a fold on a slow render loop.
			select {
			case updates <- id:
			default:
			}
		}))

	a.chat = chat.New(a.sessions, ctrl, settings, a.cfg, msg.Identity, msg.Tier, updates)
	a.screen = screenChat

	cmds := []tea.Cmd{a.chat.Init()}
	if a.width > 0 {
		resized, cmd := a.chat.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
		a.chat = resized
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

// logout clears the persisted identity and returns to the access flow.
func (a App) logout() (tea.Model, tea.Cmd) {
	if a.sessions != nil {
		if err := a.sessions.Close(); err != nil {
			logging.L().Warn("session flush on logout failed", zap.Error(err))
		}
		a.sessions = nil
	}
	a.models = nil
	if err := a.accessFl.Logout(); err != nil {
		logging.L().Warn("logout failed", zap.Error(err))
	}
	a.auth = auth.New(a.accessFl)
	a.screen = screenAuth

	cmds := []tea.Cmd{a.auth.Init()}
	if a.width > 0 {
		resized, cmd := a.auth.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
		a.auth = resized
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

// View implements tea.Model.
func (a App) View() string {
	if a.screen == screenChat {
		return a.chat.View()
	}
	return a.auth.View()
}
