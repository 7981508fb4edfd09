// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the main conversation view: the session sidebar, the
// transcript, the input line, and the settings toolbar.
package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/fredbear555/fredbear-tui/internal/access"
	"github.com/fredbear555/fredbear-tui/internal/config"
	"github.com/fredbear555/fredbear-tui/internal/model"
	"github.com/fredbear555/fredbear-tui/internal/session"
	"github.com/fredbear555/fredbear-tui/internal/stream"
	"github.com/fredbear555/fredbear-tui/internal/ui/styles"
)

// SessionUpdatedMsg arrives whenever a fold lands, including mid-stream.
type SessionUpdatedMsg struct {
	ID string
}

// SendFinishedMsg arrives when an in-flight send returns.
type SendFinishedMsg struct {
	SessionID string
	Err       error
}

// LogoutMsg asks the root model to return to the access flow.
type LogoutMsg struct{}

// ConfigReloadedMsg carries a config freshly reloaded from disk.
type ConfigReloadedMsg struct {
	Cfg *config.Config
}

// Model is the conversation view.
type Model struct {
	sessions *session.Manager
	ctrl     *stream.Controller
	settings *SettingsStore
	cfg      *config.Config

	identity string
	tier     access.Tier

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	// updates carries session IDs from the stream controller's fold hook
	// into the bubbletea loop.
	updates chan string

	width  int
	height int
	ready  bool

	// pending holds attachments staged for the next send.
	pending []model.Attachment

	errText       string
	confirmDelete bool
}

// New creates the conversation view. The updates channel must be the one the
// stream controller's fold hook writes to.
func New(sessions *session.Manager, ctrl *stream.Controller, settings *SettingsStore, cfg *config.Config, identity string, tier access.Tier, updates chan string) Model {
	input := textinput.New()
	input.Placeholder = "Message Fredbear555Ai..."
	input.CharLimit = 8192
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = spin.Style.Foreground(styles.Purple)

	return Model{
		sessions: sessions,
		ctrl:     ctrl,
		settings: settings,
		cfg:      cfg,
		identity: identity,
		tier:     tier,
		input:    input,
		spin:     spin,
		updates:  updates,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, waitForUpdate(m.updates))
}

// waitForUpdate blocks on the fold channel and re-arms after every message.
func waitForUpdate(ch chan string) tea.Cmd {
	return func() tea.Msg {
		return SessionUpdatedMsg{ID: <-ch}
	}
}
