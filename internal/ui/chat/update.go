// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/fredbear555/fredbear-tui/internal/config"
	"github.com/fredbear555/fredbear-tui/internal/gemini"
	"github.com/fredbear555/fredbear-tui/internal/model"
	"github.com/fredbear555/fredbear-tui/internal/stream"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SessionUpdatedMsg:
		// Re-arm first so folds landing during render are not lost.
		cmds := []tea.Cmd{waitForUpdate(m.updates)}
		if msg.ID == m.sessions.CurrentID() {
			m.refreshTranscript(true)
		}
		return m, tea.Batch(cmds...)

	case SendFinishedMsg:
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.errText = sendErrorText(msg.Err)
		}
		m.refreshTranscript(true)
		return m, nil

	case ConfigReloadedMsg:
		// Layout settings apply immediately; generation settings replace
		// the live toolbar state.
		m.cfg = msg.Cfg
		m.settings.Update(func(g *config.GenerationConfig) {
			*g = msg.Cfg.Generation
		})
		if m.width > 0 {
			return m.resize(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// resize lays out the panes and rebuilds the markdown renderer at the new
// transcript width.
func (m Model) resize(msg tea.WindowSizeMsg) (Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	mainWidth := m.transcriptWidth()
	// Header, input border, input line, status bar.
	mainHeight := m.height - 4
	if mainHeight < 1 {
		mainHeight = 1
	}

	if !m.ready {
		m.viewport = newViewport(mainWidth, mainHeight)
		m.ready = true
	} else {
		m.viewport.Width = mainWidth
		m.viewport.Height = mainHeight
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(mainWidth-4),
	)
	if err == nil {
		m.renderer = renderer
	}

	m.refreshTranscript(false)
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()

	// Any key other than a repeated ctrl+d abandons a pending delete.
	if m.confirmDelete && key != "ctrl+d" {
		m.confirmDelete = false
	}

	switch key {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.errText = ""
		return m, nil

	case "ctrl+l":
		return m, func() tea.Msg { return LogoutMsg{} }

	case "enter":
		return m.submit()

	case "ctrl+n":
		m.sessions.Create()
		m.errText = ""
		m.refreshTranscript(false)
		return m, nil

	case "ctrl+d":
		return m.deleteCurrent()

	case "up", "down":
		return m.moveSelection(key == "up")

	case "tab":
		m.cycleMode()
		return m, nil

	case "ctrl+t":
		m.cycleThinking()
		return m, nil

	case "ctrl+w":
		m.settings.Update(func(g *config.GenerationConfig) {
			g.WebSearch = !g.WebSearch
		})
		return m, nil

	case "ctrl+r":
		m.settings.Update(func(g *config.GenerationConfig) {
			g.DoubleResearch = !g.DoubleResearch
		})
		return m, nil

	case "ctrl+o":
		return m.attachFile()

	case "ctrl+b":
		m.settings.Update(func(g *config.GenerationConfig) {
			g.MakeApp = !g.MakeApp
		})
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// attachFile stages the typed path as an attachment for the next send.
func (m Model) attachFile() (Model, tea.Cmd) {
	path := strings.TrimSpace(m.input.Value())
	if path == "" {
		m.errText = "Type a file path, then ctrl+o to attach it."
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		m.errText = "Attach failed: " + err.Error()
		return m, nil
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	m.pending = append(m.pending, model.Attachment{
		Name:     filepath.Base(path),
		MimeType: mimeType,
		Data:     data,
	})
	m.input.SetValue("")
	m.errText = ""
	return m, nil
}

// submit dispatches the input line as a send on the current session.
func (m Model) submit() (Model, tea.Cmd) {
	id := m.sessions.CurrentID()
	if m.ctrl.IsBusy(id) {
		m.errText = "Still generating. Switch sessions or wait."
		return m, nil
	}

	text := m.input.Value()
	attachments := m.pending
	if strings.TrimSpace(text) == "" && len(attachments) == 0 {
		return m, nil
	}

	m.input.SetValue("")
	m.pending = nil
	m.errText = ""

	ctrl := m.ctrl
	return m, func() tea.Msg {
		err := ctrl.Send(context.Background(), id, text, attachments)
		return SendFinishedMsg{SessionID: id, Err: err}
	}
}

// deleteCurrent removes the current session after a second ctrl+d. Any
// in-flight generation for it is cancelled first so late folds are dropped.
func (m Model) deleteCurrent() (Model, tea.Cmd) {
	if !m.confirmDelete {
		m.confirmDelete = true
		m.errText = "Press ctrl+d again to delete this chat."
		return m, nil
	}
	m.confirmDelete = false
	m.errText = ""

	id := m.sessions.CurrentID()
	m.ctrl.Cancel(id)
	if err := m.sessions.Delete(id); err != nil {
		m.errText = err.Error()
		return m, nil
	}
	m.refreshTranscript(false)
	return m, nil
}

// moveSelection switches to the neighboring session in the sidebar.
func (m Model) moveSelection(up bool) (Model, tea.Cmd) {
	list := m.sessions.List()
	current := m.sessions.CurrentID()

	idx := 0
	for i, s := range list {
		if s.ID == current {
			idx = i
			break
		}
	}
	if up {
		idx--
	} else {
		idx++
	}
	if idx < 0 || idx >= len(list) {
		return m, nil
	}
	if err := m.sessions.Switch(list[idx].ID); err != nil {
		return m, nil
	}
	m.errText = ""
	m.refreshTranscript(false)
	return m, nil
}

// cycleMode steps through the conversation modes in a fixed order.
func (m *Model) cycleMode() {
	m.settings.Update(func(g *config.GenerationConfig) {
		for i, mode := range config.ValidModes {
			if mode == g.Mode {
				g.Mode = config.ValidModes[(i+1)%len(config.ValidModes)]
				return
			}
		}
		g.Mode = config.ModeChat
	})
}

// cycleThinking steps auto -> fast -> deep -> auto. An explicit budget set in
// the config file resets to auto on the first cycle.
func (m *Model) cycleThinking() {
	m.settings.Update(func(g *config.GenerationConfig) {
		switch g.Thinking.Kind {
		case config.ThinkingAuto:
			g.Thinking = config.ThinkingMode{Kind: config.ThinkingFast}
		case config.ThinkingFast:
			g.Thinking = config.ThinkingMode{Kind: config.ThinkingDeep}
		default:
			g.Thinking = config.ThinkingMode{Kind: config.ThinkingAuto}
		}
	})
}

// sendErrorText maps backend failures to a short status line. The transcript
// already carries the interrupt notice.
func sendErrorText(err error) string {
	switch {
	case errors.Is(err, stream.ErrBusy):
		return "Still generating. Wait for the current reply."
	case errors.Is(err, gemini.ErrGenerationTimeout):
		return "Generation timed out."
	case errors.Is(err, gemini.ErrBackendRejected):
		return "The backend rejected the request. Check your API key."
	case errors.Is(err, gemini.ErrBackendUnavailable):
		return "The backend is unreachable. Check your connection."
	case errors.Is(err, stream.ErrEmptyMessage):
		return ""
	default:
		return err.Error()
	}
}
