// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/fredbear555/fredbear-tui/internal/model"
	"github.com/fredbear555/fredbear-tui/internal/ui/styles"
)

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}

// sidebarWidth returns the configured sidebar width, clamped so narrow
// terminals keep a usable transcript.
func (m Model) sidebarWidth() int {
	w := m.cfg.UI.SidebarWidth
	if w <= 0 {
		w = 28
	}
	if m.width > 0 && w > m.width/3 {
		w = m.width / 3
	}
	return w
}

func (m Model) transcriptWidth() int {
	w := m.width - m.sidebarWidth() - 3
	if w < 20 {
		w = 20
	}
	return w
}

// refreshTranscript rebuilds the viewport content from the current session.
func (m *Model) refreshTranscript(gotoBottom bool) {
	if !m.ready {
		return
	}
	current := m.sessions.Current()
	m.viewport.SetContent(m.renderMessages(current.Messages))
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		styles.InputBox.Width(m.transcriptWidth()).Render(m.input.View()),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), main)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatusBar(),
	)
}

func (m Model) renderHeader() string {
	left := styles.Header.Render("Fredbear555Ai")
	right := styles.HintText.Render(fmt.Sprintf("%s (%s)", m.identity, m.tier))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderSidebar lists every session newest first, title over preview.
func (m Model) renderSidebar() string {
	inner := m.sidebarWidth() - 2
	current := m.sessions.CurrentID()

	var b strings.Builder
	b.WriteString(styles.SidebarTitle.Render("Chats"))
	b.WriteString("\n\n")

	for _, s := range m.sessions.List() {
		title := runewidth.Truncate(s.Title, inner, "...")
		if s.ID == current {
			b.WriteString(styles.SidebarSelected.Render("> " + title))
		} else {
			b.WriteString(styles.SidebarItem.Render("  " + title))
		}
		b.WriteString("\n")
		if s.Preview != "" {
			b.WriteString(styles.SidebarPreview.Render("  " + runewidth.Truncate(s.Preview, inner-2, "...")))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.HintText.Render("ctrl+n new\nctrl+d delete\n↑/↓ switch"))

	height := m.height - 3
	if height < 1 {
		height = 1
	}
	return styles.Sidebar.Width(m.sidebarWidth()).Height(height).Render(b.String())
}

// renderMessages renders the transcript. Model turns go through the markdown
// renderer; user turns stay plain.
func (m Model) renderMessages(messages []model.Message) string {
	if len(messages) == 0 {
		return styles.HintText.Render("\n  Start the conversation. Tab cycles modes.")
	}

	width := m.transcriptWidth() - 2
	var parts []string
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleUser:
			label := styles.RoleLabel.Render(m.identity)
			content := msg.Content
			for _, att := range msg.Attachments {
				content += "\n" + styles.HintText.Render("[attached: "+att.Name+"]")
			}
			body := styles.UserBubble.MaxWidth(width).Render(strings.TrimPrefix(content, "\n"))
			parts = append(parts, label+"\n"+body)
		case model.RoleModel:
			label := styles.RoleLabel.Render("Fredbear555Ai")
			content := msg.Content
			if content == "" {
				content = m.spin.View() + " thinking..."
			} else if m.renderer != nil {
				if rendered, err := m.renderer.Render(content); err == nil {
					content = strings.TrimRight(rendered, "\n")
				}
			}
			parts = append(parts, label+"\n"+styles.ModelBubble.MaxWidth(width).Render(content))
		}
	}
	return strings.Join(parts, "\n\n")
}

// renderStatusBar shows tier, mode, thinking depth, and the feature toggles.
func (m Model) renderStatusBar() string {
	gen := m.settings.Get()

	segments := []string{
		"tier:" + string(m.tier),
		"mode:" + string(gen.Mode),
		"think:" + gen.Thinking.String(),
	}
	if gen.WebSearch {
		segments = append(segments, styles.StatusBadge.Render("search"))
	}
	if gen.DoubleResearch {
		segments = append(segments, styles.StatusBadge.Render("research"))
	}
	if gen.MakeApp {
		segments = append(segments, styles.StatusBadge.Render("makeapp"))
	}
	if n := len(m.pending); n > 0 {
		segments = append(segments, styles.StatusBadge.Render(fmt.Sprintf("%d attached", n)))
	}
	if m.ctrl.IsBusy(m.sessions.CurrentID()) {
		segments = append(segments, m.spin.View()+"generating")
	}
	if m.errText != "" {
		segments = append(segments, styles.ErrorText.Render(m.errText))
	}

	bar := strings.Join(segments, "  ")
	return styles.StatusBar.Width(m.width).Render(bar)
}
