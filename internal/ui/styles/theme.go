// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// SHARED STYLES
// =============================================================================

// Header is the top application bar.
var Header = lipgloss.NewStyle().
	Foreground(Cyan).
	Bold(true).
	Padding(0, 1)

// StatusBar is the bottom bar showing tier, mode, and toggles.
var StatusBar = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Background(SurfaceBright).
	Padding(0, 1)

// StatusBadge highlights an active toggle in the status bar.
var StatusBadge = lipgloss.NewStyle().
	Foreground(Amber).
	Bold(true)

// ErrorText renders inline errors.
var ErrorText = lipgloss.NewStyle().
	Foreground(Rose).
	Bold(true)

// HintText renders keybinding hints and muted helper lines.
var HintText = lipgloss.NewStyle().
	Foreground(TextMuted)

// =============================================================================
// SIDEBAR
// =============================================================================

// Sidebar frames the session list.
var Sidebar = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderRight(true).
	BorderForeground(Overlay).
	Padding(0, 1)

// SidebarTitle heads the session list.
var SidebarTitle = lipgloss.NewStyle().
	Foreground(Purple).
	Bold(true)

// SidebarItem renders an unselected session row.
var SidebarItem = lipgloss.NewStyle().
	Foreground(TextSecondary)

// SidebarSelected renders the active session row.
var SidebarSelected = lipgloss.NewStyle().
	Foreground(Cyan).
	Bold(true)

// SidebarPreview renders the session preview line.
var SidebarPreview = lipgloss.NewStyle().
	Foreground(TextMuted)

// =============================================================================
// MESSAGES
// =============================================================================

// UserBubble frames a user message.
var UserBubble = lipgloss.NewStyle().
	Foreground(UserBubbleFg).
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(UserBubbleBorder).
	Padding(0, 1)

// ModelBubble frames a model message.
var ModelBubble = lipgloss.NewStyle().
	Foreground(ModelBubbleFg).
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(ModelBubbleBorder).
	Padding(0, 1)

// RoleLabel labels the author above a bubble.
var RoleLabel = lipgloss.NewStyle().
	Foreground(TextMuted).
	Bold(true)

// =============================================================================
// INPUT
// =============================================================================

// InputBox frames the message input line.
var InputBox = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderTop(true).
	BorderForeground(Overlay).
	Padding(0, 1)

// =============================================================================
// ACCESS FLOW
// =============================================================================

// AuthBox frames the centered access flow panel.
var AuthBox = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(Purple).
	Padding(1, 3)

// AuthTitle heads each access screen.
var AuthTitle = lipgloss.NewStyle().
	Foreground(Purple).
	Bold(true)

// TierCard frames a selectable tier option.
var TierCard = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(Overlay).
	Padding(0, 2)

// TierCardSelected highlights the focused tier option.
var TierCardSelected = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(Cyan).
	Padding(0, 2).
	Bold(true)
