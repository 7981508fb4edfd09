// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fredbear555/fredbear-tui/internal/access"
	"github.com/fredbear555/fredbear-tui/internal/ui/styles"
)

// View implements tea.Model.
func (m Model) View() string {
	var body string
	switch m.ctrl.Step() {
	case access.StepLogin:
		body = m.viewLogin()
	case access.StepChallenge:
		body = m.viewChallenge()
	case access.StepTierSelection:
		body = m.viewTierSelection()
	case access.StepFreeVerification:
		body = m.viewFreeVerification()
	case access.StepPremiumVerification:
		body = m.viewPremiumVerification()
	case access.StepAuthenticated:
		body = styles.HintText.Render("Signed in. Loading sessions...")
	}

	panel := styles.AuthBox.Render(body)
	if m.width == 0 || m.height == 0 {
		return panel
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}

func (m Model) viewLogin() string {
	var b strings.Builder

	title := "Sign In"
	action := "sign in"
	toggle := "ctrl+s sign up"
	if m.mode == modeSignUp {
		title = "Create Account"
		action = "create account"
		toggle = "ctrl+s sign in"
	}

	b.WriteString(styles.AuthTitle.Render("Fredbear555Ai  ·  " + title))
	b.WriteString("\n\n")
	b.WriteString("Name      " + m.name.View() + "\n")
	b.WriteString("Password  " + m.password.View() + "\n")
	b.WriteString(m.errLine())
	b.WriteString("\n")
	b.WriteString(styles.HintText.Render(fmt.Sprintf("enter %s  ·  tab switch field  ·  %s  ·  ctrl+c quit", action, toggle)))

	return b.String()
}

func (m Model) viewChallenge() string {
	var b strings.Builder

	b.WriteString(styles.AuthTitle.Render("Quick Check"))
	b.WriteString("\n\n")
	b.WriteString("Solve to continue:\n\n")
	b.WriteString("  " + m.ctrl.CurrentChallenge().Question() + " " + m.answer.View() + "\n")
	b.WriteString(m.errLine())
	b.WriteString("\n")
	b.WriteString(styles.HintText.Render("enter submit  ·  esc back"))

	return b.String()
}

func (m Model) viewTierSelection() string {
	var b strings.Builder

	free := "Free\n\nStandard model\nCommunity key"
	premium := "Premium\n\nFull model\nPremium key required"

	freeCard := styles.TierCard.Render(free)
	premiumCard := styles.TierCard.Render(premium)
	if m.tierCursor == 0 {
		freeCard = styles.TierCardSelected.Render(free)
	} else {
		premiumCard = styles.TierCardSelected.Render(premium)
	}

	b.WriteString(styles.AuthTitle.Render("Choose Your Tier"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, freeCard, "  ", premiumCard))
	b.WriteString(m.errLine())
	b.WriteString("\n")
	b.WriteString(styles.HintText.Render("←/→ select  ·  enter confirm"))

	return b.String()
}

func (m Model) viewFreeVerification() string {
	var b strings.Builder

	b.WriteString(styles.AuthTitle.Render("Free Access"))
	b.WriteString("\n\n")
	b.WriteString("Subscribe to the Fredbear555 channel, then confirm below\nto receive your free access key.\n\n")
	if m.issued != "" {
		b.WriteString("Your key: " + styles.StatusBadge.Render(m.issued) + "\n\n")
	}
	b.WriteString("Key  " + m.token.View() + "\n")
	b.WriteString(m.errLine())
	b.WriteString("\n")
	b.WriteString(styles.HintText.Render("ctrl+a confirm subscription  ·  ctrl+g get key  ·  enter verify  ·  esc back"))

	return b.String()
}

func (m Model) viewPremiumVerification() string {
	var b strings.Builder

	b.WriteString(styles.AuthTitle.Render("Premium Access"))
	b.WriteString("\n\n")
	b.WriteString("Enter your premium key.\n\n")
	b.WriteString("Key  " + m.token.View() + "\n")
	b.WriteString(m.errLine())
	b.WriteString("\n")
	b.WriteString(styles.HintText.Render("enter verify  ·  esc back"))

	return b.String()
}

// errLine renders the current error, padded so panels keep their height.
func (m Model) errLine() string {
	if m.errText == "" {
		return "\n"
	}
	return "\n" + styles.ErrorText.Render(m.errText) + "\n"
}
