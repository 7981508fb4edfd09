// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides the terminal UI for the access flow: login, the
// verification challenge, tier selection, and key entry.
package auth

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fredbear555/fredbear-tui/internal/access"
)

// AuthenticatedMsg is emitted when the flow completes. The root model swaps
// to the chat view on receipt.
type AuthenticatedMsg struct {
	Identity string
	Tier     access.Tier
}

// loginMode toggles between signing in and registering.
type loginMode int

const (
	modeSignIn loginMode = iota
	modeSignUp
)

// focusField tracks which login input has focus.
type focusField int

const (
	focusName focusField = iota
	focusPassword
)

// Model is the access flow UI.
type Model struct {
	ctrl *access.Controller

	width  int
	height int

	// Login screen
	mode     loginMode
	focus    focusField
	name     textinput.Model
	password textinput.Model

	// Challenge screen
	answer textinput.Model

	// Tier selection
	tierCursor int // 0 = free, 1 = premium

	// Verification screens
	token  textinput.Model
	issued string // issued free key, shown after acknowledgment

	errText string
}

// New creates the access flow UI over an access controller.
func New(ctrl *access.Controller) Model {
	name := textinput.New()
	name.Placeholder = "username"
	name.CharLimit = 64
	name.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	answer := textinput.New()
	answer.Placeholder = "answer"
	answer.CharLimit = 8

	token := textinput.New()
	token.Placeholder = "access key"
	token.CharLimit = 64

	return Model{
		ctrl:     ctrl,
		name:     name,
		password: password,
		answer:   answer,
		token:    token,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Done reports whether the flow has already completed, as happens when a
// prior authenticated session resumes.
func (m Model) Done() bool {
	return m.ctrl.Step() == access.StepAuthenticated
}

// authenticated builds the completion message.
func (m Model) authenticated() tea.Cmd {
	identity := m.ctrl.Identity()
	tier := m.ctrl.Tier()
	return func() tea.Msg {
		return AuthenticatedMsg{Identity: identity, Tier: tier}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.ctrl.Step() {
		case access.StepLogin:
			return m.updateLogin(msg)
		case access.StepChallenge:
			return m.updateChallenge(msg)
		case access.StepTierSelection:
			return m.updateTierSelection(msg)
		case access.StepFreeVerification:
			return m.updateFreeVerification(msg)
		case access.StepPremiumVerification:
			return m.updatePremiumVerification(msg)
		}
	}

	return m.updateInputs(msg)
}

// updateInputs forwards non-key messages (blink ticks) to the inputs.
func (m Model) updateInputs(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.name, cmd = m.name.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	m.answer, cmd = m.answer.Update(msg)
	cmds = append(cmds, cmd)
	m.token, cmd = m.token.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// =============================================================================
// LOGIN
// =============================================================================

func (m Model) updateLogin(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "tab":
		if m.focus == focusName {
			m.focus = focusPassword
			m.name.Blur()
			return m, m.password.Focus()
		}
		m.focus = focusName
		m.password.Blur()
		return m, m.name.Focus()

	case "ctrl+s":
		if m.mode == modeSignIn {
			m.mode = modeSignUp
		} else {
			m.mode = modeSignIn
		}
		m.errText = ""
		return m, nil

	case "enter":
		return m.submitLogin()
	}

	var cmd tea.Cmd
	if m.focus == focusName {
		m.name, cmd = m.name.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) submitLogin() (Model, tea.Cmd) {
	name := strings.TrimSpace(m.name.Value())
	password := m.password.Value()

	var err error
	if m.mode == modeSignUp {
		err = m.ctrl.SignUp(name, password)
	} else {
		err = m.ctrl.SignIn(name, password)
	}

	if err != nil {
		m.errText = loginErrorText(err)
		return m, nil
	}

	m.errText = ""
	m.password.SetValue("")

	if m.ctrl.Step() == access.StepAuthenticated {
		return m, m.authenticated()
	}
	return m, m.answer.Focus()
}

func loginErrorText(err error) string {
	switch {
	case errors.Is(err, access.ErrDuplicateIdentity):
		return "That name is already taken. Sign in instead?"
	case errors.Is(err, access.ErrUnknownIdentity):
		return "No account with that name. Press ctrl+s to sign up."
	case errors.Is(err, access.ErrInvalidCredential):
		return "Wrong password."
	case errors.Is(err, access.ErrEmptyIdentity):
		return "Enter both a name and a password."
	default:
		return err.Error()
	}
}

// =============================================================================
// CHALLENGE
// =============================================================================

func (m Model) updateChallenge(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		_ = m.ctrl.Back()
		m.errText = ""
		m.answer.SetValue("")
		return m, m.name.Focus()

	case "enter":
		n, err := strconv.Atoi(strings.TrimSpace(m.answer.Value()))
		if err != nil {
			m.errText = "Enter a number."
			return m, nil
		}
		m.answer.SetValue("")
		if err := m.ctrl.SubmitChallenge(n); err != nil {
			m.errText = "Not quite. Try the new one."
			return m, nil
		}
		m.errText = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.answer, cmd = m.answer.Update(msg)
	return m, cmd
}

// =============================================================================
// TIER SELECTION
// =============================================================================

func (m Model) updateTierSelection(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		_ = m.ctrl.Back()
		m.errText = ""
		return m, nil

	case "left", "h", "right", "l", "tab":
		m.tierCursor = 1 - m.tierCursor
		return m, nil

	case "enter":
		tier := access.TierFree
		if m.tierCursor == 1 {
			tier = access.TierPremium
		}
		if err := m.ctrl.SelectTier(tier); err != nil {
			m.errText = err.Error()
			return m, nil
		}
		m.errText = ""
		m.issued = ""
		m.token.SetValue("")
		return m, m.token.Focus()
	}
	return m, nil
}

// =============================================================================
// FREE VERIFICATION
// =============================================================================

func (m Model) updateFreeVerification(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		_ = m.ctrl.Back()
		m.errText = ""
		m.issued = ""
		return m, nil

	case "ctrl+a":
		_ = m.ctrl.AcknowledgeResource()
		m.errText = ""
		return m, nil

	case "ctrl+g":
		token, err := m.ctrl.IssueFreeToken()
		if err != nil {
			m.errText = "Acknowledge the subscription first (ctrl+a)."
			return m, nil
		}
		m.issued = token
		m.token.SetValue(token)
		return m, nil

	case "enter":
		if err := m.ctrl.VerifyFree(m.token.Value()); err != nil {
			m.errText = "That key does not look right."
			return m, nil
		}
		return m, m.authenticated()
	}

	var cmd tea.Cmd
	m.token, cmd = m.token.Update(msg)
	return m, cmd
}

// =============================================================================
// PREMIUM VERIFICATION
// =============================================================================

func (m Model) updatePremiumVerification(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		_ = m.ctrl.Back()
		m.errText = ""
		return m, nil

	case "enter":
		if err := m.ctrl.VerifyPremium(m.token.Value()); err != nil {
			m.errText = "Invalid premium key."
			m.token.SetValue("")
			return m, nil
		}
		return m, m.authenticated()
	}

	var cmd tea.Cmd
	m.token, cmd = m.token.Update(msg)
	return m, cmd
}
