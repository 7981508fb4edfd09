// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"strconv"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/fredbear555/fredbear-tui/internal/access"
	"github.com/fredbear555/fredbear-tui/internal/store"
)

func typeKeys(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func press(m Model, key tea.KeyType) (Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: key})
}

// runThroughChallenge signs up a fresh identity and solves the challenge,
// leaving the model at tier selection.
func runThroughChallenge(t *testing.T, ctrl *access.Controller, name string) Model {
	t.Helper()

	m := New(ctrl)
	m, _ = press(m, tea.KeyCtrlS) // sign up mode
	m = typeKeys(m, name)
	m, _ = press(m, tea.KeyTab)
	m = typeKeys(m, "hunter22")
	m, _ = press(m, tea.KeyEnter)
	require.Equal(t, access.StepChallenge, ctrl.Step())

	m = typeKeys(m, strconv.Itoa(ctrl.CurrentChallenge().Answer()))
	m, _ = press(m, tea.KeyEnter)
	require.Equal(t, access.StepTierSelection, ctrl.Step())
	return m
}

func TestFreeFlowEndToEnd(t *testing.T) {
	ctrl := access.NewController(store.NewMemStore())
	m := runThroughChallenge(t, ctrl, "alice")

	// Free is the default card.
	m, _ = press(m, tea.KeyEnter)
	require.Equal(t, access.StepFreeVerification, ctrl.Step())

	// Asking for the key before confirming the subscription fails.
	m, _ = press(m, tea.KeyCtrlG)
	require.NotEmpty(t, m.errText)
	require.Empty(t, m.issued)

	m, _ = press(m, tea.KeyCtrlA)
	m, _ = press(m, tea.KeyCtrlG)
	require.NotEmpty(t, m.issued)
	require.Equal(t, m.issued, m.token.Value())

	_, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	msg, ok := cmd().(AuthenticatedMsg)
	require.True(t, ok, "expected AuthenticatedMsg, got %T", cmd())
	require.Equal(t, "alice", msg.Identity)
	require.Equal(t, access.TierFree, msg.Tier)
	require.Equal(t, access.StepAuthenticated, ctrl.Step())
}

func TestPremiumFlowEndToEnd(t *testing.T) {
	ctrl := access.NewController(store.NewMemStore())
	m := runThroughChallenge(t, ctrl, "bob")

	m, _ = press(m, tea.KeyRight)
	m, _ = press(m, tea.KeyEnter)
	require.Equal(t, access.StepPremiumVerification, ctrl.Step())

	m = typeKeys(m, "aiiscoked")
	_, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	msg, ok := cmd().(AuthenticatedMsg)
	require.True(t, ok)
	require.Equal(t, access.TierPremium, msg.Tier)
}

func TestWrongChallengeAnswerStays(t *testing.T) {
	ctrl := access.NewController(store.NewMemStore())

	m := New(ctrl)
	m, _ = press(m, tea.KeyCtrlS)
	m = typeKeys(m, "carol")
	m, _ = press(m, tea.KeyTab)
	m = typeKeys(m, "hunter22")
	m, _ = press(m, tea.KeyEnter)

	// Answers are at most 100, so this is always wrong.
	m = typeKeys(m, "9999")
	m, _ = press(m, tea.KeyEnter)
	require.Equal(t, access.StepChallenge, ctrl.Step())
	require.NotEmpty(t, m.errText)

	// The regenerated challenge is solvable.
	m = typeKeys(m, strconv.Itoa(ctrl.CurrentChallenge().Answer()))
	m, _ = press(m, tea.KeyEnter)
	require.Equal(t, access.StepTierSelection, ctrl.Step())
}

func TestSignInWrongPasswordShowsError(t *testing.T) {
	st := store.NewMemStore()
	setup := access.NewController(st)
	require.NoError(t, setup.SignUp("dave", "right-password"))
	require.NoError(t, setup.Logout())

	ctrl := access.NewController(st)
	m := New(ctrl)
	m = typeKeys(m, "dave")
	m, _ = press(m, tea.KeyTab)
	m = typeKeys(m, "wrong-password")
	m, _ = press(m, tea.KeyEnter)

	require.Equal(t, access.StepLogin, ctrl.Step())
	require.Equal(t, "Wrong password.", m.errText)
}

func TestEscWalksBack(t *testing.T) {
	ctrl := access.NewController(store.NewMemStore())
	m := runThroughChallenge(t, ctrl, "erin")

	m, _ = press(m, tea.KeyEnter) // free verification
	m, _ = press(m, tea.KeyEsc)
	require.Equal(t, access.StepTierSelection, ctrl.Step())

	// Tier selection is the floor once the challenge is passed.
	_, _ = press(m, tea.KeyEsc)
	require.Equal(t, access.StepTierSelection, ctrl.Step())
}

func TestEscFromChallengeReturnsToLogin(t *testing.T) {
	ctrl := access.NewController(store.NewMemStore())

	m := New(ctrl)
	m, _ = press(m, tea.KeyCtrlS)
	m = typeKeys(m, "gaster")
	m, _ = press(m, tea.KeyTab)
	m = typeKeys(m, "hunter22")
	m, _ = press(m, tea.KeyEnter)
	require.Equal(t, access.StepChallenge, ctrl.Step())

	_, _ = press(m, tea.KeyEsc)
	require.Equal(t, access.StepLogin, ctrl.Step())
}

func TestDoneAfterResume(t *testing.T) {
	st := store.NewMemStore()
	first := access.NewController(st)
	require.NoError(t, first.SignUp("frank", "hunter22"))
	require.NoError(t, first.SubmitChallenge(first.CurrentChallenge().Answer()))
	require.NoError(t, first.SelectTier(access.TierPremium))
	require.NoError(t, first.VerifyPremium("kingasgore"))

	resumed := access.NewController(st)
	m := New(resumed)
	require.True(t, m.Done())
}
