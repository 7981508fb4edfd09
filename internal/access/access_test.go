// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package access

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fredbear555/fredbear-tui/internal/store"
)

// solve answers the current challenge correctly.
func solve(t *testing.T, c *Controller) {
	t.Helper()
	require.NoError(t, c.SubmitChallenge(c.CurrentChallenge().Answer()))
}

func TestSignUpDuplicate(t *testing.T) {
	s := store.NewMemStore()

	first := NewController(s)
	require.NoError(t, first.SignUp("asriel", "hunter2"))

	second := NewController(store.NewMemStore())
	require.NoError(t, second.SignUp("asriel", "hunter2"))

	// Same name on the same store is rejected.
	dup := NewController(s)
	require.NoError(t, dup.Logout())
	err := dup.SignUp("asriel", "other")
	require.ErrorIs(t, err, ErrDuplicateIdentity)
}

func TestSignUpEmptyFields(t *testing.T) {
	c := NewController(store.NewMemStore())
	require.ErrorIs(t, c.SignUp("", "pw"), ErrEmptyIdentity)
	require.ErrorIs(t, c.SignUp("name", ""), ErrEmptyIdentity)
	require.Equal(t, StepLogin, c.Step())
}

func TestSignInUnknownAndWrongPassword(t *testing.T) {
	s := store.NewMemStore()
	c := NewController(s)

	require.ErrorIs(t, c.SignIn("ghost", "pw"), ErrUnknownIdentity)

	require.NoError(t, c.SignUp("frisk", "correct"))
	require.NoError(t, c.Logout())

	require.ErrorIs(t, c.SignIn("frisk", "wrong"), ErrInvalidCredential)
	require.Equal(t, StepLogin, c.Step())
}

func TestFreeFlowEndToEnd(t *testing.T) {
	c := NewController(store.NewMemStore())

	require.NoError(t, c.SignUp("toriel", "pie"))
	require.Equal(t, StepChallenge, c.Step())

	solve(t, c)
	require.Equal(t, StepTierSelection, c.Step())

	require.NoError(t, c.SelectTier(TierFree))
	require.Equal(t, StepFreeVerification, c.Step())

	// Token issuance requires the acknowledgment first.
	_, err := c.IssueFreeToken()
	require.ErrorIs(t, err, ErrNotAcknowledged)

	require.NoError(t, c.AcknowledgeResource())
	token, err := c.IssueFreeToken()
	require.NoError(t, err)
	require.Equal(t, FreeAccessToken, token)

	require.NoError(t, c.VerifyFree(token))
	require.Equal(t, StepAuthenticated, c.Step())
	require.Equal(t, TierFree, c.Tier())
}

func TestFreeTokenVariants(t *testing.T) {
	tests := []struct {
		token string
		ok    bool
	}{
		{FreeAccessToken, true},
		{"my fredbear key", true},
		{"longenough", true},
		{"short", false},
		{"     ", false},
	}

	for _, tt := range tests {
		c := NewController(store.NewMemStore())
		require.NoError(t, c.SignUp("u", "p"))
		solve(t, c)
		require.NoError(t, c.SelectTier(TierFree))

		err := c.VerifyFree(tt.token)
		if tt.ok {
			require.NoError(t, err, "token %q", tt.token)
		} else {
			require.ErrorIs(t, err, ErrInvalidToken, "token %q", tt.token)
			require.Equal(t, StepFreeVerification, c.Step())
		}
	}
}

func TestPremiumKeyNormalization(t *testing.T) {
	c := NewController(store.NewMemStore())
	require.NoError(t, c.SignUp("sans", "ketchup"))
	solve(t, c)
	require.NoError(t, c.SelectTier(TierPremium))

	// Case and surrounding whitespace are ignored.
	require.NoError(t, c.VerifyPremium("  AIISCOKED  "))
	require.Equal(t, StepAuthenticated, c.Step())
	require.Equal(t, TierPremium, c.Tier())
}

func TestPremiumKeyRejected(t *testing.T) {
	c := NewController(store.NewMemStore())
	require.NoError(t, c.SignUp("papyrus", "spaghetti"))
	solve(t, c)
	require.NoError(t, c.SelectTier(TierPremium))

	require.ErrorIs(t, c.VerifyPremium("totally-real-key"), ErrInvalidToken)
	require.Equal(t, StepPremiumVerification, c.Step())
}

func TestChallengeRegeneratesOnFailure(t *testing.T) {
	c := NewController(store.NewMemStore())
	require.NoError(t, c.SignUp("flowey", "friendliness"))

	for i := 0; i < 2; i++ {
		wrong := c.CurrentChallenge().Answer() + 1
		require.ErrorIs(t, c.SubmitChallenge(wrong), ErrChallengeFailed)
		require.Equal(t, StepChallenge, c.Step())
	}

	// Still solvable after repeated failures.
	solve(t, c)
	require.Equal(t, StepTierSelection, c.Step())
}

func TestResumeAuthenticated(t *testing.T) {
	s := store.NewMemStore()

	c := NewController(s)
	require.NoError(t, c.SignUp("asgore", "tea"))
	solve(t, c)
	require.NoError(t, c.SelectTier(TierPremium))
	require.NoError(t, c.VerifyPremium("kingasgore"))

	// A fresh controller on the same store resumes straight to authenticated.
	resumed := NewController(s)
	require.Equal(t, StepAuthenticated, resumed.Step())
	require.Equal(t, "asgore", resumed.Identity())
	require.Equal(t, TierPremium, resumed.Tier())
}

func TestResumeMidFlow(t *testing.T) {
	s := store.NewMemStore()

	c := NewController(s)
	require.NoError(t, c.SignUp("undyne", "anime"))
	require.Equal(t, StepChallenge, c.Step())

	// Interrupted before verification: resume lands back at the challenge.
	resumed := NewController(s)
	require.Equal(t, StepChallenge, resumed.Step())
	require.Equal(t, "undyne", resumed.Identity())
}

func TestSignInSkipsFlowWhenTierOnRecord(t *testing.T) {
	s := store.NewMemStore()

	c := NewController(s)
	require.NoError(t, c.SignUp("alphys", "mew"))
	solve(t, c)
	require.NoError(t, c.SelectTier(TierFree))
	require.NoError(t, c.VerifyFree(FreeAccessToken))
	require.NoError(t, c.Logout())

	require.NoError(t, c.SignIn("alphys", "mew"))
	require.Equal(t, StepAuthenticated, c.Step())
	require.Equal(t, TierFree, c.Tier())
}

func TestLegacyPlaintextUpgrade(t *testing.T) {
	s := store.NewMemStore()

	// Seed the registry with an old-format entry: bare password string.
	legacy := map[string]string{"oldtimer": "plaintextpw"}
	data, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, s.Set("users", string(data)))

	c := NewController(s)
	require.NoError(t, c.SignIn("oldtimer", "plaintextpw"))
	require.Equal(t, StepChallenge, c.Step())

	// The stored entry is now hashed.
	raw, err := s.Get("users")
	require.NoError(t, err)
	var users map[string]Record
	require.NoError(t, json.Unmarshal([]byte(raw), &users))
	require.True(t, strings.HasPrefix(users["oldtimer"].Password, "$argon2id$"))

	// And the old password still works against the hash.
	require.True(t, verifyPassword("plaintextpw", users["oldtimer"].Password))
}

func TestBackNavigation(t *testing.T) {
	c := NewController(store.NewMemStore())
	require.NoError(t, c.SignUp("mettaton", "legs"))
	solve(t, c)
	require.NoError(t, c.SelectTier(TierPremium))

	require.NoError(t, c.Back())
	require.Equal(t, StepTierSelection, c.Step())

	// The challenge is behind us for good; tier selection is the floor.
	require.NoError(t, c.Back())
	require.Equal(t, StepTierSelection, c.Step())
}

func TestBackFromChallengeReturnsToLogin(t *testing.T) {
	c := NewController(store.NewMemStore())
	require.NoError(t, c.SignUp("burgerpants", "mtt-brand"))
	require.Equal(t, StepChallenge, c.Step())

	require.NoError(t, c.Back())
	require.Equal(t, StepLogin, c.Step())
	require.Empty(t, c.Identity())
}

func TestLogoutClearsResume(t *testing.T) {
	s := store.NewMemStore()

	c := NewController(s)
	require.NoError(t, c.SignUp("napstablook", "ghost"))
	solve(t, c)
	require.NoError(t, c.SelectTier(TierFree))
	require.NoError(t, c.VerifyFree(FreeAccessToken))
	require.NoError(t, c.Logout())

	resumed := NewController(s)
	require.Equal(t, StepLogin, resumed.Step())
}

func TestCorruptRegistryStartsEmpty(t *testing.T) {
	s := store.NewMemStore()
	require.NoError(t, s.Set("users", "{not json"))

	c := NewController(s)
	require.ErrorIs(t, c.SignIn("anyone", "pw"), ErrUnknownIdentity)
	require.NoError(t, c.SignUp("anyone", "pw"))
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := hashPassword("s3cret")
	require.NoError(t, err)
	require.True(t, isHashed(hash))
	require.True(t, verifyPassword("s3cret", hash))
	require.False(t, verifyPassword("wrong", hash))
}
