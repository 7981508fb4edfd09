// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package access

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fredbear555/fredbear-tui/internal/logging"
	"github.com/fredbear555/fredbear-tui/internal/store"
)

// =============================================================================
// FLOW STEPS AND TIERS
// =============================================================================

// Step is the current position in the access flow.
type Step string

const (
	StepLogin               Step = "login"
	StepChallenge           Step = "challenge"
	StepTierSelection       Step = "tier_selection"
	StepFreeVerification    Step = "free_verification"
	StepPremiumVerification Step = "premium_verification"
	StepAuthenticated       Step = "authenticated"
)

// Tier is the verified service tier.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// activeKey is the durable store key holding the active identity record.
const activeKey = "active_user"

// activeRecord is what survives a restart: who was signed in and, if
// verification completed, at which tier.
type activeRecord struct {
	Identity string `json:"identity"`
	Tier     Tier   `json:"tier,omitempty"`
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller drives the access flow. All methods are safe for concurrent use.
type Controller struct {
	mu       sync.Mutex
	store    store.Store
	registry *Registry

	step         Step
	identity     string
	tier         Tier
	challenge    Challenge
	acknowledged bool
}

// NewController creates a controller backed by the given store and resumes
// any persisted flow position.
func NewController(s store.Store) *Controller {
	c := &Controller{
		store:    s,
		registry: LoadRegistry(s),
		step:     StepLogin,
	}
	c.resume()
	return c
}

// resume restores the persisted flow position. A record with a tier lands
// directly in authenticated; a record without one restarts at the challenge,
// since the password was already checked before the record was written.
func (c *Controller) resume() {
	raw, err := c.store.Get(activeKey)
	if err != nil {
		return
	}

	var rec activeRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec.Identity == "" {
		return
	}
	if !c.registry.Exists(rec.Identity) {
		_ = c.store.Remove(activeKey)
		return
	}

	c.identity = rec.Identity
	if rec.Tier != "" {
		c.tier = rec.Tier
		c.step = StepAuthenticated
		logging.L().Info("resumed authenticated identity",
			zap.String("identity", rec.Identity),
			zap.String("tier", string(rec.Tier)))
		return
	}

	c.challenge = NewChallenge()
	c.step = StepChallenge
	logging.L().Info("resumed access flow at challenge",
		zap.String("identity", rec.Identity))
}

// Step returns the current flow step.
func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Identity returns the signed-in identity, empty before login.
func (c *Controller) Identity() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// Tier returns the verified tier, empty before authentication completes.
func (c *Controller) Tier() Tier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tier
}

// =============================================================================
// LOGIN STEP
// =============================================================================

// SignUp registers a new identity and advances to the challenge.
func (c *Controller) SignUp(identity, password string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepLogin {
		return ErrInvalidStep
	}

	identity = strings.TrimSpace(identity)
	if identity == "" || password == "" {
		return ErrEmptyIdentity
	}

	if err := c.registry.Register(identity, password); err != nil {
		return err
	}

	c.identity = identity
	c.challenge = NewChallenge()
	c.step = StepChallenge
	c.persistActiveLocked()

	logging.L().Info("identity registered", zap.String("identity", identity))
	return nil
}

// SignIn authenticates an existing identity. An identity whose tier is
// already on record goes straight to authenticated; otherwise the challenge
// follows.
func (c *Controller) SignIn(identity, password string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepLogin {
		return ErrInvalidStep
	}

	identity = strings.TrimSpace(identity)
	if identity == "" || password == "" {
		return ErrEmptyIdentity
	}

	rec, err := c.registry.Authenticate(identity, password)
	if err != nil {
		logging.L().Warn("login rejected",
			zap.String("identity", identity), zap.Error(err))
		return err
	}

	c.identity = identity
	if rec.Tier != "" {
		c.tier = rec.Tier
		c.step = StepAuthenticated
		c.persistActiveLocked()
		logging.L().Info("login complete, tier on record",
			zap.String("identity", identity),
			zap.String("tier", string(rec.Tier)))
		return nil
	}

	c.challenge = NewChallenge()
	c.step = StepChallenge
	c.persistActiveLocked()
	logging.L().Info("login complete, challenge pending",
		zap.String("identity", identity))
	return nil
}

// =============================================================================
// CHALLENGE STEP
// =============================================================================

// CurrentChallenge returns the pending puzzle.
func (c *Controller) CurrentChallenge() Challenge {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.challenge
}

// SubmitChallenge checks the answer. A wrong answer regenerates the puzzle
// and returns ErrChallengeFailed; the flow stays in the challenge step.
func (c *Controller) SubmitChallenge(answer int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepChallenge {
		return ErrInvalidStep
	}

	if answer != c.challenge.Answer() {
		c.challenge = NewChallenge()
		return ErrChallengeFailed
	}

	c.step = StepTierSelection
	return nil
}

// =============================================================================
// TIER SELECTION AND VERIFICATION
// =============================================================================

// SelectTier moves to the verification step for the chosen tier.
func (c *Controller) SelectTier(tier Tier) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepTierSelection {
		return ErrInvalidStep
	}

	switch tier {
	case TierFree:
		c.acknowledged = false
		c.step = StepFreeVerification
	case TierPremium:
		c.step = StepPremiumVerification
	default:
		return fmt.Errorf("unknown tier %q", tier)
	}
	return nil
}

// AcknowledgeResource records that the user visited the subscription
// resource. Free token issuance requires this.
func (c *Controller) AcknowledgeResource() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepFreeVerification {
		return ErrInvalidStep
	}
	c.acknowledged = true
	return nil
}

// IssueFreeToken hands out the free access key once the resource has been
// acknowledged.
func (c *Controller) IssueFreeToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepFreeVerification {
		return "", ErrInvalidStep
	}
	if !c.acknowledged {
		return "", ErrNotAcknowledged
	}
	return FreeAccessToken, nil
}

// VerifyFree checks a free access key and completes authentication.
func (c *Controller) VerifyFree(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepFreeVerification {
		return ErrInvalidStep
	}
	if !validFreeToken(token) {
		return ErrInvalidToken
	}
	return c.completeLocked(TierFree)
}

// VerifyPremium checks a premium access key and completes authentication.
func (c *Controller) VerifyPremium(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepPremiumVerification {
		return ErrInvalidStep
	}
	if !validPremiumToken(token) {
		logging.L().Warn("premium key rejected", zap.String("identity", c.identity))
		return ErrInvalidToken
	}
	return c.completeLocked(TierPremium)
}

// completeLocked finishes the flow at the given tier and persists it.
func (c *Controller) completeLocked(tier Tier) error {
	c.tier = tier
	c.step = StepAuthenticated
	c.acknowledged = false

	if err := c.registry.SetTier(c.identity, tier); err != nil {
		return err
	}
	c.persistActiveLocked()

	logging.L().Info("access verified",
		zap.String("identity", c.identity),
		zap.String("tier", string(tier)))
	return nil
}

// =============================================================================
// NAVIGATION
// =============================================================================

// Back steps backwards one screen in the flow.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.step {
	case StepFreeVerification, StepPremiumVerification:
		c.acknowledged = false
		c.step = StepTierSelection
	case StepTierSelection:
		// The challenge is already passed; tier selection is the floor of
		// the flow and backing out of it stays put.
	case StepChallenge:
		c.identity = ""
		c.step = StepLogin
		_ = c.store.Remove(activeKey)
	default:
		return ErrInvalidStep
	}
	return nil
}

// Logout clears the active identity and returns to login.
func (c *Controller) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	logging.L().Info("logout", zap.String("identity", c.identity))

	c.identity = ""
	c.tier = ""
	c.acknowledged = false
	c.step = StepLogin

	if err := c.store.Remove(activeKey); err != nil {
		return fmt.Errorf("failed to clear active identity: %w", err)
	}
	return nil
}

// persistActiveLocked writes the resume record. Persistence failures are
// tolerated; the flow continues in memory.
func (c *Controller) persistActiveLocked() {
	rec := activeRecord{Identity: c.identity}
	if c.step == StepAuthenticated {
		rec.Tier = c.tier
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := c.store.Set(activeKey, string(data)); err != nil {
		logging.L().Warn("failed to persist active identity", zap.Error(err))
	}
}
