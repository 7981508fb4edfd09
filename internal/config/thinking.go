// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// THINKING MODE
// =============================================================================

// ThinkingMode controls how much internal reasoning the backend spends on a
// turn. Exactly one mode is active at a time; modes are mutually exclusive by
// construction rather than by a pair of booleans.
type ThinkingMode struct {
	Kind   ThinkingKind
	Budget int32 // only meaningful for ThinkingBudget
}

// ThinkingKind enumerates the thinking presets.
type ThinkingKind string

const (
	// ThinkingAuto leaves reasoning depth up to the backend.
	ThinkingAuto ThinkingKind = "auto"

	// ThinkingFast disables extended reasoning and asks for brevity.
	ThinkingFast ThinkingKind = "fast"

	// ThinkingDeep requests the deep reasoning budget.
	ThinkingDeep ThinkingKind = "deep"

	// ThinkingBudget requests an explicit token budget.
	ThinkingBudget ThinkingKind = "budget"
)

const (
	// MaxThinkingBudget caps explicit reasoning budgets.
	MaxThinkingBudget int32 = 16384

	// DeepThinkingBudget is the budget used by the deep preset.
	DeepThinkingBudget int32 = 16000
)

// ParseThinkingMode parses "auto", "fast", "deep", or "budget:<n>".
func ParseThinkingMode(s string) (ThinkingMode, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "" || s == string(ThinkingAuto):
		return ThinkingMode{Kind: ThinkingAuto}, nil
	case s == string(ThinkingFast):
		return ThinkingMode{Kind: ThinkingFast}, nil
	case s == string(ThinkingDeep):
		return ThinkingMode{Kind: ThinkingDeep}, nil
	case strings.HasPrefix(s, "budget:"):
		n, err := strconv.ParseInt(strings.TrimPrefix(s, "budget:"), 10, 32)
		if err != nil || n < 0 {
			return ThinkingMode{}, fmt.Errorf("invalid thinking budget in %q", s)
		}
		budget := int32(n)
		if budget > MaxThinkingBudget {
			budget = MaxThinkingBudget
		}
		return ThinkingMode{Kind: ThinkingBudget, Budget: budget}, nil
	default:
		return ThinkingMode{}, fmt.Errorf("unknown thinking mode %q", s)
	}
}

// String renders the mode in the form ParseThinkingMode accepts.
func (m ThinkingMode) String() string {
	if m.Kind == ThinkingBudget {
		return fmt.Sprintf("budget:%d", m.Budget)
	}
	if m.Kind == "" {
		return string(ThinkingAuto)
	}
	return string(m.Kind)
}

// EffectiveBudget resolves the mode to a concrete budget. The second return
// is false for auto, where the backend chooses.
func (m ThinkingMode) EffectiveBudget() (int32, bool) {
	switch m.Kind {
	case ThinkingFast:
		return 0, true
	case ThinkingDeep:
		return DeepThinkingBudget, true
	case ThinkingBudget:
		if m.Budget > MaxThinkingBudget {
			return MaxThinkingBudget, true
		}
		return m.Budget, true
	default:
		return 0, false
	}
}

// MarshalText implements encoding.TextMarshaler so the mode round-trips
// through TOML as a single string.
func (m ThinkingMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ThinkingMode) UnmarshalText(text []byte) error {
	parsed, err := ParseThinkingMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
