// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package access

import (
	"fmt"
	"math/rand/v2"
)

// =============================================================================
// VERIFICATION CHALLENGE
// =============================================================================

// Challenge is a small arithmetic puzzle shown between login and tier
// selection. Operands are 1..10; the operator is addition or multiplication.
type Challenge struct {
	A  int
	B  int
	Op ChallengeOp
}

// ChallengeOp is the challenge operator.
type ChallengeOp string

const (
	OpAdd      ChallengeOp = "+"
	OpMultiply ChallengeOp = "*"
)

// NewChallenge generates a fresh puzzle.
func NewChallenge() Challenge {
	c := Challenge{
		A:  rand.IntN(10) + 1,
		B:  rand.IntN(10) + 1,
		Op: OpAdd,
	}
	if rand.IntN(2) == 1 {
		c.Op = OpMultiply
	}
	return c
}

// Answer returns the expected solution.
func (c Challenge) Answer() int {
	if c.Op == OpMultiply {
		return c.A * c.B
	}
	return c.A + c.B
}

// Question renders the puzzle for display.
func (c Challenge) Question() string {
	return fmt.Sprintf("%d %s %d = ?", c.A, c.Op, c.B)
}
