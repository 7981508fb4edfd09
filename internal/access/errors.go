// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package access

import "errors"

// Sentinel errors for the access flow. Check with errors.Is.
var (
	// ErrDuplicateIdentity is returned when registering a name already taken.
	ErrDuplicateIdentity = errors.New("identity already registered")

	// ErrUnknownIdentity is returned when logging in with an unknown name.
	ErrUnknownIdentity = errors.New("unknown identity")

	// ErrInvalidCredential is returned when the password does not match.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrChallengeFailed is returned for a wrong challenge answer. The
	// challenge is regenerated; the caller stays in the challenge step.
	ErrChallengeFailed = errors.New("challenge answer incorrect")

	// ErrInvalidToken is returned when tier verification rejects a key.
	ErrInvalidToken = errors.New("invalid access token")

	// ErrEmptyIdentity is returned for blank usernames or passwords.
	ErrEmptyIdentity = errors.New("identity and password must not be empty")

	// ErrInvalidStep is returned when an operation is called outside the
	// step it belongs to.
	ErrInvalidStep = errors.New("operation not valid in current step")

	// ErrNotAcknowledged is returned when a free token is requested before
	// the resource acknowledgment.
	ErrNotAcknowledged = errors.New("resource must be acknowledged first")
)
