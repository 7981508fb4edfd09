// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package access implements the tiered access flow: identity registration and
// login, the arithmetic verification challenge, tier selection, and free or
// premium credential verification.
//
// The flow is a small state machine:
//
//	login -> challenge -> tier_selection -> free_verification    -> authenticated
//	                                     \-> premium_verification -> authenticated
//
// A returning identity whose tier is already on record skips straight from
// login to authenticated. Progress is persisted so an interrupted flow
// resumes where it left off.
package access
