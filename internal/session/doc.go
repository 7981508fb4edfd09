// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the conversation list: creating, switching, and
// deleting sessions, deriving titles and previews, and persisting everything
// through the durable store with debounced writes.
//
// Invariant: the list is never empty. Deleting the last session replaces it
// with a fresh one, so the UI always has a current conversation to show.
package session
