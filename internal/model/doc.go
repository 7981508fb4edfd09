// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the core conversation data structures shared across
// the session store, the stream controller, and the UI: messages, attachments,
// and sessions with their derived title and preview fields.
package model
