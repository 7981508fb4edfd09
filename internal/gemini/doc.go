// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini talks to the generative backend. It builds request contents
// from conversation history, applies the mode overlays and thinking settings,
// and exposes streaming chat plus image and video generation behind a single
// Backend interface so the rest of the app never touches the SDK directly.
package gemini
