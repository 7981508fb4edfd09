// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream coordinates a send: it appends the user message and a
// placeholder response optimistically, dispatches to the backend by mode,
// folds cumulative streamed text into the placeholder, and replaces it with
// an error notice when generation fails. Each send carries a live token so
// writes from an abandoned stream never land in the wrong session.
package stream
