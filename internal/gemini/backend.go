// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"errors"

	"github.com/fredbear555/fredbear-tui/internal/access"
	"github.com/fredbear555/fredbear-tui/internal/config"
	"github.com/fredbear555/fredbear-tui/internal/model"
)

// Sentinel errors for backend failures. Check with errors.Is.
var (
	// ErrBackendUnavailable covers connectivity failures: the request never
	// reached the service or the connection dropped mid-stream.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrBackendRejected covers requests the service refused: bad API key,
	// quota exhaustion, invalid arguments.
	ErrBackendRejected = errors.New("backend rejected request")

	// ErrGenerationTimeout is returned when generation exceeds its deadline,
	// including the video polling timeout.
	ErrGenerationTimeout = errors.New("generation timed out")
)

// ChatRequest is one streaming chat turn.
type ChatRequest struct {
	// Model is the resolved model name for the caller's tier
	Model string
	// History is every prior turn in the session, oldest first
	History []model.Message
	// Message is the new user message
	Message string
	// Attachments accompany the new message
	Attachments []model.Attachment
	// Settings are the active generation settings
	Settings config.GenerationConfig
}

// ChunkFunc receives the cumulative response text after each chunk: the full
// text so far, not the delta. Rendering a snapshot is always safe.
type ChunkFunc func(fullText string)

// Backend is the generative service contract.
type Backend interface {
	// StreamChat streams a chat response, invoking onChunk with cumulative
	// text. Returns the final full text.
	StreamChat(ctx context.Context, req ChatRequest, onChunk ChunkFunc) (string, error)

	// GenerateImage produces an image for the prompt and returns it as a
	// data URI. A response with no image yields a soft error string as the
	// content, not an error.
	GenerateImage(ctx context.Context, prompt string) (string, error)

	// GenerateVideo produces a video for the prompt and returns its URI.
	GenerateVideo(ctx context.Context, prompt string) (string, error)
}

// ModelForTier resolves which chat model serves a tier.
func ModelForTier(backend config.BackendConfig, tier access.Tier) string {
	if tier == access.TierPremium {
		return backend.PremiumModel
	}
	return backend.FreeModel
}
