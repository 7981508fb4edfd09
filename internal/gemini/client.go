// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/fredbear555/fredbear-tui/internal/config"
	"github.com/fredbear555/fredbear-tui/internal/logging"
)

// NoImageContent is returned as message content when the image model answers
// without an image. It is conversation content, not an error: the turn is
// kept and persisted like any other response.
const NoImageContent = "Error: No image generated."

// Client is the real Backend implementation over the genai SDK.
type Client struct {
	client  *genai.Client
	backend config.BackendConfig
	video   config.VideoConfig
	limiter *rate.Limiter
}

// NewClient creates a backend client. The API key comes from the backend
// config (environment overrides included).
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.Backend.APIKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", ErrBackendRejected)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.Backend.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	limit := rate.Inf
	if cfg.Backend.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.Backend.RequestsPerMinute) / 60.0)
	}

	return &Client{
		client:  client,
		backend: cfg.Backend,
		video:   cfg.Video,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

// StreamChat implements Backend.
func (c *Client) StreamChat(ctx context.Context, req ChatRequest, onChunk ChunkFunc) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", classify(err)
	}

	contents := BuildContents(req.History, req.Message, req.Attachments)
	genCfg := GenerateConfig(req.Settings, req.Model)

	logging.L().Debug("streaming chat request",
		zap.String("model", req.Model),
		zap.Int("history_turns", len(req.History)))

	var fullText strings.Builder
	for resp, err := range c.client.Models.GenerateContentStream(ctx, req.Model, contents, genCfg) {
		if err != nil {
			// Mid-stream failure: the caller already holds the partial
			// text from earlier chunks.
			return fullText.String(), classify(err)
		}
		if text := resp.Text(); text != "" {
			fullText.WriteString(text)
			onChunk(fullText.String())
		}
	}

	return fullText.String(), nil
}

// GenerateImage implements Backend.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", classify(err)
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{genai.NewPartFromText(prompt)},
	}}

	resp, err := c.client.Models.GenerateContent(ctx, c.backend.ImageModel, contents,
		&genai.GenerateContentConfig{
			ImageConfig: &genai.ImageConfig{AspectRatio: "1:1"},
		})
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return "data:image/png;base64," +
					base64.StdEncoding.EncodeToString(part.InlineData.Data), nil
			}
		}
	}

	logging.L().Warn("image response contained no image",
		zap.String("model", c.backend.ImageModel))
	return NoImageContent, nil
}

// GenerateVideo implements Backend.
func (c *Client) GenerateVideo(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", classify(err)
	}

	op, err := c.client.Models.GenerateVideos(ctx, c.backend.VideoModel, prompt, nil,
		&genai.GenerateVideosConfig{
			NumberOfVideos: 1,
			Resolution:     "720p",
			AspectRatio:    "16:9",
		})
	if err != nil {
		return "", classify(err)
	}

	interval := time.Duration(c.video.PollIntervalSecs) * time.Second
	deadline := time.Now().Add(time.Duration(c.video.PollTimeoutSecs) * time.Second)

	for !op.Done {
		if time.Now().After(deadline) {
			return "", fmt.Errorf("%w: video not ready after %ds",
				ErrGenerationTimeout, c.video.PollTimeoutSecs)
		}

		select {
		case <-ctx.Done():
			return "", classify(ctx.Err())
		case <-time.After(interval):
		}

		op, err = c.client.Operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return "", classify(err)
		}
	}

	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 ||
		op.Response.GeneratedVideos[0].Video == nil ||
		op.Response.GeneratedVideos[0].Video.URI == "" {
		return "", fmt.Errorf("%w: operation finished without a video", ErrBackendRejected)
	}

	return op.Response.GeneratedVideos[0].Video.URI, nil
}

// classify maps SDK and transport errors onto the backend error taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrGenerationTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	msg := err.Error()
	for _, marker := range []string{
		"400", "401", "403", "429",
		"INVALID_ARGUMENT", "PERMISSION_DENIED", "UNAUTHENTICATED", "RESOURCE_EXHAUSTED",
	} {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", ErrBackendRejected, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
}
