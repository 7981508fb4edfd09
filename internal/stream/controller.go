// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fredbear555/fredbear-tui/internal/config"
	"github.com/fredbear555/fredbear-tui/internal/gemini"
	"github.com/fredbear555/fredbear-tui/internal/logging"
	"github.com/fredbear555/fredbear-tui/internal/model"
	"github.com/fredbear555/fredbear-tui/internal/session"
)

// Sentinel errors for send validation. Check with errors.Is.
var (
	// ErrEmptyMessage rejects sends with no text and no attachments.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrBusy rejects a send while the session already has one in flight.
	ErrBusy = errors.New("session already has a generation in flight")
)

// InterruptedContent replaces the placeholder when generation fails. The
// user's message is already persisted by then; only the response is lost.
const InterruptedContent = "System Error: Connection interrupted. Auto-save protected your request."

// UpdateFunc is notified after every fold so the UI can re-render. It may be
// called from the sending goroutine.
type UpdateFunc func(sessionID string)

// SettingsFunc supplies the generation settings for a send.
type SettingsFunc func() config.GenerationConfig

// ModelFunc supplies the chat model for a send (tier dependent).
type ModelFunc func() string

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller drives sends against the session manager and backend.
type Controller struct {
	sessions *session.Manager
	backend  gemini.Backend
	settings SettingsFunc
	model    ModelFunc

	mu       sync.Mutex
	inflight map[string]string // session ID -> live token
	onUpdate UpdateFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithOnUpdate sets the UI notification hook.
func WithOnUpdate(fn UpdateFunc) Option {
	return func(c *Controller) { c.onUpdate = fn }
}

// NewController creates a send controller.
func NewController(sessions *session.Manager, backend gemini.Backend, settings SettingsFunc, modelFn ModelFunc, opts ...Option) *Controller {
	c := &Controller{
		sessions: sessions,
		backend:  backend,
		settings: settings,
		model:    modelFn,
		inflight: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsBusy reports whether the session has a generation in flight.
func (c *Controller) IsBusy(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.inflight[sessionID]
	return busy
}

// Send runs one full turn: optimistic append, backend dispatch, streaming
// fold-in, error fold-in. It blocks until the turn finishes; run it in a
// goroutine from the UI.
func (c *Controller) Send(ctx context.Context, sessionID, text string, attachments []model.Attachment) error {
	if strings.TrimSpace(text) == "" && len(attachments) == 0 {
		return ErrEmptyMessage
	}

	token, err := c.claim(sessionID)
	if err != nil {
		return err
	}
	defer c.release(sessionID, token)

	current, err := c.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	history := current.Messages

	settings := c.settings()

	// Optimistic append: the user's message first, then a placeholder the
	// result folds into. Streaming modes start empty; single-shot modes
	// show a working notice until their one fold lands.
	userMsg := model.NewMessage(model.RoleUser, text)
	userMsg.Attachments = attachments
	placeholder := model.NewMessage(model.RoleModel, placeholderContent(settings.Mode))

	withUser := append(append([]model.Message{}, history...), userMsg)
	if err := c.sessions.ReplaceMessages(sessionID, append(append([]model.Message{}, withUser...), placeholder)); err != nil {
		return err
	}
	c.notify(sessionID)

	content, genErr := c.dispatch(ctx, settings, withUser, text, attachments, sessionID, placeholder.ID, token)

	if genErr != nil {
		logging.L().Warn("generation failed",
			zap.String("session_id", sessionID), zap.Error(genErr))
		c.fold(sessionID, placeholder.ID, token, InterruptedContent)
		return genErr
	}

	c.fold(sessionID, placeholder.ID, token, content)
	return nil
}

// placeholderContent picks the initial placeholder text for a mode.
func placeholderContent(mode config.Mode) string {
	switch mode {
	case config.ModeImage:
		return "Generating image..."
	case config.ModeVideo:
		return "Generating video... this can take a few minutes."
	default:
		return ""
	}
}

// dispatch routes a send to the right backend operation for the mode.
func (c *Controller) dispatch(ctx context.Context, settings config.GenerationConfig, history []model.Message, text string, attachments []model.Attachment, sessionID, placeholderID, token string) (string, error) {
	switch settings.Mode {
	case config.ModeImage:
		return c.backend.GenerateImage(ctx, text)

	case config.ModeVideo:
		uri, err := c.backend.GenerateVideo(ctx, text)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Video ready: %s", uri), nil

	default:
		// Chat, math, and checker all stream; the overlays live in the
		// generate config, not in the transport.
		req := gemini.ChatRequest{
			Model:       c.model(),
			History:     history[:len(history)-1],
			Message:     text,
			Attachments: attachments,
			Settings:    settings,
		}
		return c.backend.StreamChat(ctx, req, func(fullText string) {
			c.fold(sessionID, placeholderID, token, fullText)
		})
	}
}

// claim registers a live token for the session, enforcing one send in flight.
func (c *Controller) claim(sessionID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.inflight[sessionID]; busy {
		return "", ErrBusy
	}
	token := uuid.NewString()
	c.inflight[sessionID] = token
	return token, nil
}

// release clears the live token if this send still owns it.
func (c *Controller) release(sessionID, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[sessionID] == token {
		delete(c.inflight, sessionID)
	}
}

// fold overwrites the placeholder content with the cumulative text. Stale
// writes are dropped: the token must still be live and both the session and
// the placeholder must still exist.
func (c *Controller) fold(sessionID, messageID, token, content string) {
	c.mu.Lock()
	live := c.inflight[sessionID] == token
	c.mu.Unlock()
	if !live {
		return
	}

	current, err := c.sessions.Get(sessionID)
	if err != nil {
		return
	}

	found := false
	messages := current.Messages
	for i := range messages {
		if messages[i].ID == messageID {
			messages[i].Content = content
			found = true
			break
		}
	}
	if !found {
		return
	}

	if err := c.sessions.ReplaceMessages(sessionID, messages); err != nil {
		return
	}
	c.notify(sessionID)
}

// Cancel invalidates the live token for a session so in-flight folds are
// dropped. Used when the session is deleted mid-stream.
func (c *Controller) Cancel(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, sessionID)
}

func (c *Controller) notify(sessionID string) {
	if c.onUpdate != nil {
		c.onUpdate(sessionID)
	}
}
