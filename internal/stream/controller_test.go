// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/fredbear555/fredbear-tui/internal/config"
	"github.com/fredbear555/fredbear-tui/internal/gemini"
	"github.com/fredbear555/fredbear-tui/internal/model"
	"github.com/fredbear555/fredbear-tui/internal/session"
	"github.com/fredbear555/fredbear-tui/internal/store"
)

func TestMain(m *testing.M) {
	// The genai SDK's transitive opencensus import starts a stats worker at
	// init; only our own goroutines are under test here.
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// stubBackend scripts backend behavior per test.
type stubBackend struct {
	chunks   []string // cumulative snapshots emitted by StreamChat
	chatErr  error
	image    string
	imageErr error
	video    string
	videoErr error

	// block, when non-nil, holds StreamChat open until closed.
	block chan struct{}

	mu       sync.Mutex
	lastReq  gemini.ChatRequest
	chatRuns int
}

func (s *stubBackend) StreamChat(ctx context.Context, req gemini.ChatRequest, onChunk gemini.ChunkFunc) (string, error) {
	s.mu.Lock()
	s.lastReq = req
	s.chatRuns++
	s.mu.Unlock()

	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	var last string
	for _, snapshot := range s.chunks {
		last = snapshot
		onChunk(snapshot)
	}
	if s.chatErr != nil {
		return last, s.chatErr
	}
	return last, nil
}

func (s *stubBackend) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return s.image, s.imageErr
}

func (s *stubBackend) GenerateVideo(ctx context.Context, prompt string) (string, error) {
	return s.video, s.videoErr
}

// harness wires a controller over a fresh in-memory session manager.
type harness struct {
	sessions *session.Manager
	backend  *stubBackend
	ctrl     *Controller
	settings config.GenerationConfig
	mu       sync.Mutex
	updates  []string
}

func newHarness(backend *stubBackend) *harness {
	h := &harness{
		sessions: session.NewManager(store.NewMemStore(), time.Millisecond),
		backend:  backend,
		settings: config.Default().Generation,
	}
	h.ctrl = NewController(h.sessions, backend,
		func() config.GenerationConfig { return h.settings },
		func() string { return "gemini-2.5-flash" },
		WithOnUpdate(func(id string) {
			h.mu.Lock()
			h.updates = append(h.updates, id)
			h.mu.Unlock()
		}))
	return h
}

func (h *harness) messages(t *testing.T) []model.Message {
	t.Helper()
	return h.sessions.Current().Messages
}

func TestSendStreamsIntoPlaceholder(t *testing.T) {
	h := newHarness(&stubBackend{chunks: []string{"Hi", "Hi there"}})
	id := h.sessions.CurrentID()

	if err := h.ctrl.Send(context.Background(), id, "Hi", nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	msgs := h.messages(t)
	if len(msgs) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(msgs))
	}
	if msgs[0].Role != model.RoleUser || msgs[0].Content != "Hi" {
		t.Errorf("user message = %+v", msgs[0])
	}
	if msgs[1].Role != model.RoleModel || msgs[1].Content != "Hi there" {
		t.Errorf("model message = %+v", msgs[1])
	}

	// History sent to the backend excludes the optimistic turn.
	if got := len(h.backend.lastReq.History); got != 0 {
		t.Errorf("history length = %d, want 0", got)
	}
}

func TestSendCumulativeOverwrite(t *testing.T) {
	h := newHarness(&stubBackend{chunks: []string{"a", "ab", "abc"}})
	id := h.sessions.CurrentID()

	// Capture the placeholder content at every update.
	var snapshots []string
	h.ctrl.onUpdate = func(sessionID string) {
		msgs := h.sessions.Current().Messages
		if len(msgs) == 2 {
			snapshots = append(snapshots, msgs[1].Content)
		}
	}

	if err := h.ctrl.Send(context.Background(), id, "count", nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	// Snapshots only ever grow; each is a prefix of the next.
	prev := ""
	for _, snap := range snapshots {
		if len(snap) < len(prev) {
			t.Errorf("content shrank from %q to %q", prev, snap)
		}
		prev = snap
	}
	if prev != "abc" {
		t.Errorf("final content = %q, want abc", prev)
	}
}

func TestSendEmptyRejected(t *testing.T) {
	h := newHarness(&stubBackend{})
	id := h.sessions.CurrentID()

	err := h.ctrl.Send(context.Background(), id, "   \n", nil)
	if !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("err = %v, want ErrEmptyMessage", err)
	}
	if len(h.messages(t)) != 0 {
		t.Error("rejected send should not touch the session")
	}

	// Attachments alone are enough.
	atts := []model.Attachment{{Name: "a.png", MimeType: "image/png", Data: []byte{1}}}
	if err := h.ctrl.Send(context.Background(), id, "", atts); err != nil {
		t.Errorf("attachment-only send failed: %v", err)
	}
}

func TestSendBusyPerSession(t *testing.T) {
	backend := &stubBackend{chunks: []string{"done"}, block: make(chan struct{})}
	h := newHarness(backend)
	id := h.sessions.CurrentID()

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.ctrl.Send(context.Background(), id, "first", nil)
	}()

	// Wait for the in-flight claim.
	deadline := time.Now().Add(2 * time.Second)
	for !h.ctrl.IsBusy(id) {
		if time.Now().After(deadline) {
			t.Fatal("send never claimed the session")
		}
		time.Sleep(time.Millisecond)
	}

	if err := h.ctrl.Send(context.Background(), id, "second", nil); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent send err = %v, want ErrBusy", err)
	}

	// A different session is not blocked.
	other := h.sessions.Create()
	if h.ctrl.IsBusy(other.ID) {
		t.Error("new session should not be busy")
	}

	close(backend.block)
	if err := <-errCh; err != nil {
		t.Fatalf("first send failed: %v", err)
	}
	if h.ctrl.IsBusy(id) {
		t.Error("session still busy after completion")
	}
}

func TestSendErrorFoldsInterruptNotice(t *testing.T) {
	backend := &stubBackend{
		chunks:  []string{"partial"},
		chatErr: gemini.ErrBackendUnavailable,
	}
	h := newHarness(backend)
	id := h.sessions.CurrentID()

	err := h.ctrl.Send(context.Background(), id, "doomed", nil)
	if !errors.Is(err, gemini.ErrBackendUnavailable) {
		t.Fatalf("err = %v, want ErrBackendUnavailable", err)
	}

	msgs := h.messages(t)
	if len(msgs) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(msgs))
	}
	if msgs[0].Content != "doomed" {
		t.Error("user message should survive the failure")
	}
	if msgs[1].Content != InterruptedContent {
		t.Errorf("placeholder = %q, want interrupt notice", msgs[1].Content)
	}
}

func TestImageModeSoftError(t *testing.T) {
	h := newHarness(&stubBackend{image: gemini.NoImageContent})
	h.settings.Mode = config.ModeImage
	id := h.sessions.CurrentID()

	if err := h.ctrl.Send(context.Background(), id, "draw a cat", nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	msgs := h.messages(t)
	if msgs[1].Content != gemini.NoImageContent {
		t.Errorf("content = %q, want soft error text kept as content", msgs[1].Content)
	}
}

func TestImageModeDataURI(t *testing.T) {
	h := newHarness(&stubBackend{image: "data:image/png;base64,iVBOR"})
	h.settings.Mode = config.ModeImage
	id := h.sessions.CurrentID()

	if err := h.ctrl.Send(context.Background(), id, "draw a dog", nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if got := h.messages(t)[1].Content; got != "data:image/png;base64,iVBOR" {
		t.Errorf("content = %q", got)
	}
}

func TestVideoModeTimeout(t *testing.T) {
	h := newHarness(&stubBackend{videoErr: gemini.ErrGenerationTimeout})
	h.settings.Mode = config.ModeVideo
	id := h.sessions.CurrentID()

	err := h.ctrl.Send(context.Background(), id, "make a film", nil)
	if !errors.Is(err, gemini.ErrGenerationTimeout) {
		t.Fatalf("err = %v, want ErrGenerationTimeout", err)
	}
	if got := h.messages(t)[1].Content; got != InterruptedContent {
		t.Errorf("placeholder = %q, want interrupt notice", got)
	}
}

func TestCancelSuppressesStaleFolds(t *testing.T) {
	backend := &stubBackend{chunks: []string{"late text"}, block: make(chan struct{})}
	h := newHarness(backend)
	id := h.sessions.CurrentID()

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.ctrl.Send(context.Background(), id, "hello", nil)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !h.ctrl.IsBusy(id) {
		if time.Now().After(deadline) {
			t.Fatal("send never claimed the session")
		}
		time.Sleep(time.Millisecond)
	}

	// Simulate the session being abandoned mid-stream.
	h.ctrl.Cancel(id)
	close(backend.block)
	<-errCh

	// The placeholder is still empty: the late chunks were dropped.
	msgs := h.messages(t)
	if len(msgs) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(msgs))
	}
	if msgs[1].Content != "" {
		t.Errorf("placeholder = %q, want untouched", msgs[1].Content)
	}
}

func TestMathModeStillStreams(t *testing.T) {
	backend := &stubBackend{chunks: []string{"x = 4"}}
	h := newHarness(backend)
	h.settings.Mode = config.ModeMath
	id := h.sessions.CurrentID()

	if err := h.ctrl.Send(context.Background(), id, "solve 2x=8", nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if backend.chatRuns != 1 {
		t.Errorf("chatRuns = %d, want math mode to use the chat stream", backend.chatRuns)
	}
	if got := h.messages(t)[1].Content; got != "x = 4" {
		t.Errorf("content = %q", got)
	}
}
