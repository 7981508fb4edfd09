// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewMessageIDs(t *testing.T) {
	a := NewMessage(RoleUser, "hello")
	b := NewMessage(RoleUser, "hello")

	if !strings.HasPrefix(a.ID, "msg_") {
		t.Errorf("ID = %q, want msg_ prefix", a.ID)
	}
	if a.ID == b.ID {
		t.Errorf("two messages share ID %q", a.ID)
	}
}

func TestMessagePreview(t *testing.T) {
	msg := NewMessage(RoleModel, "line one\nline two with much more text than fits in the preview window")

	got := msg.Preview(PreviewMaxLen)
	if strings.Contains(got, "\n") {
		t.Errorf("Preview contains newline: %q", got)
	}
	if len([]rune(got)) > PreviewMaxLen {
		t.Errorf("Preview length = %d runes, want <= %d", len([]rune(got)), PreviewMaxLen)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Preview = %q, want ellipsis suffix", got)
	}
}

func TestNewSessionDefaults(t *testing.T) {
	s := NewSession()

	if !strings.HasPrefix(s.ID, "sess_") {
		t.Errorf("ID = %q, want sess_ prefix", s.ID)
	}
	if s.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", s.Title, DefaultTitle)
	}
	if !s.IsEmpty() {
		t.Error("new session should be empty")
	}
}

func TestSessionTitleFixedOnFirstMessage(t *testing.T) {
	s := NewSession()

	s.Append(NewMessage(RoleUser, "What is the capital of France and why does it matter"))
	title := s.Title
	if title == DefaultTitle {
		t.Fatal("title should be derived from the first message")
	}
	if len([]rune(title)) > TitleMaxLen {
		t.Errorf("title length = %d runes, want <= %d", len([]rune(title)), TitleMaxLen)
	}

	// Later messages never retitle.
	s.Append(NewMessage(RoleModel, "Paris, for a number of reasons."))
	s.Append(NewMessage(RoleUser, "A completely different topic now"))
	if s.Title != title {
		t.Errorf("Title changed from %q to %q after later messages", title, s.Title)
	}
}

func TestSessionPreviewTracksLastMessage(t *testing.T) {
	s := NewSession()

	s.Append(NewMessage(RoleUser, "first"))
	s.Append(NewMessage(RoleModel, "second answer"))

	if !strings.HasPrefix(s.Preview, "second") {
		t.Errorf("Preview = %q, want to reflect last message", s.Preview)
	}
}

func TestSessionSetMessagesEmpty(t *testing.T) {
	s := NewSession()
	s.Append(NewMessage(RoleUser, "hello"))

	s.SetMessages(nil)
	if s.Preview != "" {
		t.Errorf("Preview = %q after clearing, want empty", s.Preview)
	}
}

func TestSessionTitleWhitespaceOnlyFirstMessage(t *testing.T) {
	s := NewSession()
	s.Append(NewMessage(RoleUser, "\n\n"))

	if s.Title != DefaultTitle {
		t.Errorf("Title = %q, want default for whitespace-only first message", s.Title)
	}
}

func TestSessionTitleTrimsSurroundingWhitespace(t *testing.T) {
	s := NewSession()
	s.Append(NewMessage(RoleUser, "\n  hello there  \n"))

	if s.Title != "hello there" {
		t.Errorf("Title = %q, want trimmed content", s.Title)
	}
}

func TestSessionJSONRoundTrip(t *testing.T) {
	s := NewSession()
	msg := NewMessage(RoleUser, "describe this image")
	msg.Attachments = []Attachment{{Name: "cat.png", MimeType: "image/png", Data: []byte{0x89, 0x50}}}
	s.Append(msg)
	s.Append(NewMessage(RoleModel, "It is a cat."))

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got Session
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if diff := cmp.Diff(*s, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionClone(t *testing.T) {
	s := NewSession()
	s.Append(NewMessage(RoleUser, "original"))

	clone := s.Clone()
	clone.Messages[0].Content = "mutated"

	if s.Messages[0].Content != "original" {
		t.Error("mutating clone affected the source session")
	}
}
