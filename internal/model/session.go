// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/fredbear555/fredbear-tui/internal/util"
)

const (
	// TitleMaxLen bounds the derived session title.
	TitleMaxLen = 30

	// PreviewMaxLen bounds the derived session preview.
	PreviewMaxLen = 50

	// DefaultTitle is used until the first message fixes the real title.
	DefaultTitle = "New Chat"
)

// Session is one conversation: an ordered message list plus display metadata.
// Title is derived once from the first message and never changes afterward;
// Preview always tracks the most recent message.
type Session struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Messages     []Message `json:"messages"`
	Preview      string    `json:"preview"`
	LastModified time.Time `json:"last_modified"`
}

// NewSession creates an empty session with a fresh ID and the default title.
func NewSession() *Session {
	return &Session{
		ID:           newID("sess_"),
		Title:        DefaultTitle,
		Messages:     []Message{},
		LastModified: time.Now(),
	}
}

// SetMessages replaces the message list and refreshes the derived fields.
// The title is fixed on the first transition from empty to non-empty and is
// left alone on every later call, so edits deeper in the list never retitle
// the session.
func (s *Session) SetMessages(messages []Message) {
	wasEmpty := len(s.Messages) == 0

	s.Messages = messages
	s.LastModified = time.Now()

	if len(messages) == 0 {
		s.Preview = ""
		return
	}

	if wasEmpty && s.Title == DefaultTitle {
		// Flattening can leave pure whitespace (a newline-only message
		// becomes spaces), so trim before deciding the content is usable.
		first := strings.TrimSpace(util.FlattenWhitespace(messages[0].Content))
		s.Title = util.TruncateRunes(first, TitleMaxLen)
		if s.Title == "" {
			s.Title = DefaultTitle
		}
	}

	s.Preview = messages[len(messages)-1].Preview(PreviewMaxLen)
}

// Append adds a message, refreshing derived fields.
func (s *Session) Append(msg Message) {
	s.SetMessages(append(s.Messages, msg))
}

// IsEmpty reports whether the session holds no messages.
func (s *Session) IsEmpty() bool {
	return len(s.Messages) == 0
}

// Clone returns a deep copy so callers can hand sessions across goroutines
// without sharing the backing message slice.
func (s *Session) Clone() *Session {
	out := *s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	for i := range out.Messages {
		if len(s.Messages[i].Attachments) > 0 {
			out.Messages[i].Attachments = make([]Attachment, len(s.Messages[i].Attachments))
			copy(out.Messages[i].Attachments, s.Messages[i].Attachments)
		}
	}
	return &out
}
