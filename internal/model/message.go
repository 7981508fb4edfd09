// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/fredbear555/fredbear-tui/internal/util"
)

// Role identifies the author of a message.
type Role string

const (
	// RoleUser marks messages typed by the person at the keyboard.
	RoleUser Role = "user"

	// RoleModel marks messages produced by the generative backend.
	RoleModel Role = "model"
)

// Attachment is a binary payload (image, document) attached to a user turn.
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// Message is a single conversation turn.
type Message struct {
	ID          string       `json:"id"`
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// NewMessage creates a message with a fresh ID and current timestamp.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        newID("msg_"),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Preview returns a single-line truncated form of the message content,
// suitable for sidebar display.
func (m Message) Preview(maxLen int) string {
	return util.TruncateRunes(util.FlattenWhitespace(m.Content), maxLen)
}

// newID generates a prefixed random hex identifier.
// RELIABILITY: crypto/rand never fails on supported platforms; if it somehow
// does, a timestamp-derived fallback keeps IDs unique enough for local use.
func newID(prefix string) string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return prefix + hex.EncodeToString([]byte(time.Now().Format("150405.000000000")))
	}
	return prefix + hex.EncodeToString(b)
}
