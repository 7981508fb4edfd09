// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fredbear555/fredbear-tui/internal/logging"
	"github.com/fredbear555/fredbear-tui/internal/model"
	"github.com/fredbear555/fredbear-tui/internal/store"
)

// Durable store keys.
const (
	sessionsKey = "sessions"
	currentKey  = "current_session"
)

// DefaultDebounce batches rapid message updates into one write. Streaming
// produces many updates per second; flushing each one would thrash the store.
const DefaultDebounce = 400 * time.Millisecond

// ErrSessionNotFound is returned when an ID matches no session.
var ErrSessionNotFound = errors.New("session not found")

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager owns the session list. All methods are safe for concurrent use;
// returned sessions are deep copies.
type Manager struct {
	mu       sync.Mutex
	store    store.Store
	sessions []*model.Session // newest first
	current  string           // ID of the active session

	debounce time.Duration
	timer    *time.Timer
	dirty    bool
}

// NewManager loads the session list from the store. Corrupt persisted state
// is discarded and replaced with a fresh session rather than failing startup;
// the user loses history but keeps a working app.
func NewManager(s store.Store, debounce time.Duration) *Manager {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	m := &Manager{store: s, debounce: debounce}
	m.load()
	return m
}

func (m *Manager) load() {
	raw, err := m.store.Get(sessionsKey)
	if err == nil {
		var sessions []*model.Session
		if jsonErr := json.Unmarshal([]byte(raw), &sessions); jsonErr == nil {
			m.sessions = sessions
		} else {
			logging.L().Warn("discarding corrupt session data", zap.Error(jsonErr))
		}
	}

	if len(m.sessions) == 0 {
		m.sessions = []*model.Session{model.NewSession()}
		m.dirty = true
	}

	m.current = m.sessions[0].ID
	if id, err := m.store.Get(currentKey); err == nil {
		if m.indexOf(id) >= 0 {
			m.current = id
		}
	}

	if m.dirty {
		m.persistLocked()
	}
}

// indexOf returns the position of a session ID, or -1.
func (m *Manager) indexOf(id string) int {
	for i, s := range m.sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// List returns all sessions, newest first, as deep copies.
func (m *Manager) List() []*model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.Session, len(m.sessions))
	for i, s := range m.sessions {
		out[i] = s.Clone()
	}
	return out
}

// Current returns a copy of the active session.
func (m *Manager) Current() *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[m.indexOf(m.current)].Clone()
}

// CurrentID returns the active session ID.
func (m *Manager) CurrentID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Get returns a copy of the session with the given ID.
func (m *Manager) Get(id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return nil, ErrSessionNotFound
	}
	return m.sessions[idx].Clone(), nil
}

// Count returns the number of sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// =============================================================================
// WRITE OPERATIONS
// =============================================================================

// Create adds a fresh session at the front of the list and makes it current.
func (m *Manager) Create() *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := model.NewSession()
	m.sessions = append([]*model.Session{s}, m.sessions...)
	m.current = s.ID
	m.scheduleLocked()

	logging.L().Info("session created", zap.String("session_id", s.ID))
	return s.Clone()
}

// Switch makes the session with the given ID current.
func (m *Manager) Switch(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(id) < 0 {
		return ErrSessionNotFound
	}
	m.current = id
	m.scheduleLocked()
	return nil
}

// Delete removes a session. Deleting the last one replaces it with a fresh
// session; deleting the current one repoints current to the first remaining.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return ErrSessionNotFound
	}

	m.sessions = append(m.sessions[:idx], m.sessions[idx+1:]...)
	if len(m.sessions) == 0 {
		m.sessions = []*model.Session{model.NewSession()}
	}
	if m.current == id {
		m.current = m.sessions[0].ID
	}
	m.scheduleLocked()

	logging.L().Info("session deleted", zap.String("session_id", id))
	return nil
}

// ReplaceMessages swaps the full message list of a session, refreshing its
// derived title and preview.
func (m *Manager) ReplaceMessages(id string, messages []model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return ErrSessionNotFound
	}

	m.sessions[idx].SetMessages(messages)
	m.scheduleLocked()
	return nil
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// scheduleLocked marks state dirty and arms the debounce timer.
func (m *Manager) scheduleLocked() {
	m.dirty = true
	if m.timer != nil {
		return
	}
	m.timer = time.AfterFunc(m.debounce, func() {
		if err := m.Flush(); err != nil {
			logging.L().Warn("session flush failed", zap.Error(err))
		}
	})
}

// Flush writes pending changes immediately.
func (m *Manager) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if !m.dirty {
		return nil
	}
	return m.persistLocked()
}

func (m *Manager) persistLocked() error {
	data, err := json.Marshal(m.sessions)
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}
	if err := m.store.Set(sessionsKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist sessions: %w", err)
	}
	if err := m.store.Set(currentKey, m.current); err != nil {
		return fmt.Errorf("failed to persist current session: %w", err)
	}
	m.dirty = false
	return nil
}

// Close flushes pending writes. Call on shutdown.
func (m *Manager) Close() error {
	return m.Flush()
}
