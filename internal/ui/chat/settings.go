// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"

	"github.com/fredbear555/fredbear-tui/internal/config"
)

// SettingsStore holds the live generation settings. The UI goroutine mutates
// them from the toolbar keys while send goroutines read them, so access goes
// through a mutex.
type SettingsStore struct {
	mu  sync.Mutex
	gen config.GenerationConfig
}

// NewSettingsStore seeds the store from the loaded configuration.
func NewSettingsStore(gen config.GenerationConfig) *SettingsStore {
	return &SettingsStore{gen: gen}
}

// Get returns a copy of the current settings.
func (s *SettingsStore) Get() config.GenerationConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Update applies fn to the settings under the lock and returns the result.
func (s *SettingsStore) Update(fn func(*config.GenerationConfig)) config.GenerationConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.gen)
	return s.gen
}
