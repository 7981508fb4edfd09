// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package access

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/fredbear555/fredbear-tui/internal/store"
)

// registryKey is the durable store key holding the identity registry.
const registryKey = "users"

// Record is one registered identity. Tier is empty until verification
// completes for the first time.
type Record struct {
	// Password holds the argon2id hash. Old installs stored plaintext;
	// those entries are upgraded in place on first successful login.
	Password string `json:"password"`
	Tier     Tier   `json:"tier,omitempty"`
}

// Registry is the persistent identity registry.
type Registry struct {
	mu    sync.Mutex
	store store.Store
	users map[string]Record
}

// LoadRegistry reads the registry from the durable store. A missing or
// corrupt record starts empty rather than failing startup.
func LoadRegistry(s store.Store) *Registry {
	r := &Registry{store: s, users: make(map[string]Record)}

	raw, err := s.Get(registryKey)
	if err != nil {
		return r
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return r
	}

	for name, entry := range entries {
		var rec Record
		if err := json.Unmarshal(entry, &rec); err == nil && rec.Password != "" {
			r.users[name] = rec
			continue
		}
		// Legacy format: the value is a bare plaintext password string.
		var plain string
		if err := json.Unmarshal(entry, &plain); err == nil && plain != "" {
			r.users[name] = Record{Password: plain}
		}
	}
	return r
}

// Register adds a new identity with a hashed password.
func (r *Registry) Register(identity, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[identity]; exists {
		return ErrDuplicateIdentity
	}

	hash, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	r.users[identity] = Record{Password: hash}
	return r.persistLocked()
}

// Authenticate verifies a password for an existing identity and returns its
// record. Legacy plaintext entries are upgraded to argon2id on success.
func (r *Registry) Authenticate(identity, password string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.users[identity]
	if !exists {
		return Record{}, ErrUnknownIdentity
	}

	if isHashed(rec.Password) {
		if !verifyPassword(password, rec.Password) {
			return Record{}, ErrInvalidCredential
		}
		return rec, nil
	}

	// Legacy plaintext entry.
	if subtle.ConstantTimeCompare([]byte(password), []byte(rec.Password)) != 1 {
		return Record{}, ErrInvalidCredential
	}
	if hash, err := hashPassword(password); err == nil {
		rec.Password = hash
		r.users[identity] = rec
		// Best effort; a failed upgrade write leaves the plaintext entry
		// to be retried next login.
		_ = r.persistLocked()
	}
	return r.users[identity], nil
}

// SetTier records the verified tier for an identity.
func (r *Registry) SetTier(identity string, tier Tier) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.users[identity]
	if !exists {
		return ErrUnknownIdentity
	}
	rec.Tier = tier
	r.users[identity] = rec
	return r.persistLocked()
}

// Tier returns the stored tier for an identity, if any.
func (r *Registry) Tier(identity string) (Tier, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.users[identity]
	if !exists || rec.Tier == "" {
		return "", false
	}
	return rec.Tier, true
}

// Exists reports whether an identity is registered.
func (r *Registry) Exists(identity string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.users[identity]
	return exists
}

func (r *Registry) persistLocked() error {
	data, err := json.Marshal(r.users)
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	if err := r.store.Set(registryKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist registry: %w", err)
	}
	return nil
}
