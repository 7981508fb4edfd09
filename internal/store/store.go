// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the durable key/value store backing sessions, the
// identity registry, and application configuration snapshots.
package store

import (
	"errors"
	"strings"
)

// Store is the durable persistence contract. Implementations must be safe for
// concurrent use. Values are opaque strings; callers own serialization.
type Store interface {
	// Get returns the value for key. ErrKeyNotFound when absent.
	Get(key string) (string, error)

	// Set writes the value for key, creating or replacing it.
	Set(key, value string) error

	// Remove deletes the key. Removing an absent key is not an error.
	Remove(key string) error
}

// ErrKeyNotFound is returned by Get for absent keys.
// Use errors.Is(err, ErrKeyNotFound) to check.
var ErrKeyNotFound = errors.New("key not found")

// =============================================================================
// NAMESPACING
// =============================================================================

// Namespaced wraps a Store so every key is prefixed with a namespace, keeping
// per-identity state (sessions, config) from colliding in a shared backend.
type Namespaced struct {
	inner  Store
	prefix string
}

// NewNamespaced creates a namespaced view over inner. An empty namespace
// returns keys unchanged.
func NewNamespaced(inner Store, namespace string) *Namespaced {
	prefix := ""
	if namespace != "" {
		prefix = sanitizeNamespace(namespace) + "/"
	}
	return &Namespaced{inner: inner, prefix: prefix}
}

// Get implements Store.
func (n *Namespaced) Get(key string) (string, error) {
	return n.inner.Get(n.prefix + key)
}

// Set implements Store.
func (n *Namespaced) Set(key, value string) error {
	return n.inner.Set(n.prefix+key, value)
}

// Remove implements Store.
func (n *Namespaced) Remove(key string) error {
	return n.inner.Remove(n.prefix + key)
}

// sanitizeNamespace keeps namespaces filesystem- and SQL-safe.
func sanitizeNamespace(ns string) string {
	var sb strings.Builder
	for _, r := range ns {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
