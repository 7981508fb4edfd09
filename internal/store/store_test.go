// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"errors"
	"path/filepath"
	"testing"
)

// backends returns a fresh instance of every Store implementation so the
// contract tests run against each one.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	dir := t.TempDir()

	fileStore, err := NewFileStore(filepath.Join(dir, "files"))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	sqliteStore, err := NewSQLiteStore(filepath.Join(dir, "kv.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]Store{
		"file":   fileStore,
		"sqlite": sqliteStore,
		"memory": NewMemStore(),
	}
}

func TestStoreSetGet(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Set("sessions", `{"items":[]}`); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			got, err := s.Get("sessions")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got != `{"items":[]}` {
				t.Errorf("Get = %q, want %q", got, `{"items":[]}`)
			}
		})
	}
}

func TestStoreGetMissing(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get("no_such_key")
			if !errors.Is(err, ErrKeyNotFound) {
				t.Errorf("Get missing key: err = %v, want ErrKeyNotFound", err)
			}
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Set("k", "first"); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := s.Set("k", "second"); err != nil {
				t.Fatalf("Set overwrite failed: %v", err)
			}

			got, err := s.Get("k")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got != "second" {
				t.Errorf("Get = %q, want %q", got, "second")
			}
		})
	}
}

func TestStoreRemove(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Set("k", "v"); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := s.Remove("k"); err != nil {
				t.Fatalf("Remove failed: %v", err)
			}
			if _, err := s.Get("k"); !errors.Is(err, ErrKeyNotFound) {
				t.Errorf("Get after Remove: err = %v, want ErrKeyNotFound", err)
			}

			// Removing an absent key is silent.
			if err := s.Remove("k"); err != nil {
				t.Errorf("Remove absent key: err = %v, want nil", err)
			}
		})
	}
}

func TestStoreUnsafeKeys(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			key := "weird key/../with:stuff"
			if err := s.Set(key, "v"); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			got, err := s.Get(key)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got != "v" {
				t.Errorf("Get = %q, want %q", got, "v")
			}
		})
	}
}

func TestNamespacedIsolation(t *testing.T) {
	base := NewMemStore()
	alice := NewNamespaced(base, "alice")
	bob := NewNamespaced(base, "bob")

	if err := alice.Set("sessions", "alice-data"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := bob.Set("sessions", "bob-data"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := alice.Get("sessions")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "alice-data" {
		t.Errorf("alice Get = %q, want %q", got, "alice-data")
	}

	if err := alice.Remove("sessions"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := bob.Get("sessions"); err != nil {
		t.Errorf("bob Get after alice Remove: err = %v, want nil", err)
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	first, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := first.Set("current_session", "sess_abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	second, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore reopen failed: %v", err)
	}
	got, err := second.Get("current_session")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got != "sess_abc" {
		t.Errorf("Get = %q, want %q", got, "sess_abc")
	}
}
