// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// fredbear.
//
// Supports TOML configuration with sensible defaults, environment variable
// overrides, validation, and live reload via fsnotify.
//
// Configuration file locations (in order of precedence):
//   - ~/.fredbear/config.toml
//   - Built-in defaults
package config
