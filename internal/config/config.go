// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete fredbear configuration.
type Config struct {
	// General settings
	Version string `toml:"version"`

	// Backend connection and model selection
	Backend BackendConfig `toml:"backend"`

	// Generation settings (mode, toggles, sampling)
	Generation GenerationConfig `toml:"generation"`

	// Video generation polling
	Video VideoConfig `toml:"video"`

	// Storage backend selection
	Storage StorageConfig `toml:"storage"`

	// Logging configuration
	Logging LoggingConfig `toml:"logging"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// BackendConfig contains generative backend connection settings.
type BackendConfig struct {
	// APIKey is the Gemini API key. Prefer the GEMINI_API_KEY env var; the
	// file value exists for air-gapped setups that cannot set environment.
	APIKey string `toml:"api_key"`
	// FreeModel serves free-tier identities
	FreeModel string `toml:"free_model"`
	// PremiumModel serves premium-tier identities
	PremiumModel string `toml:"premium_model"`
	// ImageModel handles image generation requests
	ImageModel string `toml:"image_model"`
	// VideoModel handles video generation requests
	VideoModel string `toml:"video_model"`
	// RequestsPerMinute rate-limits outbound backend calls (0 = unlimited)
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// Mode selects what kind of output a send produces.
type Mode string

const (
	ModeChat    Mode = "chat"
	ModeImage   Mode = "image"
	ModeVideo   Mode = "video"
	ModeMath    Mode = "math"
	ModeChecker Mode = "checker"
)

// ValidModes lists every accepted mode value.
var ValidModes = []Mode{ModeChat, ModeImage, ModeVideo, ModeMath, ModeChecker}

// GenerationConfig contains the per-send generation settings. These are the
// settings the toolbar toggles; they persist across restarts.
type GenerationConfig struct {
	// Mode is the active conversation mode
	Mode Mode `toml:"mode"`
	// SystemInstruction is the base persona prompt
	SystemInstruction string `toml:"system_instruction"`
	// Temperature is the sampling temperature for chat mode
	Temperature float64 `toml:"temperature"`
	// Thinking controls reasoning depth ("auto", "fast", "deep", "budget:<n>")
	Thinking ThinkingMode `toml:"thinking"`
	// WebSearch enables the search grounding tool
	WebSearch bool `toml:"web_search"`
	// DoubleResearch enables the heavier research pass (implies search)
	DoubleResearch bool `toml:"double_research"`
	// MakeApp switches the persona to full-application scaffolding
	MakeApp bool `toml:"make_app"`
}

// VideoConfig controls video generation polling.
type VideoConfig struct {
	// PollIntervalSecs is how often to poll a pending video operation
	PollIntervalSecs int `toml:"poll_interval_secs"`
	// PollTimeoutSecs bounds the total wait before giving up
	PollTimeoutSecs int `toml:"poll_timeout_secs"`
}

// StorageConfig selects the durable store backend.
type StorageConfig struct {
	// Backend is "file" or "sqlite"
	Backend string `toml:"backend"`
	// Dir overrides the default data directory (~/.fredbear)
	Dir string `toml:"dir"`
}

// LoggingConfig controls file logging.
type LoggingConfig struct {
	// Debug lowers the log level to debug
	Debug bool `toml:"debug"`
	// Dir overrides the default log directory (~/.fredbear/logs)
	Dir string `toml:"dir"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark" or "light"
	Theme string `toml:"theme"`
	// CompactMode uses a more compact layout
	CompactMode bool `toml:"compact_mode"`
	// SidebarWidth is the session sidebar width in cells
	SidebarWidth int `toml:"sidebar_width"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// DefaultSystemInstruction is the base persona used when none is configured.
const DefaultSystemInstruction = "You are Fredbear555Ai, a Universal Hybrid Intelligence. " +
	"You unify the creative reasoning of ChatGPT, the high-speed processing of Gemini, " +
	"and the analytical depth of other advanced models. Your IQ is 150+. " +
	"You are designed to perform Deep Research, provide comprehensive answers, " +
	"and solve complex problems with extreme precision."

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "2.1.0",

		Backend: BackendConfig{
			FreeModel:         "gemini-2.5-flash",
			PremiumModel:      "gemini-3-pro-preview",
			ImageModel:        "gemini-2.5-flash-image",
			VideoModel:        "veo-3.1-fast-generate-preview",
			RequestsPerMinute: 60,
		},

		Generation: GenerationConfig{
			Mode:              ModeChat,
			SystemInstruction: DefaultSystemInstruction,
			Temperature:       0.7,
			Thinking:          ThinkingMode{Kind: ThinkingAuto},
		},

		Video: VideoConfig{
			PollIntervalSecs: 5,
			PollTimeoutSecs:  600,
		},

		Storage: StorageConfig{
			Backend: "file",
		},

		UI: UIConfig{
			Theme:        "dark",
			SidebarWidth: 28,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the fredbear configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".fredbear"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only) to protect
// the API key.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file, falling back to
// defaults when no file exists. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	// SECURITY: Check and fix file permissions if needed
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	cfg := &Config{}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	fillDefaults(cfg, md)
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults. Fields where zero
// is a legitimate setting (temperature 0.0, unlimited request rate) consult
// the decode metadata so an explicit zero in the file survives.
func fillDefaults(cfg *Config, md toml.MetaData) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	if cfg.Backend.FreeModel == "" {
		cfg.Backend.FreeModel = defaults.Backend.FreeModel
	}
	if cfg.Backend.PremiumModel == "" {
		cfg.Backend.PremiumModel = defaults.Backend.PremiumModel
	}
	if cfg.Backend.ImageModel == "" {
		cfg.Backend.ImageModel = defaults.Backend.ImageModel
	}
	if cfg.Backend.VideoModel == "" {
		cfg.Backend.VideoModel = defaults.Backend.VideoModel
	}
	if !md.IsDefined("backend", "requests_per_minute") {
		cfg.Backend.RequestsPerMinute = defaults.Backend.RequestsPerMinute
	}

	if cfg.Generation.Mode == "" {
		cfg.Generation.Mode = defaults.Generation.Mode
	}
	if cfg.Generation.SystemInstruction == "" {
		cfg.Generation.SystemInstruction = defaults.Generation.SystemInstruction
	}
	if !md.IsDefined("generation", "temperature") {
		cfg.Generation.Temperature = defaults.Generation.Temperature
	}
	if cfg.Generation.Thinking.Kind == "" {
		cfg.Generation.Thinking = defaults.Generation.Thinking
	}

	if cfg.Video.PollIntervalSecs == 0 {
		cfg.Video.PollIntervalSecs = defaults.Video.PollIntervalSecs
	}
	if cfg.Video.PollTimeoutSecs == 0 {
		cfg.Video.PollTimeoutSecs = defaults.Video.PollTimeoutSecs
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaults.Storage.Backend
	}

	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.SidebarWidth == 0 {
		cfg.UI.SidebarWidth = defaults.UI.SidebarWidth
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// SECURITY: Ensure permissions are correct even if file already existed
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# fredbear configuration file")
	fmt.Fprintln(file, "# Generated by fredbear - edit with care")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
// Environment always wins over the file.
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Backend.APIKey = key
	}
	if key := os.Getenv("FREDBEAR_API_KEY"); key != "" {
		c.Backend.APIKey = key
	}
	if model := os.Getenv("FREDBEAR_FREE_MODEL"); model != "" {
		c.Backend.FreeModel = model
	}
	if model := os.Getenv("FREDBEAR_PREMIUM_MODEL"); model != "" {
		c.Backend.PremiumModel = model
	}
	if mode := os.Getenv("FREDBEAR_MODE"); mode != "" {
		c.Generation.Mode = Mode(strings.ToLower(mode))
	}
	if thinking := os.Getenv("FREDBEAR_THINKING"); thinking != "" {
		if parsed, err := ParseThinkingMode(thinking); err == nil {
			c.Generation.Thinking = parsed
		}
	}
	if dir := os.Getenv("FREDBEAR_DATA_DIR"); dir != "" {
		c.Storage.Dir = dir
	}
	if debug := os.Getenv("FREDBEAR_DEBUG"); debug != "" {
		if v, err := strconv.ParseBool(debug); err == nil {
			c.Logging.Debug = v
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs ValidateErrors

	validMode := false
	for _, m := range ValidModes {
		if c.Generation.Mode == m {
			validMode = true
			break
		}
	}
	if !validMode {
		errs = append(errs, ValidationError{
			Field:   "generation.mode",
			Message: fmt.Sprintf("unknown mode %q", c.Generation.Mode),
		})
	}

	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "generation.temperature",
			Message: fmt.Sprintf("must be in [0, 2], got %g", c.Generation.Temperature),
		})
	}

	switch c.Generation.Thinking.Kind {
	case ThinkingAuto, ThinkingFast, ThinkingDeep, ThinkingBudget:
	default:
		errs = append(errs, ValidationError{
			Field:   "generation.thinking",
			Message: fmt.Sprintf("unknown thinking mode %q", c.Generation.Thinking.Kind),
		})
	}

	if c.Video.PollIntervalSecs < 1 {
		errs = append(errs, ValidationError{
			Field:   "video.poll_interval_secs",
			Message: "must be at least 1",
		})
	}
	if c.Video.PollTimeoutSecs < c.Video.PollIntervalSecs {
		errs = append(errs, ValidationError{
			Field:   "video.poll_timeout_secs",
			Message: "must be at least the poll interval",
		})
	}

	if c.Storage.Backend != "file" && c.Storage.Backend != "sqlite" {
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("must be \"file\" or \"sqlite\", got %q", c.Storage.Backend),
		})
	}

	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("must be \"dark\" or \"light\", got %q", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DataDir resolves the data directory, honoring the Storage.Dir override.
func (c *Config) DataDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	return ConfigDir()
}

// LogDir resolves the log directory, honoring the Logging.Dir override.
func (c *Config) LogDir() (string, error) {
	if c.Logging.Dir != "" {
		return c.Logging.Dir, nil
	}
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}
