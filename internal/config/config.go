// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for siteassist.
//
// Configuration file locations (in order of precedence):
//   - ~/.siteassist/config.toml
//   - ~/.siteassist/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/siteassist/internal/util"
)

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = "1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete siteassist configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Completion CompletionConfig `toml:"completion" json:"completion"`
	Widget     WidgetConfig     `toml:"widget" json:"widget"`
	Content    ContentConfig    `toml:"content" json:"content"`
	UI         UIConfig         `toml:"ui" json:"ui"`
	Logging    LoggingConfig    `toml:"logging" json:"logging"`
	Server     ServerConfig     `toml:"server" json:"server"`
}

// CompletionConfig describes the external message completion service.
type CompletionConfig struct {
	// Endpoint is the full URL that receives {"messages": [...]}.
	Endpoint string `toml:"endpoint" json:"endpoint"`
	// APIKey is sent as a Bearer token when set.
	APIKey string `toml:"api_key" json:"api_key"`
	// Model is forwarded as "model" when set.
	Model string `toml:"model" json:"model"`
	// TimeoutSecs bounds a single request.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RequestsPerMinute throttles outgoing requests (0 = unlimited).
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
}

// WidgetConfig contains assistant widget behavior.
type WidgetConfig struct {
	// SuggestionCount is the size of the initial suggestion batch.
	SuggestionCount int `toml:"suggestion_count" json:"suggestion_count"`
	// HashChangeDelayMs is the wait between an internal navigation and the
	// synthetic hash-change notification.
	HashChangeDelayMs int `toml:"hash_change_delay_ms" json:"hash_change_delay_ms"`
	// ErrorFlashMs is how long the error state is shown after a failure.
	ErrorFlashMs int `toml:"error_flash_ms" json:"error_flash_ms"`
	// StartOpen opens the widget when the terminal host starts.
	StartOpen bool `toml:"start_open" json:"start_open"`
	// SmoothScroll animates scroll-to-latest.
	SmoothScroll bool `toml:"smooth_scroll" json:"smooth_scroll"`
}

// ContentConfig locates the conversation content catalog.
type ContentConfig struct {
	// Path is a TOML, JSON or YAML catalog. Empty uses the built-in catalog.
	Path string `toml:"path" json:"path"`
	// Locale selects the catalog locale (BCP 47).
	Locale string `toml:"locale" json:"locale"`
	// Watch reloads the catalog when the file changes.
	Watch bool `toml:"watch" json:"watch"`
}

// UIConfig contains terminal host settings.
type UIConfig struct {
	// Theme is "auto", "dark" or "light".
	Theme string `toml:"theme" json:"theme"`
	// StartPath is the first page shown.
	StartPath string `toml:"start_path" json:"start_path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `toml:"level" json:"level"`
	// File receives JSON logs (empty = ~/.siteassist/siteassist.log).
	File string `toml:"file" json:"file"`
}

// ServerConfig contains stub completion service settings.
type ServerConfig struct {
	Addr              string   `toml:"addr" json:"addr"`
	AllowedOrigins    []string `toml:"allowed_origins" json:"allowed_origins"`
	RequestsPerMinute int      `toml:"requests_per_minute" json:"requests_per_minute"`
	// LatencyMs delays every reply, to exercise the loading state.
	LatencyMs int `toml:"latency_ms" json:"latency_ms"`
	// FailureRate is the fraction of requests answered with a 503.
	FailureRate float64 `toml:"failure_rate" json:"failure_rate"`
}

// Timeout returns the request timeout.
func (c CompletionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// HashChangeDelay returns the hash-change delay.
func (w WidgetConfig) HashChangeDelay() time.Duration {
	return time.Duration(w.HashChangeDelayMs) * time.Millisecond
}

// ErrorFlash returns the error flash duration.
func (w WidgetConfig) ErrorFlash() time.Duration {
	return time.Duration(w.ErrorFlashMs) * time.Millisecond
}

// Latency returns the artificial reply latency.
func (s ServerConfig) Latency() time.Duration {
	return time.Duration(s.LatencyMs) * time.Millisecond
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Completion: CompletionConfig{
			Endpoint:          "http://127.0.0.1:8787/v1/chat/completions",
			TimeoutSecs:       30,
			RequestsPerMinute: 30,
		},
		Widget: WidgetConfig{
			SuggestionCount:   2,
			HashChangeDelayMs: 100,
			ErrorFlashMs:      1500,
			SmoothScroll:      true,
		},
		Content: ContentConfig{
			Locale: "en",
		},
		UI: UIConfig{
			Theme:     "auto",
			StartPath: "/",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:              "127.0.0.1:8787",
			AllowedOrigins:    []string{"*"},
			RequestsPerMinute: 120,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the siteassist configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".siteassist"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "siteassist.log"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions tightens config files to 0600 since they may hold
// an API key.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	loaded := false
	if path, err := ConfigPathTOML(); err == nil && fileExists(path) {
		if err := LoadTOML(cfg, path); err != nil {
			loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			cfg = Default()
		} else {
			loaded = true
		}
	}

	if !loaded {
		if path, err := ConfigPathJSON(); err == nil && fileExists(path) {
			if err := LoadJSON(cfg, path); err != nil {
				loadErr = errors.Join(loadErr, fmt.Errorf("failed to load JSON config: %w", err))
				cfg = Default()
			}
		}
	}

	if err := finish(cfg); err != nil {
		return nil, err
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish applies environment overrides, defaults and validation.
func finish(cfg *Config) error {
	LoadDotEnv()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf strings.Builder
	buf.WriteString("# siteassist configuration file\n")
	buf.WriteString("# Generated by siteassist - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
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
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Completion
	if c.Completion.Endpoint != "" {
		u, err := url.Parse(c.Completion.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "completion.endpoint",
				Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host/path", c.Completion.Endpoint),
			})
		}
	}
	if c.Completion.TimeoutSecs < 1 || c.Completion.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "completion.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.Completion.TimeoutSecs),
		})
	}
	if c.Completion.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{
			Field:   "completion.requests_per_minute",
			Message: "must not be negative",
		})
	}

	// Widget
	if c.Widget.SuggestionCount < 0 || c.Widget.SuggestionCount > 10 {
		errs = append(errs, ValidationError{
			Field:   "widget.suggestion_count",
			Message: fmt.Sprintf("must be between 0 and 10, got %d", c.Widget.SuggestionCount),
		})
	}
	if c.Widget.HashChangeDelayMs < 0 || c.Widget.HashChangeDelayMs > 5000 {
		errs = append(errs, ValidationError{
			Field:   "widget.hash_change_delay_ms",
			Message: fmt.Sprintf("must be between 0 and 5000, got %d", c.Widget.HashChangeDelayMs),
		})
	}
	if c.Widget.ErrorFlashMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "widget.error_flash_ms",
			Message: "must not be negative",
		})
	}

	// Content
	if c.Content.Path != "" {
		switch strings.ToLower(filepath.Ext(c.Content.Path)) {
		case ".toml", ".json", ".yaml", ".yml":
		default:
			errs = append(errs, ValidationError{
				Field:   "content.path",
				Message: fmt.Sprintf("unsupported catalog extension '%s', must be .toml, .json, .yaml or .yml", filepath.Ext(c.Content.Path)),
			})
		}
	}

	// UI
	validThemes := map[string]bool{"auto": true, "dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}
	if !strings.HasPrefix(c.UI.StartPath, "/") {
		errs = append(errs, ValidationError{
			Field:   "ui.start_path",
			Message: fmt.Sprintf("'%s' must be root-relative", c.UI.StartPath),
		})
	}

	// Logging
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}

	// Server
	if c.Server.FailureRate < 0 || c.Server.FailureRate > 1 {
		errs = append(errs, ValidationError{
			Field:   "server.failure_rate",
			Message: fmt.Sprintf("must be between 0 and 1, got %v", c.Server.FailureRate),
		})
	}
	if c.Server.LatencyMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.latency_ms",
			Message: "must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value fields.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Completion.TimeoutSecs == 0 {
		c.Completion.TimeoutSecs = d.Completion.TimeoutSecs
	}
	if c.Widget.HashChangeDelayMs == 0 {
		c.Widget.HashChangeDelayMs = d.Widget.HashChangeDelayMs
	}
	if c.Widget.ErrorFlashMs == 0 {
		c.Widget.ErrorFlashMs = d.Widget.ErrorFlashMs
	}
	if c.Content.Locale == "" {
		c.Content.Locale = d.Content.Locale
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.StartPath == "" {
		c.UI.StartPath = d.UI.StartPath
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = d.Server.AllowedOrigins
	}
	if c.Server.RequestsPerMinute == 0 {
		c.Server.RequestsPerMinute = d.Server.RequestsPerMinute
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// LoadDotEnv loads ./.env into the process environment. Variables that are
// already set win. A missing file is not an error.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env: %v\n", err)
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - SITEASSIST_ENDPOINT: overrides completion.endpoint
//   - SITEASSIST_API_KEY: overrides completion.api_key
//   - SITEASSIST_MODEL: overrides completion.model
//   - SITEASSIST_TIMEOUT: overrides completion.timeout_secs
//   - SITEASSIST_LOCALE: overrides content.locale
//   - SITEASSIST_CONTENT: overrides content.path
//   - SITEASSIST_THEME: overrides ui.theme
//   - SITEASSIST_LOG_LEVEL: overrides logging.level
//   - SITEASSIST_LOG_FILE: overrides logging.file
//   - SITEASSIST_ADDR: overrides server.addr
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SITEASSIST_ENDPOINT"); v != "" {
		c.Completion.Endpoint = v
	}
	if v := os.Getenv("SITEASSIST_API_KEY"); v != "" {
		c.Completion.APIKey = v
	}
	if v := os.Getenv("SITEASSIST_MODEL"); v != "" {
		c.Completion.Model = v
	}
	if v := os.Getenv("SITEASSIST_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Completion.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("SITEASSIST_LOCALE"); v != "" {
		c.Content.Locale = v
	}
	if v := os.Getenv("SITEASSIST_CONTENT"); v != "" {
		c.Content.Path = v
	}
	if v := os.Getenv("SITEASSIST_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("SITEASSIST_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SITEASSIST_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("SITEASSIST_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Server.AllowedOrigins != nil {
		clone.Server.AllowedOrigins = make([]string, len(c.Server.AllowedOrigins))
		copy(clone.Server.AllowedOrigins, c.Server.AllowedOrigins)
	}
	return &clone
}

// String returns a JSON representation with the API key redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Completion.APIKey != "" {
		safe.Completion.APIKey = "[REDACTED]"
	}

	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
