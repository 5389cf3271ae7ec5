// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateHome points the config directory at a temp dir and clears overrides.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range []string{
		"SITEASSIST_ENDPOINT", "SITEASSIST_API_KEY", "SITEASSIST_MODEL",
		"SITEASSIST_TIMEOUT", "SITEASSIST_LOCALE", "SITEASSIST_CONTENT",
		"SITEASSIST_THEME", "SITEASSIST_LOG_LEVEL", "SITEASSIST_LOG_FILE",
		"SITEASSIST_ADDR",
	} {
		t.Setenv(k, "")
	}
	return home
}

// TestConfig_ConcurrentAccess tests that Global() and SetGlobal() can be
// safely called concurrently.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	isolateHome(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			c := Default()
			c.Version = "test"
			SetGlobal(c)
		}()

		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

func TestConfig_SetGlobalOverwrites(t *testing.T) {
	isolateHome(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	c := Default()
	c.Completion.Model = "custom"
	SetGlobal(c)

	if got := Global().Completion.Model; got != "custom" {
		t.Errorf("Global().Completion.Model = %q, want %q", got, "custom")
	}
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()

	if cfg.Widget.SuggestionCount != 2 {
		t.Errorf("SuggestionCount = %d, want 2", cfg.Widget.SuggestionCount)
	}
	if cfg.Widget.HashChangeDelay() != 100*time.Millisecond {
		t.Errorf("HashChangeDelay() = %v, want 100ms", cfg.Widget.HashChangeDelay())
	}
	if cfg.Widget.ErrorFlash() != 1500*time.Millisecond {
		t.Errorf("ErrorFlash() = %v, want 1.5s", cfg.Widget.ErrorFlash())
	}
	if cfg.Completion.Timeout() != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", cfg.Completion.Timeout())
	}
	if cfg.UI.StartPath != "/" {
		t.Errorf("StartPath = %q, want /", cfg.UI.StartPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad endpoint scheme", func(c *Config) { c.Completion.Endpoint = "ftp://x/y" }, "completion.endpoint"},
		{"endpoint without host", func(c *Config) { c.Completion.Endpoint = "http:///v1" }, "completion.endpoint"},
		{"timeout too small", func(c *Config) { c.Completion.TimeoutSecs = 0 }, "completion.timeout_secs"},
		{"negative rpm", func(c *Config) { c.Completion.RequestsPerMinute = -1 }, "completion.requests_per_minute"},
		{"too many suggestions", func(c *Config) { c.Widget.SuggestionCount = 11 }, "widget.suggestion_count"},
		{"hash delay too long", func(c *Config) { c.Widget.HashChangeDelayMs = 6000 }, "widget.hash_change_delay_ms"},
		{"catalog extension", func(c *Config) { c.Content.Path = "site.ini" }, "content.path"},
		{"theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"start path", func(c *Config) { c.UI.StartPath = "pricing" }, "ui.start_path"},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"failure rate", func(c *Config) { c.Server.FailureRate = 1.5 }, "server.failure_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs))
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestConfig_ValidateAcceptsEmptyEndpoint(t *testing.T) {
	cfg := Default()
	cfg.Completion.Endpoint = ""
	assert.NoError(t, cfg.Validate())
}

func TestConfig_SetDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	d := Default()
	assert.Equal(t, d.Version, cfg.Version)
	assert.Equal(t, d.Completion.TimeoutSecs, cfg.Completion.TimeoutSecs)
	assert.Equal(t, d.Widget.HashChangeDelayMs, cfg.Widget.HashChangeDelayMs)
	assert.Equal(t, d.Content.Locale, cfg.Content.Locale)
	assert.Equal(t, d.Server.AllowedOrigins, cfg.Server.AllowedOrigins)
}

func TestConfig_ApplyEnvOverrides(t *testing.T) {
	isolateHome(t)
	t.Setenv("SITEASSIST_ENDPOINT", "https://api.example.com/chat")
	t.Setenv("SITEASSIST_API_KEY", "sk-test")
	t.Setenv("SITEASSIST_TIMEOUT", "12")
	t.Setenv("SITEASSIST_LOCALE", "es")
	t.Setenv("SITEASSIST_LOG_LEVEL", "debug")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "https://api.example.com/chat", cfg.Completion.Endpoint)
	assert.Equal(t, "sk-test", cfg.Completion.APIKey)
	assert.Equal(t, 12, cfg.Completion.TimeoutSecs)
	assert.Equal(t, "es", cfg.Content.Locale)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestConfig_ApplyEnvOverridesIgnoresBadTimeout(t *testing.T) {
	isolateHome(t)
	t.Setenv("SITEASSIST_TIMEOUT", "soon")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, 30, cfg.Completion.TimeoutSecs)
}

func TestConfig_SaveAndLoadTOML(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Widget.SuggestionCount = 3
	cfg.Content.Locale = "es"
	require.NoError(t, SaveTOML(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# siteassist configuration file"))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Widget.SuggestionCount)
	assert.Equal(t, "es", loaded.Content.Locale)
}

func TestConfig_SaveAndLoadJSON(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.UI.Theme = "dark"
	require.NoError(t, SaveJSON(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "dark", loaded.UI.Theme)
}

func TestConfig_LoadFromPathRejectsInvalid(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"neon\"\n"), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ui.theme")
}

func TestConfig_LoadFixesPermissions(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = \"1\"\n"), 0644))

	_, err := LoadFromPath(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("mode = %o, want 0600", info.Mode().Perm())
	}
}

func TestConfig_LoadWithoutFilesUsesDefaults(t *testing.T) {
	isolateHome(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Widget, cfg.Widget)
}

func TestConfig_LoadReadsHomeConfig(t *testing.T) {
	isolateHome(t)
	require.NoError(t, EnsureConfigDir())

	path, err := ConfigPathTOML()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("[widget]\nstart_open = true\n"), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Widget.StartOpen)
}

func TestConfig_LoadDotEnv(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SITEASSIST_MODEL=from-dotenv\n"), 0600))
	t.Chdir(dir)
	os.Unsetenv("SITEASSIST_MODEL")
	t.Cleanup(func() { os.Unsetenv("SITEASSIST_MODEL") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Completion.Model)
}

func TestConfig_Clone(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.Server.AllowedOrigins[0] = "https://changed.example"

	if cfg.Server.AllowedOrigins[0] != "*" {
		t.Errorf("Clone shares AllowedOrigins with original")
	}
}

func TestConfig_StringRedactsKey(t *testing.T) {
	cfg := Default()
	cfg.Completion.APIKey = "sk-secret"

	s := cfg.String()
	assert.NotContains(t, s, "sk-secret")
	assert.Contains(t, s, "[REDACTED]")
	assert.Equal(t, "sk-secret", cfg.Completion.APIKey)
}

func TestLogging_SlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := (LoggingConfig{Level: in}).SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogging_SetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("completion sent", "turns", 3)

	assert.Contains(t, stderr.String(), "completion sent")
	assert.NotContains(t, stderr.String(), "hidden")
	assert.Contains(t, file.String(), `"msg":"completion sent"`)
	assert.Contains(t, file.String(), `"turns":3`)
}

func TestLogging_SetupLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "siteassist.log")

	logger, closeLog := SetupLogger(path, slog.LevelInfo, false)
	logger.Info("hello")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}
