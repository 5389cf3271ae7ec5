// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for siteassist.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// .env files, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - CompletionConfig: Where the widget sends conversation history
//   - WidgetConfig: Suggestion count, timings and start state
//   - ServerConfig: Stub completion service settings
//   - LoggingConfig: Log level and log file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (SITEASSIST_*), including values from ./.env
//   - ~/.siteassist/config.toml
//   - ~/.siteassist/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Set up logging:
//
//	logger, closeLog := config.SetupLogger(cfg.Logging.File, cfg.Logging.SlogLevel(), true)
//	defer closeLog()
package config
