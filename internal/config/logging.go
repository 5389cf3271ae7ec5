// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// logging.go - slog setup for siteassist.
package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// SlogLevel maps the configured level name to a slog.Level.
// Unknown names map to Info.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger creates a logger writing JSON to logFile and, when console is
// true, text to stderr. The full-screen UI passes console=false so log lines
// never land on the alternate screen.
// Returns the logger and a cleanup function to close the file.
func SetupLogger(logFile string, level slog.Level, console bool) (*slog.Logger, func() error) {
	opts := &slog.HandlerOptions{Level: level}
	stderrHandler := slog.NewTextHandler(os.Stderr, opts)

	if logFile == "" {
		if p, err := DefaultLogPath(); err == nil {
			logFile = p
		}
	}

	var file *os.File
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err == nil {
			file, _ = os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		}
	}

	if file == nil {
		if console {
			return slog.New(stderrHandler), func() error { return nil }
		}
		return slog.New(slog.NewTextHandler(io.Discard, opts)), func() error { return nil }
	}

	fileHandler := slog.NewJSONHandler(file, opts)
	var logger *slog.Logger
	if console {
		logger = slog.New(slogmulti.Fanout(stderrHandler, fileHandler))
	} else {
		logger = slog.New(fileHandler)
	}

	return logger, file.Close
}

// SetupLoggerWithWriters creates a logger with custom writers (for testing).
func SetupLoggerWithWriters(stderr, file io.Writer, level slog.Level) *slog.Logger {
	stderrHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(stderrHandler, fileHandler))
}
