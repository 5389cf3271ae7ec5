// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jeranaias/siteassist/internal/config"
	"github.com/jeranaias/siteassist/internal/content"
	"github.com/jeranaias/siteassist/internal/model"
	"github.com/jeranaias/siteassist/internal/server"
	"github.com/jeranaias/siteassist/internal/suggest"
	"github.com/jeranaias/siteassist/internal/transport"
)

// =============================================================================
// SHARED RUNTIME
// =============================================================================

// setupLogger is replaced in tests.
var setupLogger = config.SetupLogger

// logger builds the run's logger. console=false keeps stderr clean for the
// full-screen host.
func (st *state) logger(console bool) (*slog.Logger, func() error) {
	return setupLogger(st.cfg.Logging.File, st.cfg.Logging.SlogLevel(), console)
}

// store loads the content catalog for the configured locale.
func (st *state) store() (*content.Store, error) {
	cat, err := content.Load(st.cfg.Content.Path)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	return content.NewStore(cat, st.cfg.Content.Locale), nil
}

// completer returns the configured completion client, or a local completer
// answering from store when no endpoint is set.
func (st *state) completer(store *content.Store, logger *slog.Logger) transport.Completer {
	cc := st.cfg.Completion
	if cc.Endpoint == "" {
		logger.Info("no completion endpoint configured, answering from the content catalog")
		return localCompleter(store)
	}
	return transport.NewClient(transport.Options{
		Endpoint:          cc.Endpoint,
		APIKey:            cc.APIKey,
		Model:             cc.Model,
		Timeout:           cc.Timeout(),
		RequestsPerMinute: cc.RequestsPerMinute,
		Logger:            logger,
	})
}

// selector returns a suggestion selector of the configured batch size.
func (st *state) selector() *suggest.Selector {
	return suggest.NewSelector(suggest.NewSource(), st.cfg.Widget.SuggestionCount)
}

// localCompleter answers with the catalog's canned replies.
func localCompleter(store *content.Store) transport.Completer {
	return transport.CompleterFunc(func(ctx context.Context, turns []model.Turn) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		for i := len(turns) - 1; i >= 0; i-- {
			if turns[i].IsUser() {
				return server.Answer(store.Content(), turns[i].Content), nil
			}
		}
		return server.Answer(store.Content(), ""), nil
	})
}

// startWatcher reloads the catalog file into store while ctx is live.
// onReload runs after each successful swap. Nothing is watched for the
// embedded catalog or when watching is disabled.
func (st *state) startWatcher(ctx context.Context, store *content.Store, logger *slog.Logger, onReload func()) error {
	if !st.cfg.Content.Watch || st.cfg.Content.Path == "" {
		return nil
	}
	w, err := content.NewWatcher(st.cfg.Content.Path, store, logger)
	if err != nil {
		return fmt.Errorf("watch content: %w", err)
	}
	if onReload != nil {
		w.OnReload = func(*content.Catalog) { onReload() }
	}
	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("content watcher stopped", "error", err)
		}
	}()
	logger.Info("watching content", "path", st.cfg.Content.Path)
	return nil
}
