// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/siteassist/internal/navigation"
	"github.com/jeranaias/siteassist/internal/ui/app"
)

// runTUI runs the full-screen site browser, or line mode without a terminal.
func runTUI(cmd *cobra.Command, st *state) error {
	if !Interactive() {
		return runLineChat(cmd, st)
	}

	logger, closeLog := st.logger(false)
	defer closeLog()

	store, err := st.store()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// One pending reload is enough; the host re-reads the store on receipt.
	reloads := make(chan struct{}, 1)
	notify := func() {
		select {
		case reloads <- struct{}{}:
		default:
		}
	}
	if err := st.startWatcher(ctx, store, logger, notify); err != nil {
		logger.Warn("content hot reload disabled", "error", err)
	}

	cfg := st.cfg
	m := app.New(app.Options{
		Completer:          st.completer(store, logger),
		Site:               store,
		Selector:           st.selector(),
		Opener:             navigation.SystemOpener{Logger: logger},
		Theme:              cfg.UI.Theme,
		StartPath:          cfg.UI.StartPath,
		StartOpen:          cfg.Widget.StartOpen,
		SmoothScroll:       cfg.Widget.SmoothScroll,
		HashChangeDelay:    cfg.Widget.HashChangeDelay(),
		ErrorFlashDuration: cfg.Widget.ErrorFlash(),
		RequestTimeout:     cfg.Completion.Timeout(),
		Reloads:            reloads,
		Logger:             logger,
	})

	logger.Info("terminal host starting", "path", cfg.UI.StartPath, "locale", cfg.Content.Locale)
	return runHost(tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()), m)
}

// programRunner is the part of *tea.Program the host needs.
type programRunner interface {
	Run() (tea.Model, error)
}

// runHost runs p and unmounts the controller however the program ends.
func runHost(p programRunner, m *app.Model) error {
	defer m.Controller().Unmount()
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run terminal host: %w", err)
	}
	return nil
}
