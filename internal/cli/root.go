// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/siteassist/internal/config"
)

// Version information (set at build time).
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// globalFlags override the loaded configuration for one run.
type globalFlags struct {
	configPath  string
	endpoint    string
	locale      string
	contentPath string
	theme       string
	logLevel    string
}

// state is shared by every command of one invocation.
type state struct {
	flags globalFlags
	cfg   *config.Config
}

// skipConfig lists commands that run without loading configuration.
var skipConfig = map[string]bool{
	"version": true,
	"help":    true,
	"path":    true,
	"init":    true,
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	st := &state{}

	var (
		startOpen bool
		startPath string
		noSmooth  bool
	)

	root := &cobra.Command{
		Use:   "siteassist",
		Short: "A marketing site with a conversational assistant",
		Long: `siteassist shows the site's pages in your terminal with an assistant
panel you can open at any time. Ask about the product, follow links the
assistant suggests, or tap a starter question.

Press ? to open the assistant, Esc to close it and q to quit.
Without a terminal, siteassist falls back to line mode (siteassist chat).`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipConfig[cmd.Name()] {
				return nil
			}
			return st.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("open") {
				st.cfg.Widget.StartOpen = startOpen
			}
			if startPath != "" {
				st.cfg.UI.StartPath = startPath
			}
			if noSmooth {
				st.cfg.Widget.SmoothScroll = false
			}
			return runTUI(cmd, st)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&st.flags.configPath, "config", "c", "", "config file (default ~/.siteassist/config.toml)")
	pf.StringVar(&st.flags.endpoint, "endpoint", "", "completion service URL")
	pf.StringVarP(&st.flags.locale, "locale", "l", "", "content locale, e.g. en or es")
	pf.StringVar(&st.flags.contentPath, "content", "", "content catalog file (TOML, JSON or YAML)")
	pf.StringVar(&st.flags.theme, "theme", "", "color theme: auto, dark or light")
	pf.StringVar(&st.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.Flags().BoolVar(&startOpen, "open", false, "open the assistant on start")
	root.Flags().StringVar(&startPath, "path", "", "first page to show")
	root.Flags().BoolVar(&noSmooth, "no-smooth", false, "disable smooth scrolling")

	root.SetVersionTemplate(versionLine() + "\n")

	root.AddCommand(
		newChatCmd(st),
		newAskCmd(st),
		newServeCmd(st),
		newSuggestCmd(st),
		newConfigCmd(st),
		newVersionCmd(),
	)
	return root
}

// load reads the config file, then applies command line overrides.
func (st *state) load() error {
	var (
		cfg *config.Config
		err error
	)
	if st.flags.configPath != "" {
		cfg, err = config.LoadFromPath(st.flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if cfg == nil {
		return err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v (using defaults)\n", ErrorStyle.Render("Warning:"), err)
	}

	if st.flags.endpoint != "" {
		cfg.Completion.Endpoint = st.flags.endpoint
	}
	if st.flags.locale != "" {
		cfg.Content.Locale = st.flags.locale
	}
	if st.flags.contentPath != "" {
		cfg.Content.Path = st.flags.contentPath
	}
	if st.flags.theme != "" {
		cfg.UI.Theme = st.flags.theme
	}
	if st.flags.logLevel != "" {
		cfg.Logging.Level = st.flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid option: %w", err)
	}

	st.cfg = cfg
	config.SetGlobal(cfg)
	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("Error:"), err)

		var verr config.ValidateErrors
		if errors.As(err, &verr) {
			return 2
		}
		return 1
	}
	return 0
}
