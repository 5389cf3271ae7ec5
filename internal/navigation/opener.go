// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package navigation provides the client-side router and the system link opener.
package navigation

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Error variables for link opening.
var (
	// ErrEmptyLink indicates there is nothing to open.
	ErrEmptyLink = errors.New("empty link")

	// ErrUnsafeLink indicates a link that would be parsed as a command flag.
	ErrUnsafeLink = errors.New("link starts with '-'")

	// ErrUnsupportedScheme indicates a link that is not a web or mail URL.
	ErrUnsupportedScheme = errors.New("only http, https and mailto links can be opened")

	// ErrUnsupportedPlatform indicates no launcher exists for this OS.
	ErrUnsupportedPlatform = errors.New("opening links is not supported on this platform")
)

// SystemOpener opens links in the user's default browser. The browser runs
// in its own session so it never shares the terminal with the widget.
type SystemOpener struct {
	Logger *slog.Logger
}

// OpenIsolated opens raw, unmodified, in the default browser. Only absolute
// http and https URLs with a host, and mailto URLs, reach the launcher;
// everything else fails with ErrUnsupportedScheme.
func (o SystemOpener) OpenIsolated(raw string) error {
	link := strings.TrimSpace(raw)
	if link == "" {
		return ErrEmptyLink
	}
	if strings.HasPrefix(link, "-") {
		return ErrUnsafeLink
	}
	if err := checkLaunchable(link); err != nil {
		return err
	}

	if o.Logger != nil {
		o.Logger.Debug("opening link in browser", "length", len(link))
	}
	if err := launch(link); err != nil {
		return fmt.Errorf("open %q: %w", link, err)
	}
	return nil
}

// checkLaunchable accepts web and mail URLs. Relative paths, file URLs and
// drive-letter paths are refused.
func checkLaunchable(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedScheme, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("%w: missing host", ErrUnsupportedScheme)
		}
		return nil
	case "mailto":
		if u.Opaque == "" {
			return fmt.Errorf("%w: missing address", ErrUnsupportedScheme)
		}
		return nil
	default:
		return ErrUnsupportedScheme
	}
}

// OpenerFunc adapts a function to the widget's Opener interface.
type OpenerFunc func(raw string) error

// OpenIsolated calls f.
func (f OpenerFunc) OpenIsolated(raw string) error {
	return f(raw)
}
