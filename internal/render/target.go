// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns assistant markdown into styled terminal text.
package render

import (
	"net/url"
	"strings"
)

// Kind is the classification of a link destination.
type Kind int

const (
	// Unknown has no recognizable scheme and is not a root-relative path.
	Unknown Kind = iota
	// Internal is a root-relative path handled by the client-side router.
	Internal
	// External has a URL scheme and opens outside the application.
	External
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Internal:
		return "internal"
	case External:
		return "external"
	default:
		return "unknown"
	}
}

// Target is a classified link destination.
type Target struct {
	Kind Kind
	// Raw is the destination exactly as written.
	Raw string
}

// Classify decides how a link destination is activated.
func Classify(raw string) Target {
	t := Target{Kind: Unknown, Raw: raw}
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") {
		t.Kind = Internal
		return t
	}

	u, err := url.Parse(s)
	if err == nil && u.Scheme != "" {
		t.Kind = External
	}
	return t
}

// Path returns the router path for an Internal target.
func (t Target) Path() string {
	return strings.TrimSpace(t.Raw)
}
