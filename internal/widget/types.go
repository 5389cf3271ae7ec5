// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package widget implements the conversational assistant controller.
package widget

import (
	"github.com/jeranaias/siteassist/internal/content"
)

// =============================================================================
// STATE
// =============================================================================

// State is the controller's externally visible state.
type State int

const (
	Closed State = iota
	OpenEmpty
	OpenIdle
	OpenLoading
	OpenError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case OpenEmpty:
		return "open-empty"
	case OpenIdle:
		return "open-idle"
	case OpenLoading:
		return "open-loading"
	case OpenError:
		return "open-error"
	default:
		return "unknown"
	}
}

// IsOpen returns true for every Open* state.
func (s State) IsOpen() bool {
	return s != Closed
}

// =============================================================================
// NOTICES
// =============================================================================

// Severity of a Notice.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a transient message shown outside the conversation.
type Notice struct {
	Title       string
	Description string
	Severity    Severity
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// Notifier displays transient notices.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notice)

// Notify calls f.
func (f NotifierFunc) Notify(n Notice) { f(n) }

// ContentSource supplies the current conversation content. It is read on
// every pass, so a hot-reloaded catalog takes effect immediately.
type ContentSource interface {
	Content() content.Content
}

// StaticContent is a ContentSource that never changes.
type StaticContent content.Content

// Content returns the content.
func (s StaticContent) Content() content.Content { return content.Content(s) }

// Router performs client-side navigation.
type Router interface {
	Navigate(path string)
}

// Opener opens a link in an isolated context outside the application.
type Opener interface {
	OpenIsolated(raw string) error
}

// ScrollLocker suspends host page scrolling. Lock returns the release func.
type ScrollLocker interface {
	Lock() (release func())
}

// NopLocker is a ScrollLocker for hosts without a scrollable page.
type NopLocker struct{}

// Lock returns a release func that does nothing.
func (NopLocker) Lock() func() { return func() {} }

type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}

type nopRouter struct{}

func (nopRouter) Navigate(string) {}

type nopOpener struct{}

func (nopOpener) OpenIsolated(string) error { return nil }

// =============================================================================
// MESSAGES
// =============================================================================

// CompletionMsg carries the result of the completion call started by Submit.
type CompletionMsg struct {
	Seq     uint64
	Content string
	Err     error
}

// ErrorFlashDoneMsg ends the OpenError flash started by a failed completion.
type ErrorFlashDoneMsg struct {
	Seq uint64
}

// HashChangeMsg is the synthetic hash-change notification delivered after an
// internal navigation.
type HashChangeMsg struct {
	Path string
}
