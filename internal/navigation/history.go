// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package navigation provides the client-side router and the system link opener.
package navigation

import (
	"strings"
	"sync"
)

// MaxHistory bounds the back stack.
const MaxHistory = 100

// History is an in-app router. Navigate changes the current path; hash-change
// subscribers are only told when DispatchHashChange is called, mirroring a
// browser that fires hashchange after pushState.
type History struct {
	mu          sync.RWMutex
	stack       []string
	subscribers []func(path string)
	dispatched  int
}

// NewHistory creates a History positioned at start ("/" when empty).
func NewHistory(start string) *History {
	return &History{stack: []string{normalize(start)}}
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// Navigate pushes path onto the stack. Navigating to the current path is a
// no-op.
func (h *History) Navigate(path string) {
	path = normalize(path)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stack[len(h.stack)-1] == path {
		return
	}
	h.stack = append(h.stack, path)
	if len(h.stack) > MaxHistory {
		h.stack = h.stack[len(h.stack)-MaxHistory:]
	}
}

// Back pops the current path and reports whether there was one to pop.
// Subscribers are notified with the new current path.
func (h *History) Back() bool {
	h.mu.Lock()
	if len(h.stack) < 2 {
		h.mu.Unlock()
		return false
	}
	h.stack = h.stack[:len(h.stack)-1]
	current := h.stack[len(h.stack)-1]
	h.mu.Unlock()

	h.DispatchHashChange(current)
	return true
}

// Current returns the current path.
func (h *History) Current() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stack[len(h.stack)-1]
}

// Len returns the depth of the back stack.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.stack)
}

// Subscribe registers fn for hash-change notifications.
func (h *History) Subscribe(fn func(path string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers = append(h.subscribers, fn)
}

// DispatchHashChange notifies every subscriber. Subscribers run outside the
// lock and may call back into the History.
func (h *History) DispatchHashChange(path string) {
	h.mu.Lock()
	subs := make([]func(string), len(h.subscribers))
	copy(subs, h.subscribers)
	h.dispatched++
	h.mu.Unlock()

	for _, fn := range subs {
		fn(path)
	}
}

// Dispatched returns how many hash-change notifications have been sent.
func (h *History) Dispatched() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dispatched
}
