// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package content loads the conversation content configuration.
package content

import (
	"sync/atomic"
)

// Store holds the active catalog and resolves it for a fixed locale.
// Readers never block writers; a reload swaps the whole catalog.
type Store struct {
	catalog atomic.Pointer[Catalog]
	locale  string
}

// NewStore creates a store serving cat for locale.
func NewStore(cat *Catalog, locale string) *Store {
	s := &Store{locale: locale}
	s.catalog.Store(cat)
	return s
}

// Content resolves the widget content for the store's locale.
func (s *Store) Content() Content {
	return s.Catalog().Resolve(s.locale)
}

// Catalog returns the active catalog.
func (s *Store) Catalog() *Catalog {
	return s.catalog.Load()
}

// Page returns the page at path from the active catalog.
func (s *Store) Page(path string) (Page, bool) {
	return s.Catalog().Page(path)
}

// Locale returns the requested locale.
func (s *Store) Locale() string {
	return s.locale
}

// Swap replaces the active catalog. A nil catalog is ignored.
func (s *Store) Swap(cat *Catalog) {
	if cat == nil {
		return
	}
	s.catalog.Store(cat)
}
