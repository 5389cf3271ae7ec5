// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
default_locale = "en"

[[locales]]
locale = "en"
welcome = "Hello"

[[locales.suggestions]]
full = "What is a lease?"
short = "Leases"

[[locales]]
locale = "de"
welcome = "Hallo"

[locales.copy]
title = "Assistent"

[[pages]]
path = "/"
title = "Home"
body = "# Home"
`

const sampleJSON = `{
  "default_locale": "en",
  "locales": [
    {"locale": "en", "welcome": "Hello from JSON",
     "suggestions": [{"full": "One?", "short": "1"}]}
  ],
  "pages": [{"path": "/pricing", "title": "Pricing", "body": "cheap"}]
}`

const sampleYAML = `
default_locale: en
locales:
  - locale: en
    welcome: Hello from YAML
    suggestions:
      - full: One?
        short: "1"
pages:
  - path: /about
    title: About
    body: us
`

// =============================================================================
// PARSING TESTS
// =============================================================================

func TestParse_AllFormats(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		format  Format
		welcome string
		page    string
	}{
		{"toml", sampleTOML, FormatTOML, "Hello", "/"},
		{"json", sampleJSON, FormatJSON, "Hello from JSON", "/pricing"},
		{"yaml", sampleYAML, FormatYAML, "Hello from YAML", "/about"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cat, err := Parse([]byte(tc.data), tc.format)
			require.NoError(t, err)

			c := cat.Resolve("en")
			assert.Equal(t, tc.welcome, c.Welcome)
			assert.NotEmpty(t, c.Suggestions)

			_, ok := cat.Page(tc.page)
			assert.True(t, ok, "page %s should exist", tc.page)
		})
	}
}

func TestParse_UnknownFormat(t *testing.T) {
	_, err := Parse([]byte("x"), Format("ini"))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Parse(ini) error = %v, want ErrUnknownFormat", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"site.toml": FormatTOML,
		"site.JSON": FormatJSON,
		"site.yaml": FormatYAML,
		"site.yml":  FormatYAML,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v, want %q", path, got, err, want)
		}
	}

	if _, err := FormatFromPath("site.txt"); err == nil {
		t.Error("FormatFromPath(.txt) should fail")
	}
}

func TestDefaultCatalog(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	en := cat.Resolve("en")
	assert.NotEmpty(t, en.Welcome)
	assert.GreaterOrEqual(t, len(en.Suggestions), 2)
	assert.NotEmpty(t, en.Answers)

	for _, path := range []string{"/", "/pricing", "/features", "/contact"} {
		_, ok := cat.Page(path)
		assert.True(t, ok, "default catalog should have %s", path)
	}
}

// =============================================================================
// LOCALE RESOLUTION TESTS
// =============================================================================

func TestResolve_Locales(t *testing.T) {
	cat, err := Parse([]byte(sampleTOML), FormatTOML)
	require.NoError(t, err)

	tests := []struct {
		locale  string
		welcome string
	}{
		{"en", "Hello"},
		{"en-GB", "Hello"},
		{"de", "Hallo"},
		{"de-AT", "Hallo"},
		{"", "Hello"},
		{"ja", "Hello"},
		{"not a locale!!", "Hello"},
	}

	for _, tc := range tests {
		if got := cat.Resolve(tc.locale).Welcome; got != tc.welcome {
			t.Errorf("Resolve(%q).Welcome = %q, want %q", tc.locale, got, tc.welcome)
		}
	}
}

func TestResolve_FillsCopyDefaults(t *testing.T) {
	cat, err := Parse([]byte(sampleTOML), FormatTOML)
	require.NoError(t, err)

	de := cat.Resolve("de")
	assert.Equal(t, "Assistent", de.Copy.Title)
	assert.Equal(t, DefaultCopy.ErrorTitle, de.Copy.ErrorTitle)
	assert.Equal(t, DefaultCopy.Placeholder, de.Copy.Placeholder)
}

func TestResolve_DoesNotMutateCatalog(t *testing.T) {
	cat, err := Parse([]byte(sampleTOML), FormatTOML)
	require.NoError(t, err)

	_ = cat.Resolve("en")
	if cat.Locales[0].Copy.Title != "" {
		t.Errorf("Resolve mutated catalog copy title to %q", cat.Locales[0].Copy.Title)
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cat     Catalog
		wantErr bool
	}{
		{
			name:    "no locales",
			cat:     Catalog{},
			wantErr: true,
		},
		{
			name:    "empty welcome",
			cat:     Catalog{Locales: []Content{{Locale: "en"}}},
			wantErr: true,
		},
		{
			name: "relative page path",
			cat: Catalog{
				Locales: []Content{{Locale: "en", Welcome: "hi"}},
				Pages:   []Page{{Path: "pricing"}},
			},
			wantErr: true,
		},
		{
			name: "protocol-relative page path",
			cat: Catalog{
				Locales: []Content{{Locale: "en", Welcome: "hi"}},
				Pages:   []Page{{Path: "//evil.example"}},
			},
			wantErr: true,
		},
		{
			name: "unknown default locale",
			cat: Catalog{
				DefaultLocale: "fr",
				Locales:       []Content{{Locale: "en", Welcome: "hi"}},
			},
			wantErr: true,
		},
		{
			name: "valid",
			cat: Catalog{
				DefaultLocale: "en",
				Locales:       []Content{{Locale: "en", Welcome: "hi"}},
				Pages:         []Page{{Path: "/"}, {Path: "/pricing"}},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cat.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

// =============================================================================
// STORE AND WATCHER TESTS
// =============================================================================

func TestStore_Swap(t *testing.T) {
	first, err := Parse([]byte(sampleTOML), FormatTOML)
	require.NoError(t, err)
	second, err := Parse([]byte(sampleJSON), FormatJSON)
	require.NoError(t, err)

	store := NewStore(first, "en")
	assert.Equal(t, "Hello", store.Content().Welcome)

	store.Swap(second)
	assert.Equal(t, "Hello from JSON", store.Content().Welcome)

	store.Swap(nil)
	assert.Equal(t, "Hello from JSON", store.Content().Welcome)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTOML), 0600))

	cat, err := LoadFile(path)
	require.NoError(t, err)
	store := NewStore(cat, "en")

	w, err := NewWatcher(path, store, nil)
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond

	reloaded := make(chan struct{}, 1)
	w.OnReload = func(*Catalog) {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	updated := []byte(`
[[locales]]
locale = "en"
welcome = "Updated"
`)
	require.NoError(t, os.WriteFile(path, updated, 0600))

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload")
	}
	assert.Equal(t, "Updated", store.Content().Welcome)
}

func TestWatcher_KeepsCatalogOnInvalidEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTOML), 0600))

	cat, err := LoadFile(path)
	require.NoError(t, err)
	store := NewStore(cat, "en")

	w, err := NewWatcher(path, store, nil)
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond
	w.reloadForTest([]byte("[[locales]]\nlocale = \"en\"\n"), path)

	assert.Equal(t, "Hello", store.Content().Welcome)
}
