// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package content loads the conversation content configuration.
package content

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a catalog file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

//go:embed default.toml
var defaultCatalogTOML []byte

var (
	defaultCatalog     *Catalog
	defaultCatalogErr  error
	defaultCatalogOnce sync.Once
)

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Parse decodes and validates a catalog.
func Parse(data []byte, format Format) (*Catalog, error) {
	cat := &Catalog{}

	var err error
	switch format {
	case FormatTOML:
		_, err = toml.Decode(string(data), cat)
	case FormatJSON:
		err = json.Unmarshal(data, cat)
	case FormatYAML:
		err = yaml.Unmarshal(data, cat)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s catalog: %w", format, err)
	}

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return cat, nil
}

// LoadFile reads a catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	return Parse(data, format)
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Default returns the catalog embedded in the binary. The result is shared;
// callers must not modify it.
func Default() (*Catalog, error) {
	defaultCatalogOnce.Do(func() {
		defaultCatalog, defaultCatalogErr = Parse(defaultCatalogTOML, FormatTOML)
	})
	return defaultCatalog, defaultCatalogErr
}
