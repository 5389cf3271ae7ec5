// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides a stateless stub of the message completion
// service for local development.
//
// Endpoints:
//   - POST /v1/chat/completions - OpenAI-style chat completion
//   - POST /api/chat            - Alias of /v1/chat/completions
//   - GET  /health              - Health check
//
// Replies are canned: the last user message is matched against the keyword
// answers of the content catalog, and the locale fallback is returned when
// nothing matches. Latency and failure injection exercise a client's loading
// and error paths.
//
// Usage:
//
//	srv := server.New(store, server.Options{Addr: "127.0.0.1:8787"})
//	go srv.Start()
//	defer srv.Shutdown(ctx)
package server
