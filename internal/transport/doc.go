// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport sends a conversation to a message completion service and
// returns the assistant reply.
//
// The full ordered history is forwarded on every call. Timeouts, network
// failures, non-2xx statuses and replies without choices[0].message.content
// all come back as errors; callers treat them alike.
//
// # Key Types
//
//   - Completer: the interface the widget controller depends on
//   - CompleterFunc: adapter for plain functions (tests, offline hosts)
//   - Client: HTTP JSON implementation with a request rate limiter
//   - APIError: non-2xx reply with the status and any decoded message
//
// # Usage
//
//	client := transport.NewClient(transport.Options{
//	    Endpoint: "http://127.0.0.1:8787/v1/chat/completions",
//	    Timeout:  30 * time.Second,
//	    Logger:   logger,
//	})
//	reply, err := client.Complete(ctx, turns)
package transport
