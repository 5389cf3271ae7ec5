// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"strings"

	"github.com/jeranaias/siteassist/internal/content"
)

// defaultFallback is used when the catalog has no fallback for the locale.
const defaultFallback = "Sorry, I don't have an answer for that yet."

// Answer picks the canned reply for question. The first answer with a
// keyword contained in the question wins; matching is case-insensitive.
func Answer(c content.Content, question string) string {
	q := strings.ToLower(question)
	for _, a := range c.Answers {
		for _, kw := range a.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(q, kw) {
				return a.Reply
			}
		}
	}
	if strings.TrimSpace(c.Fallback) != "" {
		return c.Fallback
	}
	return defaultFallback
}

// lastUserMessage returns the content of the newest user message.
func lastUserMessage(messages []ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}
