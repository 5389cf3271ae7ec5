// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package suggest picks prompt suggestions for the assistant widget.
//
// Two draws exist: an initial batch sampled without replacement when the
// widget is first opened or cleared, and a single follow-up sampled with
// replacement after each assistant reply. Both take an injected random
// Source so tests can seed them.
//
// # Usage
//
//	sel := suggest.NewSelector(suggest.NewSource(), suggest.DefaultBatchSize)
//	batch := sel.Initial(content.Suggestions)
//	next, ok := sel.FollowUp(content.Suggestions)
package suggest
