// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package suggest picks prompt suggestions for the assistant widget.
package suggest

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jeranaias/siteassist/internal/model"
)

// DefaultBatchSize is the number of suggestions shown on first open.
const DefaultBatchSize = 2

// Source is the random number source used for sampling.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	// IntN returns a uniform value in [0, n). n is always > 0.
	IntN(n int) int
}

// NewSource returns a Source seeded from the clock.
func NewSource() Source {
	now := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(now, now>>17|1))
}

// NewSeeded returns a deterministic Source.
func NewSeeded(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// =============================================================================
// PURE SAMPLING FUNCTIONS
// =============================================================================

// PickInitialBatch returns up to n distinct candidates chosen uniformly
// without replacement. The input slice is never modified.
func PickInitialBatch(src Source, candidates []model.Suggestion, n int) []model.Suggestion {
	if n <= 0 || len(candidates) == 0 {
		return []model.Suggestion{}
	}

	shuffled := make([]model.Suggestion, len(candidates))
	copy(shuffled, candidates)

	// Fisher-Yates
	for i := len(shuffled) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

// PickFollowUp returns one candidate chosen uniformly with replacement.
// It returns false when there are no candidates.
func PickFollowUp(src Source, candidates []model.Suggestion) (model.Suggestion, bool) {
	if len(candidates) == 0 {
		return model.Suggestion{}, false
	}
	return candidates[src.IntN(len(candidates))], true
}

// =============================================================================
// SELECTOR
// =============================================================================

// Selector binds a Source and a batch size. It is safe for concurrent use.
type Selector struct {
	mu        sync.Mutex
	src       Source
	batchSize int
}

// NewSelector creates a Selector. A non-positive batch size falls back to
// DefaultBatchSize.
func NewSelector(src Source, batchSize int) *Selector {
	if src == nil {
		src = NewSource()
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Selector{src: src, batchSize: batchSize}
}

// BatchSize returns the configured initial batch size.
func (s *Selector) BatchSize() int {
	return s.batchSize
}

// Initial draws a fresh initial batch.
func (s *Selector) Initial(candidates []model.Suggestion) []model.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PickInitialBatch(s.src, candidates, s.batchSize)
}

// FollowUp draws one follow-up suggestion.
func (s *Selector) FollowUp(candidates []model.Suggestion) (model.Suggestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PickFollowUp(s.src, candidates)
}
