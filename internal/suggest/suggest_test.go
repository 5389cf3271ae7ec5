// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package suggest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/siteassist/internal/model"
)

func candidates(n int) []model.Suggestion {
	out := make([]model.Suggestion, n)
	for i := range out {
		out[i] = model.Suggestion{
			Full:  fmt.Sprintf("question %d?", i),
			Short: fmt.Sprintf("q%d", i),
		}
	}
	return out
}

// =============================================================================
// INITIAL BATCH TESTS
// =============================================================================

func TestPickInitialBatch_DistinctMembers(t *testing.T) {
	for size := 2; size <= 8; size++ {
		set := candidates(size)
		for seed := uint64(0); seed < 50; seed++ {
			batch := PickInitialBatch(NewSeeded(seed), set, 2)
			require.Len(t, batch, 2, "size=%d seed=%d", size, seed)
			assert.NotEqual(t, batch[0], batch[1], "size=%d seed=%d", size, seed)
			assert.Contains(t, set, batch[0])
			assert.Contains(t, set, batch[1])
		}
	}
}

func TestPickInitialBatch_FewerThanRequested(t *testing.T) {
	tests := []struct {
		name string
		set  []model.Suggestion
		want int
	}{
		{"nil", nil, 0},
		{"empty", []model.Suggestion{}, 0},
		{"single", candidates(1), 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			batch := PickInitialBatch(NewSeeded(1), tc.set, 2)
			if len(batch) != tc.want {
				t.Errorf("len = %d, want %d", len(batch), tc.want)
			}
		})
	}
}

func TestPickInitialBatch_NonPositiveN(t *testing.T) {
	if got := PickInitialBatch(NewSeeded(1), candidates(4), 0); len(got) != 0 {
		t.Errorf("n=0 returned %d items, want 0", len(got))
	}
	if got := PickInitialBatch(NewSeeded(1), candidates(4), -3); len(got) != 0 {
		t.Errorf("n=-3 returned %d items, want 0", len(got))
	}
}

func TestPickInitialBatch_DoesNotMutateInput(t *testing.T) {
	set := candidates(6)
	before := make([]model.Suggestion, len(set))
	copy(before, set)

	for seed := uint64(0); seed < 20; seed++ {
		PickInitialBatch(NewSeeded(seed), set, 2)
	}

	assert.Equal(t, before, set)
}

func TestPickInitialBatch_Deterministic(t *testing.T) {
	set := candidates(10)
	a := PickInitialBatch(NewSeeded(42), set, 2)
	b := PickInitialBatch(NewSeeded(42), set, 2)
	assert.Equal(t, a, b)
}

func TestPickInitialBatch_NotBiasedToFirst(t *testing.T) {
	set := candidates(5)
	seen := make(map[string]int)
	for seed := uint64(0); seed < 2000; seed++ {
		for _, s := range PickInitialBatch(NewSeeded(seed), set, 2) {
			seen[s.Full]++
		}
	}
	for _, s := range set {
		if seen[s.Full] == 0 {
			t.Errorf("candidate %q never drawn", s.Full)
		}
	}
}

// =============================================================================
// FOLLOW-UP TESTS
// =============================================================================

func TestPickFollowUp_CoversAllCandidates(t *testing.T) {
	set := candidates(4)
	src := NewSeeded(7)
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		s, ok := PickFollowUp(src, set)
		require.True(t, ok)
		require.Contains(t, set, s)
		seen[s.Full] = true
	}

	assert.Len(t, seen, len(set))
}

func TestPickFollowUp_Empty(t *testing.T) {
	if _, ok := PickFollowUp(NewSeeded(1), nil); ok {
		t.Error("PickFollowUp(nil) should return false")
	}
}

// =============================================================================
// SELECTOR TESTS
// =============================================================================

func TestSelector_DefaultBatchSize(t *testing.T) {
	sel := NewSelector(NewSeeded(3), 0)
	if sel.BatchSize() != DefaultBatchSize {
		t.Errorf("BatchSize() = %d, want %d", sel.BatchSize(), DefaultBatchSize)
	}
	if got := sel.Initial(candidates(5)); len(got) != DefaultBatchSize {
		t.Errorf("Initial() len = %d, want %d", len(got), DefaultBatchSize)
	}
}

func TestSelector_NilSource(t *testing.T) {
	sel := NewSelector(nil, 3)
	if got := sel.Initial(candidates(5)); len(got) != 3 {
		t.Errorf("Initial() len = %d, want 3", len(got))
	}
}
