// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cluster

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatfeed/internal/model"
)

func msgs(senders ...string) []*model.Message {
	out := make([]*model.Message, len(senders))
	for i, s := range senders {
		out[i] = &model.Message{ID: string(rune('a' + i)), Sender: model.Sender{ID: s}}
	}
	return out
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestClassify_Scenario(t *testing.T) {
	got := Classify(msgs("A", "A", "B", "A"))

	want := []Flags{
		{First: true},
		{Last: true},
		{First: true, Last: true, Only: true},
		{First: true, Last: true, Only: true, Tail: true},
	}
	assert.Equal(t, want, got)
}

func TestClassify_Empty(t *testing.T) {
	got := Classify(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = Classify([]*model.Message{})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestClassify_Single(t *testing.T) {
	got := Classify(msgs("A"))
	assert.Equal(t, []Flags{{First: true, Last: true, Only: true, Tail: true}}, got)
}

func TestClassify_TwoDifferentSenders(t *testing.T) {
	got := Classify(msgs("A", "B"))
	for i, f := range got {
		assert.True(t, f.Only, "message %d should be a singleton", i)
	}
}

func TestClassify_MissingSenderNeverClusters(t *testing.T) {
	got := Classify(msgs("", "", "A"))
	assert.True(t, got[0].Only)
	assert.True(t, got[1].Only)
	assert.True(t, got[2].Only)
}

func TestClassify_NilMessage(t *testing.T) {
	in := []*model.Message{nil, {Sender: model.Sender{ID: "A"}}, nil}
	got := Classify(in)
	require.Len(t, got, 3)
	for i, f := range got {
		assert.True(t, f.Only, "message %d", i)
	}
}

func TestClassifyFunc_PanickingExtractor(t *testing.T) {
	items := []int{1, 2, 3}
	got := ClassifyFunc(items, func(i int) string {
		if i == 2 {
			panic("boom")
		}
		return "same"
	})
	assert.Equal(t, []Flags{
		{First: true, Last: true, Only: true},
		{First: true, Last: true, Only: true},
		{First: true, Last: true, Only: true, Tail: true},
	}, got)
}

// =============================================================================
// PROPERTIES
// =============================================================================

func randomSenders(r *rand.Rand, n int) []string {
	pool := []string{"A", "B", "C", ""}
	out := make([]string, n)
	for i := range out {
		out[i] = pool[r.Intn(len(pool))]
	}
	return out
}

func TestClassify_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for iter := 0; iter < 200; iter++ {
		senders := randomSenders(r, r.Intn(20))
		in := msgs(senders...)
		flags := Classify(in)

		require.Len(t, flags, len(in))
		assert.Equal(t, flags, Classify(in), "classification must be deterministic")

		for i, f := range flags {
			prevDiffers := i == 0 || senders[i-1] != senders[i] || senders[i] == ""
			nextDiffers := i == len(in)-1 || senders[i+1] != senders[i] || senders[i] == ""
			assert.Equal(t, prevDiffers, f.First, "First at %d of %v", i, senders)
			assert.Equal(t, nextDiffers, f.Last, "Last at %d of %v", i, senders)
			assert.Equal(t, prevDiffers && nextDiffers, f.Only, "Only at %d of %v", i, senders)
			assert.Equal(t, i == len(in)-1, f.Tail)
		}

		for _, run := range Runs(flags) {
			start, end := run[0], run[1]
			firsts, lasts, interior := 0, 0, 0
			for i := start; i < end; i++ {
				if flags[i].First {
					firsts++
				}
				if flags[i].Last {
					lasts++
				}
				if !flags[i].First && !flags[i].Last {
					interior++
				}
			}
			assert.Equal(t, 1, firsts)
			assert.Equal(t, 1, lasts)
			if n := end - start; n > 2 {
				assert.Equal(t, n-2, interior)
			}
		}
	}
}

func TestRuns(t *testing.T) {
	runs := Runs(Classify(msgs("A", "A", "B", "C", "C", "C")))
	assert.Equal(t, [][2]int{{0, 2}, {2, 3}, {3, 6}}, runs)
	assert.Nil(t, Runs(nil))
}
