// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ApplyFullThenPartial(t *testing.T) {
	s := NewStore()

	s.Apply(Snapshot{
		FullUpdate: true,
		Torrents: map[string]map[string]any{
			"hash1": {"name": "Foo", "category": "tv", "ratio": 1.5, "tags": "a,b"},
		},
		ServerState: map[string]any{"free_space_on_disk": int64(100)},
	})

	torrents := s.Torrents()
	require.Len(t, torrents, 1)
	assert.Equal(t, "Foo", torrents[0].Name)
	assert.Equal(t, "tv", torrents[0].Category)
	assert.ElementsMatch(t, []string{"a", "b"}, torrents[0].Tags)

	// A partial diff only mentions "ratio" - every other field must survive.
	s.Apply(Snapshot{
		Torrents: map[string]map[string]any{
			"hash1": {"ratio": 2.5},
		},
	})

	torrents = s.Torrents()
	require.Len(t, torrents, 1)
	assert.Equal(t, "Foo", torrents[0].Name, "unmentioned field must not be dropped by a partial diff")
	assert.Equal(t, 2.5, torrents[0].Ratio)

	delta := s.LastDelta()
	assert.Equal(t, []string{"hash1"}, delta.Changed)
}

func TestStore_RemovalAndDelta(t *testing.T) {
	s := NewStore()
	s.Apply(Snapshot{FullUpdate: true, Torrents: map[string]map[string]any{
		"h1": {"name": "A"},
		"h2": {"name": "B"},
	}})

	s.Apply(Snapshot{TorrentsRemoved: []string{"h1"}})

	torrents := s.Torrents()
	require.Len(t, torrents, 1)
	assert.Equal(t, "h2", torrents[0].Hash)

	delta := s.LastDelta()
	assert.Equal(t, []string{"h1"}, delta.Removed)
}

func TestStore_ServerStateMergesNotReplaces(t *testing.T) {
	s := NewStore()
	s.Apply(Snapshot{FullUpdate: true, ServerState: map[string]any{"a": int64(1), "b": int64(2)}})
	s.Apply(Snapshot{ServerState: map[string]any{"a": int64(9)}})

	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.Equal(t, int64(9), s.serverState["a"])
	assert.Equal(t, int64(2), s.serverState["b"], "key absent from the diff must survive the merge")
}

func TestMergeFields_NilValueUnsetsKey(t *testing.T) {
	dest := map[string]any{"a": int64(1), "b": int64(2)}
	mergeFields(dest, map[string]any{"a": nil})

	assert.NotContains(t, dest, "a")
	assert.Equal(t, int64(2), dest["b"])
}

func TestMergeFields_NestedMapMergesInsteadOfReplacing(t *testing.T) {
	dest := map[string]any{
		"props": map[string]any{"x": int64(1), "y": int64(2)},
	}
	mergeFields(dest, map[string]any{
		"props": map[string]any{"x": int64(9)},
	})

	props := dest["props"].(map[string]any)
	assert.Equal(t, int64(9), props["x"])
	assert.Equal(t, int64(2), props["y"], "key absent from the nested diff must survive the recursive merge")
}

func TestFieldOp_Classification(t *testing.T) {
	assert.Equal(t, OpUnset, fieldOp(int64(1), nil))
	assert.Equal(t, OpMerged, fieldOp(map[string]any{"a": 1}, map[string]any{"a": 2}))
	assert.Equal(t, OpSet, fieldOp(int64(1), int64(2)))
	assert.Equal(t, OpSet, fieldOp(nil, int64(2)))
}

func TestStore_CategoryAndTagSets(t *testing.T) {
	s := NewStore()
	s.Apply(Snapshot{
		FullUpdate: true,
		Categories: map[string]map[string]any{"tv": {"savePath": "/data/tv"}},
		Tags:       []string{"x", "y"},
	})
	s.Apply(Snapshot{TagsRemoved: []string{"x"}})

	assert.ElementsMatch(t, []string{"y"}, s.Tags())
}
