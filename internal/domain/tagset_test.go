// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffTags(t *testing.T) {
	diff := DiffTags([]string{"a", "b"}, []string{"b", "c"})
	sort.Strings(diff.Add)
	sort.Strings(diff.Remove)
	assert.Equal(t, []string{"c"}, diff.Add)
	assert.Equal(t, []string{"a"}, diff.Remove)
	assert.False(t, diff.Empty())
}

func TestDiffTags_NoChange(t *testing.T) {
	diff := DiffTags([]string{"a", "b"}, []string{"b", "a"})
	assert.True(t, diff.Empty())
}

func TestDeltaView_AllHashes(t *testing.T) {
	d := DeltaView{Added: []string{"h1"}, Removed: []string{"h2"}, Changed: []string{"h1", "h3"}}
	hashes := d.AllHashes()
	sort.Strings(hashes)
	assert.Equal(t, []string{"h1", "h2", "h3"}, hashes)
	assert.True(t, d.HasChanges())
}

func TestTorrent_HasTag(t *testing.T) {
	tr := Torrent{Tags: []string{"x", "y"}}
	assert.True(t, tr.HasTag("x"))
	assert.False(t, tr.HasTag("z"))
}
