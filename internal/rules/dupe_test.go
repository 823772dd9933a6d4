// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/tagworker/internal/domain"
)

func TestDupeDecisions(t *testing.T) {
	torrents := []domain.Torrent{
		{Hash: "h1"},
		{Hash: "h2", Tags: []string{"dupe"}},
	}

	t.Run("hash in dupe set gets the tag", func(t *testing.T) {
		decisions := dupeDecisions(torrents, []string{"h1"}, "dupe")
		require.Len(t, decisions, 1)
		assert.Equal(t, "h1", decisions[0].Hash)
		assert.ElementsMatch(t, []string{"dupe"}, decisions[0].Add)
	})

	t.Run("hash no longer a dupe loses the tag", func(t *testing.T) {
		decisions := dupeDecisions(torrents, nil, "dupe")
		require.Len(t, decisions, 1)
		assert.Equal(t, "h2", decisions[0].Hash)
		assert.ElementsMatch(t, []string{"dupe"}, decisions[0].Remove)
	})

	t.Run("no dupe tag configured is a no-op", func(t *testing.T) {
		decisions := dupeDecisions(torrents, []string{"h1"}, "")
		assert.Empty(t, decisions)
	})
}
