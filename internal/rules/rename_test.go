// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/tagworker/internal/domain"
)

func TestRenameRule(t *testing.T) {
	renamer := map[string]string{"old-tag": "new-tag"}

	t.Run("old tag not present anywhere is a no-op", func(t *testing.T) {
		result := renameRule([]string{"unrelated"}, []domain.Torrent{{Hash: "h1"}}, renamer)
		assert.Empty(t, result.Decisions)
		assert.Empty(t, result.DeleteTags)
	})

	t.Run("old tag known renames carrying torrents and deletes the old key", func(t *testing.T) {
		torrents := []domain.Torrent{
			{Hash: "h1", Tags: []string{"old-tag"}},
			{Hash: "h2", Tags: []string{"unrelated"}},
		}
		result := renameRule([]string{"old-tag"}, torrents, renamer)
		require.Len(t, result.Decisions, 1)
		assert.Equal(t, "h1", result.Decisions[0].Hash)
		assert.ElementsMatch(t, []string{"new-tag"}, result.Decisions[0].Add)
		assert.ElementsMatch(t, []string{"old-tag"}, result.Decisions[0].Remove)
		assert.ElementsMatch(t, []string{"old-tag"}, result.DeleteTags)
	})

	t.Run("every configured key is deleted even if some were never present, bug for bug", func(t *testing.T) {
		twoKeyRenamer := map[string]string{"old-tag": "new-tag", "never-present": "also-new"}
		result := renameRule([]string{"old-tag"}, []domain.Torrent{{Hash: "h1", Tags: []string{"old-tag"}}}, twoKeyRenamer)
		assert.ElementsMatch(t, []string{"old-tag", "never-present"}, result.DeleteTags)
	})
}
