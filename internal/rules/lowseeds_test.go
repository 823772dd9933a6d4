// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autobrr/tagworker/internal/domain"
)

func TestLowSeedsRule(t *testing.T) {
	t.Run("below threshold adds tag", func(t *testing.T) {
		torrent := domain.Torrent{Hash: "h1", NumComplete: 1, State: domain.StateMissing}
		d := lowSeedsRule(torrent, 3, "lowseeds")
		assert.ElementsMatch(t, []string{"lowseeds"}, d.Add)
	})

	t.Run("at or above threshold removes tag", func(t *testing.T) {
		torrent := domain.Torrent{Hash: "h2", NumComplete: 5, Tags: []string{"lowseeds"}}
		d := lowSeedsRule(torrent, 3, "lowseeds")
		assert.ElementsMatch(t, []string{"lowseeds"}, d.Remove)
	})

	t.Run("paused torrents are skipped entirely", func(t *testing.T) {
		torrent := domain.Torrent{Hash: "h3", NumComplete: 0, State: domain.StatePausedUp, Tags: []string{"lowseeds"}}
		d := lowSeedsRule(torrent, 3, "lowseeds")
		assert.Empty(t, d.Add)
		assert.Empty(t, d.Remove)
	})

	t.Run("no tag configured is a no-op", func(t *testing.T) {
		torrent := domain.Torrent{Hash: "h4", NumComplete: 0}
		d := lowSeedsRule(torrent, 3, "")
		assert.Empty(t, d.Add)
		assert.Empty(t, d.Remove)
	})
}
