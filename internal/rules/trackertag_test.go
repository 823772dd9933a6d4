// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autobrr/tagworker/internal/config"
	"github.com/autobrr/tagworker/internal/domain"
)

func TestTrackerTagRule(t *testing.T) {
	details := map[string]config.TrackerDetail{
		"hawke.uno":   {Tag: "HUNO"},
		"broadcasthe": {Tag: "BHD"},
		"default":     {Tag: "other"},
	}
	exprs := newExprCache()

	t.Run("matches one rule, adds its tag", func(t *testing.T) {
		torrent := domain.Torrent{Hash: "h1", Tracker: "https://tracker.hawke.uno/announce"}
		d := trackerTagRule(torrent, details, exprs)
		assert.ElementsMatch(t, []string{"HUNO"}, d.Add)
		assert.Empty(t, d.Remove)
	})

	t.Run("no match falls back to default", func(t *testing.T) {
		torrent := domain.Torrent{Hash: "h2", Tracker: "https://example.org/announce"}
		d := trackerTagRule(torrent, details, exprs)
		assert.ElementsMatch(t, []string{"other"}, d.Add)
		assert.Empty(t, d.Remove)
	})

	t.Run("good tags shield bad tags already present", func(t *testing.T) {
		torrent := domain.Torrent{Hash: "h3", Tracker: "https://tracker.hawke.uno/announce", Tags: []string{"HUNO", "other"}}
		d := trackerTagRule(torrent, details, exprs)
		assert.Empty(t, d.Add)
		assert.ElementsMatch(t, []string{"other"}, d.Remove)
	})

	t.Run("already correct produces no decision", func(t *testing.T) {
		torrent := domain.Torrent{Hash: "h4", Tracker: "https://tracker.hawke.uno/announce", Tags: []string{"HUNO"}}
		d := trackerTagRule(torrent, details, exprs)
		assert.Empty(t, d.Add)
		assert.Empty(t, d.Remove)
	})
}

func TestOrderedTrackerDetailKeys(t *testing.T) {
	details := map[string]config.TrackerDetail{
		"zzz":     {Tag: "z"},
		"aaa":     {Tag: "a"},
		"default": {Tag: "d"},
	}
	keys := orderedTrackerDetailKeys(details)
	assert.Equal(t, []string{"aaa", "zzz"}, keys)
}

func TestMatchTrackerDetail_MatchExprOnly(t *testing.T) {
	details := map[string]config.TrackerDetail{
		"freeleech": {Tag: "FL", MatchExpr: `Category == "freeleech"`},
	}
	exprs := newExprCache()

	torrent := domain.Torrent{Hash: "h1", Tracker: "https://example.org/announce", Category: "freeleech"}
	key, detail, ok := matchTrackerDetail(torrent, details, exprs)
	assert.True(t, ok)
	assert.Equal(t, "freeleech", key)
	assert.Equal(t, "FL", detail.Tag)
}
