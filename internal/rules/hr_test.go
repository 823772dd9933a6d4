// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autobrr/tagworker/internal/config"
	"github.com/autobrr/tagworker/internal/domain"
)

func TestHRRule(t *testing.T) {
	ratio := 1.0
	details := map[string]config.TrackerDetail{
		"hawke.uno": {Tag: "HUNO", HR: &config.HRTerms{Time: "5d", Ratio: &ratio}},
	}
	app := config.HRGlobalConfig{ExtraSeedTime: "1h", ExtraRatio: 0.1}
	exprs := newExprCache()

	t.Run("unsatisfied adds hr tag", func(t *testing.T) {
		torrent := domain.Torrent{
			Hash: "h1", Tracker: "https://tracker.hawke.uno/announce",
			SeedingTime: int64((3 * 24 * 3600)), Ratio: 0.2,
		}
		d, autostart := hrRule(torrent, app, details, exprs, "HR")
		assert.ElementsMatch(t, []string{"HR"}, d.Add)
		assert.False(t, autostart)
	})

	t.Run("satisfied by seeding time removes hr tag", func(t *testing.T) {
		torrent := domain.Torrent{
			Hash: "h2", Tracker: "https://tracker.hawke.uno/announce",
			SeedingTime: int64(6 * 24 * 3600), Ratio: 0.2,
			Tags: []string{"HR"},
		}
		d, autostart := hrRule(torrent, app, details, exprs, "HR")
		assert.ElementsMatch(t, []string{"HR"}, d.Remove)
		assert.False(t, autostart)
	})

	t.Run("satisfied by ratio removes hr tag", func(t *testing.T) {
		torrent := domain.Torrent{
			Hash: "h3", Tracker: "https://tracker.hawke.uno/announce",
			SeedingTime: int64(1 * 3600), Ratio: 2.0,
			Tags: []string{"HR"},
		}
		d, _ := hrRule(torrent, app, details, exprs, "HR")
		assert.ElementsMatch(t, []string{"HR"}, d.Remove)
	})

	t.Run("unsatisfied and paused is flagged for autostart", func(t *testing.T) {
		torrent := domain.Torrent{
			Hash: "h4", Tracker: "https://tracker.hawke.uno/announce",
			SeedingTime: int64(1 * 3600), Ratio: 0.1, State: domain.StatePausedUp,
		}
		d, autostart := hrRule(torrent, app, details, exprs, "HR")
		assert.ElementsMatch(t, []string{"HR"}, d.Add)
		assert.True(t, autostart)
	})

	t.Run("no hr tag configured is a no-op", func(t *testing.T) {
		torrent := domain.Torrent{Hash: "h5", Tracker: "https://tracker.hawke.uno/announce"}
		d, autostart := hrRule(torrent, app, details, exprs, "")
		assert.Empty(t, d.Add)
		assert.Empty(t, d.Remove)
		assert.False(t, autostart)
	})

	t.Run("exclude_xseed satisfies cross-seeds with zero downloaded", func(t *testing.T) {
		appXseed := config.HRGlobalConfig{ExcludeXseed: true}
		torrent := domain.Torrent{
			Hash: "h6", Tracker: "https://tracker.hawke.uno/announce",
			Downloaded: 0, Tags: []string{"HR"},
		}
		d, _ := hrRule(torrent, appXseed, details, exprs, "HR")
		assert.ElementsMatch(t, []string{"HR"}, d.Remove)
	})
}
