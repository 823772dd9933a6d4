// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rules

import (
	"github.com/autobrr/tagworker/internal/config"
	"github.com/autobrr/tagworker/internal/domain"
	"github.com/autobrr/tagworker/pkg/humantime"
)

// hrRule implements spec.md §4.5 "H&R": match the first tracker_details
// entry, evaluate its HR terms against seeding time, ratio, and
// downloaded bytes, and apply/remove hrTag accordingly. Returns the
// decision plus whether the torrent should be added to the autostart set
// (only honored by the caller when app.HR.autostart is on).
func hrRule(t domain.Torrent, app config.HRGlobalConfig, details map[string]config.TrackerDetail, exprs *exprCache, hrTag string) (decision tagDecision, autostart bool) {
	decision.Hash = t.Hash
	if hrTag == "" {
		return decision, false
	}

	_, detail, ok := matchTrackerDetail(t, details, exprs)
	satisfied := true
	if ok && detail.HR != nil {
		satisfied = hrSatisfied(t, app, detail.HR)
	}

	if satisfied {
		if t.HasTag(hrTag) {
			decision.Remove = []string{hrTag}
		}
		return decision, false
	}

	if !t.HasTag(hrTag) {
		decision.Add = []string{hrTag}
	}

	paused := t.State == domain.StatePausedUp || t.State == domain.StatePausedDl ||
		t.State == domain.StateStoppedUp || t.State == domain.StateStoppedDl ||
		t.State == domain.StateError
	return decision, paused
}

func hrSatisfied(t domain.Torrent, app config.HRGlobalConfig, hr *config.HRTerms) bool {
	reqSeconds, err := humantime.Parse(hr.Time)
	if err == nil && reqSeconds > 0 {
		extra, _ := humantime.Parse(app.ExtraSeedTime)
		if t.SeedingTime > int64(reqSeconds.Seconds())+int64(extra.Seconds()) {
			return true
		}
	}

	if hr.Ratio != nil {
		if t.Ratio > *hr.Ratio+app.ExtraRatio {
			return true
		}
	}

	if app.ExcludeXseed && t.Downloaded == 0 {
		return true
	}

	if hr.Percent != nil && t.Size > 0 {
		threshold := (*hr.Percent / 100) * float64(t.Size)
		if float64(t.Downloaded) < threshold {
			return true
		}
	}

	return false
}
