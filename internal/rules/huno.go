// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rules

import (
	"strings"

	"github.com/autobrr/tagworker/internal/domain"
)

// hunoTier is one seeding-time tier, ordered from highest to lowest so
// the first threshold reached wins.
type hunoTier struct {
	name      string
	threshold int64 // seconds
}

var hunoTiers = []hunoTier{
	{"Legend", 5 * 365 * 24 * 3600},
	{"Champion", 365 * 24 * 3600},
	{"Knight", 6 * 30 * 24 * 3600},
	{"Squire", 10 * 24 * 3600},
	{"Vanguard", 24 * 3600},
}

// hunoRule implements spec.md §4.5 "HUNO": applies only to torrents whose
// tracker contains "hawke.uno" and have seeded at least a day; assigns
// the highest reached tier under prefix, removing any other tier tag.
func hunoRule(t domain.Torrent, prefix string) tagDecision {
	decision := tagDecision{Hash: t.Hash}
	if prefix == "" || !strings.Contains(t.Tracker, "hawke.uno") || t.SeedingTime < 24*3600 {
		return decision
	}

	var wantTag string
	for _, tier := range hunoTiers {
		if t.SeedingTime >= tier.threshold {
			wantTag = prefix + tier.name
			break
		}
	}
	if wantTag == "" {
		return decision
	}

	if !t.HasTag(wantTag) {
		decision.Add = []string{wantTag}
	}
	for _, tier := range hunoTiers {
		other := prefix + tier.name
		if other != wantTag && t.HasTag(other) {
			decision.Remove = append(decision.Remove, other)
		}
	}
	return decision
}
