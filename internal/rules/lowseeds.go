// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rules

import "github.com/autobrr/tagworker/internal/domain"

// lowSeedsRule implements spec.md §4.5 "low-seeds": paused/errored/
// unknown torrents are skipped entirely; otherwise the tag tracks
// num_complete < min_seeds. spec.md §9 Design Note (a) notes the
// original's field is named for seed count but actually reads
// num_complete - that field is adopted here as the intended one.
func lowSeedsRule(t domain.Torrent, minSeeds int, tag string) tagDecision {
	decision := tagDecision{Hash: t.Hash}
	if tag == "" || isPausedOrUnknown(t.State) {
		return decision
	}

	if t.NumComplete < minSeeds {
		if !t.HasTag(tag) {
			decision.Add = []string{tag}
		}
	} else if t.HasTag(tag) {
		decision.Remove = []string{tag}
	}
	return decision
}

func isPausedOrUnknown(s domain.TorrentState) bool {
	switch s {
	case domain.StatePausedUp, domain.StatePausedDl, domain.StateStoppedUp, domain.StateStoppedDl,
		domain.StateError, domain.StateUnknown:
		return true
	default:
		return false
	}
}
