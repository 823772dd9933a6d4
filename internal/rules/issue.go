// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rules

import (
	"context"

	"github.com/autobrr/tagworker/internal/config"
	"github.com/autobrr/tagworker/internal/domain"
)

// trackerStatusNotContacted and trackerStatusDisabled mirror the status
// enum values the Client Capability's Trackers call reports
// (spec.md §4.3 "status is an enum (working / not-contacted / updating /
// not-working / disabled)").
const (
	trackerStatusDisabled     = 0
	trackerStatusNotContacted = 1
)

// issueRule implements spec.md §4.5 "issue": paused/errored/unknown
// torrents are skipped and have the tag cleared. In API mode the Client
// is queried for the torrent's tracker list; healthy means at least one
// tracker's status is outside {not-contacted, disabled}. In proxy mode
// (§12) the single Tracker field is used as a health proxy: empty means
// broken.
func issueRule(ctx context.Context, client domain.Client, t domain.Torrent, mode config.IssueDetectionMode, tag string) (tagDecision, error) {
	decision := tagDecision{Hash: t.Hash}
	if tag == "" || isPausedOrUnknown(t.State) {
		if t.HasTag(tag) {
			decision.Remove = []string{tag}
		}
		return decision, nil
	}

	var healthy bool
	if mode == config.IssueDetectionProxy {
		healthy = t.Tracker != ""
	} else {
		trackers, err := client.Trackers(ctx, t.Hash)
		if err != nil {
			return decision, err
		}
		for _, tr := range trackers {
			if tr.Status != trackerStatusNotContacted && tr.Status != trackerStatusDisabled {
				healthy = true
				break
			}
		}
	}

	if healthy {
		if t.HasTag(tag) {
			decision.Remove = []string{tag}
		}
		return decision, nil
	}

	if !t.HasTag(tag) {
		decision.Add = []string{tag}
	}
	return decision, nil
}
