// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rules

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/autobrr/tagworker/internal/domain"
)

// ApplyDupeTags tags/untags torrents against a precomputed cross-instance
// dupe hash set and returns the updated in-memory torrent slice, mirroring
// Engine.Run's tag-state bookkeeping. The Worker calls this after the
// registry has produced dupes for this tick (§4.7); the Rule Engine
// itself never depends on internal/registry.
func ApplyDupeTags(ctx context.Context, client domain.Client, torrents []domain.Torrent, dupes []string, dupeTag string, log zerolog.Logger) ([]domain.Torrent, bool) {
	decisions := dupeDecisions(torrents, dupes, dupeTag)
	if len(decisions) == 0 {
		return torrents, false
	}

	byHash := make(map[string]int, len(torrents))
	for i, t := range torrents {
		byHash[t.Hash] = i
	}

	asMap := make(map[string]*tagDecision, len(decisions))
	for i := range decisions {
		asMap[decisions[i].Hash] = &decisions[i]
	}
	applyDecisions(ctx, client, asMap, log)

	for hash, d := range asMap {
		if i, ok := byHash[hash]; ok {
			torrents[i].Tags = applyTagDecision(torrents[i].Tags, *d)
		}
	}
	return torrents, true
}

// dupeDecisions turns a precomputed cross-instance dupe hash set
// (internal/registry computes this per spec.md §4.7's guards) into
// per-torrent tag decisions: every torrent in dupes gets dupeTag added
// if missing, every torrent not in dupes loses it if present.
func dupeDecisions(torrents []domain.Torrent, dupes []string, dupeTag string) []tagDecision {
	if dupeTag == "" {
		return nil
	}
	dupeSet := make(map[string]struct{}, len(dupes))
	for _, h := range dupes {
		dupeSet[h] = struct{}{}
	}

	var out []tagDecision
	for _, t := range torrents {
		_, isDupe := dupeSet[t.Hash]
		decision := tagDecision{Hash: t.Hash}
		if isDupe && !t.HasTag(dupeTag) {
			decision.Add = []string{dupeTag}
		} else if !isDupe && t.HasTag(dupeTag) {
			decision.Remove = []string{dupeTag}
		}
		if len(decision.Add) > 0 || len(decision.Remove) > 0 {
			out = append(out, decision)
		}
	}
	return out
}
