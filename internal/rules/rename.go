// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rules

import "github.com/autobrr/tagworker/internal/domain"

// renameResult is the outcome of one rename pass: per-torrent tag
// decisions plus the full set of old_tag keys to delete client-wide.
type renameResult struct {
	Decisions  []tagDecision
	DeleteTags []string
}

// renameRule implements spec.md §4.5 "rename": if any configured
// old_tag appears in the instance's known-tag set, apply new_tag to
// every torrent currently holding old_tag. SPEC_FULL.md §12 confirms
// spec.md §9 Design Note (b) bug-for-bug: every configured old_tag is
// deleted from the client afterwards, not only the ones actually
// observed - this can delete tags that were never present, matching the
// original tagworker/worker.py:tag_rename.
func renameRule(knownTags []string, torrents []domain.Torrent, renamer map[string]string) renameResult {
	result := renameResult{}
	if len(renamer) == 0 {
		return result
	}

	known := make(map[string]struct{}, len(knownTags))
	for _, t := range knownTags {
		known[t] = struct{}{}
	}

	anyPresent := false
	for oldTag := range renamer {
		if _, ok := known[oldTag]; ok {
			anyPresent = true
			break
		}
	}
	if !anyPresent {
		return result
	}

	for _, t := range torrents {
		decision := tagDecision{Hash: t.Hash}
		for oldTag, newTag := range renamer {
			if t.HasTag(oldTag) {
				decision.Remove = append(decision.Remove, oldTag)
				if newTag != "" && !t.HasTag(newTag) {
					decision.Add = append(decision.Add, newTag)
				}
			}
		}
		if len(decision.Add) > 0 || len(decision.Remove) > 0 {
			result.Decisions = append(result.Decisions, decision)
		}
	}

	for oldTag := range renamer {
		result.DeleteTags = append(result.DeleteTags, oldTag)
	}
	return result
}
