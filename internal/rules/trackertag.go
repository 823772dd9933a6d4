// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rules

import (
	"github.com/autobrr/tagworker/internal/config"
	"github.com/autobrr/tagworker/internal/domain"
)

// tagDecision is one rule's verdict for one torrent: tags to add, tags to
// remove. Either side may be empty.
type tagDecision struct {
	Hash   string
	Add    []string
	Remove []string
}

// trackerTagRule implements spec.md §4.5 "tracker-tag": union every
// matching rule's declared tag into good_tags, schedule missing ones for
// addition; any tag declared by a non-matching rule that the torrent
// currently carries becomes bad_tags for removal, except where a tag is
// shared with a matching rule (good_tags shields bad_tags). The default
// tag is used only when nothing else matched, and is removed the moment
// any non-default rule matches.
func trackerTagRule(t domain.Torrent, details map[string]config.TrackerDetail, exprs *exprCache) tagDecision {
	goodTags := make(map[string]struct{})
	badTags := make(map[string]struct{})
	matchedAny := false

	for _, k := range orderedTrackerDetailKeys(details) {
		d := details[k]
		if d.Tag == "" {
			continue
		}
		hit := keywordMatches(k, t.Tracker)
		if !hit && d.MatchExpr != "" {
			hit, _ = exprs.matches(d.MatchExpr, t)
		}
		if hit {
			matchedAny = true
			goodTags[d.Tag] = struct{}{}
		} else {
			badTags[d.Tag] = struct{}{}
		}
	}

	if def, ok := details[defaultTrackerDetailKey]; ok && def.Tag != "" {
		if matchedAny {
			badTags[def.Tag] = struct{}{}
		} else {
			goodTags[def.Tag] = struct{}{}
		}
	}

	var add, remove []string
	for tag := range goodTags {
		if !t.HasTag(tag) {
			add = append(add, tag)
		}
	}
	for tag := range badTags {
		if _, shielded := goodTags[tag]; shielded {
			continue
		}
		if t.HasTag(tag) {
			remove = append(remove, tag)
		}
	}

	return tagDecision{Hash: t.Hash, Add: add, Remove: remove}
}
