// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rules

import (
	"sort"
	"strings"

	"github.com/autobrr/tagworker/internal/config"
	"github.com/autobrr/tagworker/internal/domain"
)

// defaultTrackerDetailKey is the reserved key supplying the tracker-tag
// rule's fallback tag (spec.md §3).
const defaultTrackerDetailKey = "default"

// orderedTrackerDetailKeys returns every tracker_details key except
// "default", in a fixed, reproducible order.
//
// spec.md §3 calls for "declaration order" with first-match-wins
// semantics, but tracker_details is decoded from YAML into a Go map by
// viper/mapstructure, which does not preserve source ordering - there is
// no portable way to recover it at this layer. Sorting alphabetically
// trades true declaration order for a different but equally useful
// property: the same config always resolves the same winner on every
// run, so operators should avoid overlapping keyword substrings across
// entries rather than relying on declaration order to disambiguate.
func orderedTrackerDetailKeys(details map[string]config.TrackerDetail) []string {
	keys := make([]string, 0, len(details))
	for k := range details {
		if k == defaultTrackerDetailKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// keywordMatches reports whether any "|"-separated keyword in expr is a
// substring of tracker.
func keywordMatches(exprKey, tracker string) bool {
	if tracker == "" {
		return false
	}
	for _, kw := range strings.Split(exprKey, "|") {
		kw = strings.TrimSpace(kw)
		if kw != "" && strings.Contains(tracker, kw) {
			return true
		}
	}
	return false
}

// matchTrackerDetail finds the first tracker_details entry whose keyword
// expression matches t's tracker, OR whose match_expr evaluates true for
// t (SPEC_FULL.md §14: match_expr only ever adds matches, never narrows
// the keyword list). Returns ok=false if nothing matches.
func matchTrackerDetail(t domain.Torrent, details map[string]config.TrackerDetail, exprs *exprCache) (key string, detail config.TrackerDetail, ok bool) {
	for _, k := range orderedTrackerDetailKeys(details) {
		d := details[k]
		if keywordMatches(k, t.Tracker) {
			return k, d, true
		}
		if d.MatchExpr != "" {
			if matched, _ := exprs.matches(d.MatchExpr, t); matched {
				return k, d, true
			}
		}
	}
	return "", config.TrackerDetail{}, false
}
