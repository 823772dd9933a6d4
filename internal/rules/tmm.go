// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rules

import "github.com/autobrr/tagworker/internal/domain"

// tmmResult is the TMM rule's verdict: either a tag decision, or a
// request to enable automatic torrent management directly (mutually
// exclusive per spec.md §4.5 "TMM").
type tmmResult struct {
	Decision  tagDecision
	EnableTMM bool
}

// tmmRule implements spec.md §4.5 "TMM": a torrent should carry noTMMTag
// iff auto_tmm is false, its category isn't ignored, and none of its
// current tags are ignored. When autoEnable is configured the rule
// toggles auto_tmm on instead of tagging.
func tmmRule(t domain.Torrent, noTMMTag string, autoEnable bool, ignoredCategories, ignoredTags []string) tmmResult {
	result := tmmResult{Decision: tagDecision{Hash: t.Hash}}
	if t.AutoTMM {
		if noTMMTag != "" && t.HasTag(noTMMTag) {
			result.Decision.Remove = []string{noTMMTag}
		}
		return result
	}

	if contains(ignoredCategories, t.Category) || anyTagIn(t, ignoredTags) {
		if noTMMTag != "" && t.HasTag(noTMMTag) {
			result.Decision.Remove = []string{noTMMTag}
		}
		return result
	}

	if autoEnable {
		result.EnableTMM = true
		return result
	}

	if noTMMTag != "" && !t.HasTag(noTMMTag) {
		result.Decision.Add = []string{noTMMTag}
	}
	return result
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func anyTagIn(t domain.Torrent, tags []string) bool {
	for _, tag := range tags {
		if t.HasTag(tag) {
			return true
		}
	}
	return false
}
