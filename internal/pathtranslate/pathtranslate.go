// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package pathtranslate implements the Path Translator (§4.1): mapping a
// path as the qBittorrent client sees it to the path tagworker sees on
// its own filesystem, via an ordered prefix substitution table. Grounded
// on files.py's translate_path: the first configured prefix that matches
// wins, and the match is applied to a path.Clean'd/slash-normalized copy
// of the input so mixed separators and trailing slashes in either the
// client's reported path or the operator's config don't break the match.
package pathtranslate

import (
	"strings"

	"github.com/autobrr/tagworker/pkg/pathcmp"
)

// Rule is one entry of the translation table: paths starting with From
// (client-side) are rewritten to start with To (tagworker-side) instead.
type Rule struct {
	From string
	To   string
}

// Table is an ordered translation table. Order matters: the first
// matching rule wins, mirroring the original's dict-iteration-until-match
// behavior (Go map iteration order is undefined, so this must stay a
// slice, not a map).
type Table struct {
	rules []compiledRule
}

type compiledRule struct {
	from string
	to   string
}

// NewTable compiles rules into a Table. Both sides of each rule are
// normalized once up front so every Translate call does a plain prefix
// compare instead of re-normalizing the rule each time.
func NewTable(rules []Rule) *Table {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		compiled = append(compiled, compiledRule{
			from: pathcmp.NormalizePath(r.From),
			to:   pathcmp.NormalizePath(r.To),
		})
	}
	return &Table{rules: compiled}
}

// Translate rewrites p using the first matching rule's prefix
// substitution. If no rule matches, p is returned unchanged (normalized).
func (t *Table) Translate(p string) string {
	normalized := pathcmp.NormalizePath(p)
	for _, r := range t.rules {
		if r.from == "" {
			continue
		}
		if normalized == r.from {
			return r.to
		}
		if strings.HasPrefix(normalized, r.from+"/") {
			return r.to + strings.TrimPrefix(normalized, r.from)
		}
	}
	return normalized
}
