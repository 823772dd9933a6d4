// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

// TagDiff is the result of comparing a torrent's current tag set against
// the set a rule or profile wants it to carry.
type TagDiff struct {
	Add    []string
	Remove []string
}

// Empty reports whether applying the diff would be a no-op.
func (d TagDiff) Empty() bool { return len(d.Add) == 0 && len(d.Remove) == 0 }

// DiffTags computes the Add/Remove sets needed to move from current to
// desired. Order is not significant; both inputs may contain duplicates.
func DiffTags(current, desired []string) TagDiff {
	currentSet := make(map[string]struct{}, len(current))
	for _, t := range current {
		currentSet[t] = struct{}{}
	}
	desiredSet := make(map[string]struct{}, len(desired))
	for _, t := range desired {
		desiredSet[t] = struct{}{}
	}

	var diff TagDiff
	for t := range desiredSet {
		if _, ok := currentSet[t]; !ok {
			diff.Add = append(diff.Add, t)
		}
	}
	for t := range currentSet {
		if _, ok := desiredSet[t]; !ok {
			diff.Remove = append(diff.Remove, t)
		}
	}
	return diff
}

// DeltaView describes what changed about a torrent between two State Store
// snapshots, mirroring worker.py's torrents_changed(prop) helper: rules
// that only need to react to newly-appeared or newly-removed torrents (or
// to a specific field changing) consult this instead of diffing the whole
// Torrent struct themselves.
type DeltaView struct {
	Added   []string // hashes present now but not in the previous snapshot
	Removed []string // hashes present before but not now
	Changed []string // hashes present in both snapshots with a tracked field changed
}

// HasChanges reports whether anything moved at all.
func (d DeltaView) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Changed) > 0
}

// AllHashes returns every hash touched by the delta, deduplicated.
func (d DeltaView) AllHashes() []string {
	seen := make(map[string]struct{}, len(d.Added)+len(d.Removed)+len(d.Changed))
	out := make([]string, 0, len(seen))
	for _, group := range [][]string{d.Added, d.Removed, d.Changed} {
		for _, h := range group {
			if _, ok := seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
			out = append(out, h)
		}
	}
	return out
}
