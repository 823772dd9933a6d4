// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package registry implements the Cross-instance Coordinator (§4.7/§4.9):
// a mutex-guarded set of workers, each worker's most recent hash set, and
// the per-worker "reacted" flag the dupe rule uses to avoid recomputing
// and re-tagging on every tick once it has already settled.
package registry

import (
	"sync"

	"github.com/autobrr/tagworker/pkg/hashutil"
)

// Registry tracks every live worker's hash set and dupe-reaction state.
// It is owned by the scheduler and shared by every worker, replacing the
// class-level mutable registries of the original implementation.
type Registry struct {
	mu sync.Mutex

	hashes  map[string][]string
	synced  map[string]bool
	reacted map[string]bool
}

func New() *Registry {
	return &Registry{
		hashes:  make(map[string][]string),
		synced:  make(map[string]bool),
		reacted: make(map[string]bool),
	}
}

// Register adds name to the registry if it isn't already present. A
// newly registered worker starts unsynced and unreacted.
func (r *Registry) Register(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.hashes[name]; ok {
		return
	}
	r.hashes[name] = nil
	r.synced[name] = false
	r.reacted[name] = false
}

// Unregister drops name entirely, e.g. on worker shutdown.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.hashes, name)
	delete(r.synced, name)
	delete(r.reacted, name)
}

// Count reports how many workers are currently registered.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.hashes)
}

// SetHashes records name's current hash set for this tick and marks it
// synced. If the set differs from what was stored before, every
// worker's reacted flag is cleared - a change anywhere means every
// worker's dupe set may now be stale, per spec.md §4.7.
func (r *Registry) SetHashes(name string, hashes []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !sameSet(r.hashes[name], hashes) {
		for w := range r.reacted {
			r.reacted[w] = false
		}
	}
	r.hashes[name] = append([]string(nil), hashes...)
	r.synced[name] = true
}

// Dupes computes name's cross-instance duplicate set and marks its
// reacted flag true on success. It returns ok=false (and does no work)
// when: name has already reacted this tick, fewer than two workers are
// registered, or any other worker has not yet produced an initial sync
// - in which case the caller should retry on a later tick.
func (r *Registry) Dupes(name string) (dupes []string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.reacted[name] {
		return nil, false
	}
	if len(r.hashes) < 2 {
		return nil, false
	}
	for other, synced := range r.synced {
		if other != name && !synced {
			return nil, false
		}
	}

	var union []string
	for other, hashes := range r.hashes {
		if other == name {
			continue
		}
		union = append(union, hashes...)
	}

	dupes = hashutil.Intersect(r.hashes[name], union)

	r.reacted[name] = true
	return dupes, true
}

// sameSet reports whether a and b contain the same hashes, case-
// insensitively and order-independently, via hashutil's normalized
// set-difference: equal sets leave nothing left over in either
// direction.
func sameSet(a, b []string) bool {
	return len(hashutil.Difference(a, b)) == 0 && len(hashutil.Difference(b, a)) == 0
}
