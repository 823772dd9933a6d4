// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package state implements the State Store (§4.4): a per-instance
// reconciled view of qBittorrent's incremental sync feed. qBittorrent's
// sync/maindata endpoint sends a full snapshot once (rid=0) and then
// diffs thereafter - each diff carries only the fields that changed per
// torrent, a removal list, and incremental category/tag add/remove sets.
// Applying a diff as a whole-record overwrite (as a naive merge does)
// silently drops fields the diff didn't mention; Store.Apply instead
// merges each diff key-by-key, tagging every field as Set, Unset, or
// Merged so nothing is lost and nothing stale lingers.
package state

import (
	"sync"

	"github.com/autobrr/tagworker/internal/domain"
)

// FieldOp classifies how one key in an incoming diff affects the stored
// record: Set overwrites/creates the key, Unset deletes it, Merged
// recurses into a nested object instead of replacing it wholesale.
type FieldOp int

const (
	OpSet FieldOp = iota
	OpUnset
	OpMerged
)

// Snapshot is one sync cycle's payload, already decoded from the client's
// wire format into generic maps. FullUpdate mirrors qBittorrent's rid=0
// response: every prior key is discarded and replaced by this snapshot.
type Snapshot struct {
	FullUpdate bool

	// Torrents carries, per hash, only the fields that changed this cycle.
	Torrents map[string]map[string]any
	// TorrentsRemoved lists hashes to drop entirely (Unset).
	TorrentsRemoved []string

	// Categories carries added/changed categories (Set, per-key).
	Categories map[string]map[string]any
	// CategoriesRemoved lists category names to drop (Unset).
	CategoriesRemoved []string

	// Tags carries newly-seen tag names (Set, set-membership only).
	Tags []string
	// TagsRemoved lists tag names no longer in use (Unset).
	TagsRemoved []string

	// ServerState carries changed server-state keys (Merged: recursed
	// into the existing map instead of replacing it, unlike a naive
	// merge that overwrites the whole ServerState object when present).
	ServerState map[string]any
}

// Store holds one client's reconciled torrent/category/tag/server-state
// view plus the rid cursor needed to request the next incremental diff.
type Store struct {
	mu  sync.RWMutex
	rid int64

	torrents    map[string]map[string]any
	categories  map[string]map[string]any
	tags        map[string]struct{}
	serverState map[string]any

	lastDelta domain.DeltaView
}

func NewStore() *Store {
	return &Store{
		torrents:    make(map[string]map[string]any),
		categories:  make(map[string]map[string]any),
		tags:        make(map[string]struct{}),
		serverState: make(map[string]any),
	}
}

// RID returns the cursor to send on the next sync request.
func (s *Store) RID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rid
}

// SetRID records the cursor the client returned alongside this snapshot.
func (s *Store) SetRID(rid int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rid = rid
}

// Apply merges snap into the store using the Set/Unset/Merged rules
// described in the package doc.
func (s *Store) Apply(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.FullUpdate {
		s.torrents = make(map[string]map[string]any, len(snap.Torrents))
		s.categories = make(map[string]map[string]any, len(snap.Categories))
		s.tags = make(map[string]struct{}, len(snap.Tags))
		s.serverState = make(map[string]any, len(snap.ServerState))
	}

	delta := domain.DeltaView{}
	for hash, fields := range snap.Torrents {
		existing, ok := s.torrents[hash]
		if !ok {
			existing = make(map[string]any, len(fields))
			s.torrents[hash] = existing
			delta.Added = append(delta.Added, hash)
		} else if len(fields) > 0 {
			delta.Changed = append(delta.Changed, hash)
		}
		mergeFields(existing, fields)
	}
	for _, hash := range snap.TorrentsRemoved {
		delete(s.torrents, hash)
		delta.Removed = append(delta.Removed, hash)
	}
	s.lastDelta = delta

	for name, fields := range snap.Categories {
		existing, ok := s.categories[name]
		if !ok {
			existing = make(map[string]any, len(fields))
			s.categories[name] = existing
		}
		mergeFields(existing, fields)
	}
	for _, name := range snap.CategoriesRemoved {
		delete(s.categories, name)
	}

	for _, tag := range snap.Tags {
		s.tags[tag] = struct{}{}
	}
	for _, tag := range snap.TagsRemoved {
		delete(s.tags, tag)
	}

	mergeFields(s.serverState, snap.ServerState)
}

// fieldOp classifies how incoming affects dest's existing value at one
// key: a nil incoming value unsets the key; an incoming map merged
// against an existing map recurses instead of replacing it wholesale;
// anything else is a plain set.
func fieldOp(existing any, incoming any) FieldOp {
	if incoming == nil {
		return OpUnset
	}
	if _, destIsMap := existing.(map[string]any); destIsMap {
		if _, srcIsMap := incoming.(map[string]any); srcIsMap {
			return OpMerged
		}
	}
	return OpSet
}

// mergeFields applies fieldOp's verdict key-by-key: OpUnset deletes the
// key, OpMerged recurses into the nested map instead of replacing it
// wholesale (the case ServerState's partial diffs rely on), OpSet
// overwrites/creates it.
func mergeFields(dest map[string]any, updates map[string]any) {
	for k, v := range updates {
		switch fieldOp(dest[k], v) {
		case OpUnset:
			delete(dest, k)
		case OpMerged:
			mergeFields(dest[k].(map[string]any), v.(map[string]any))
		default:
			dest[k] = v
		}
	}
}

// LastDelta returns the Added/Removed/Changed hash sets computed by the
// most recent Apply call, mirroring worker.py's torrents_changed(prop)
// helper used to decide which rules need to re-run.
func (s *Store) LastDelta() domain.DeltaView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastDelta
}

// Tags returns the current tag-name set, unordered.
func (s *Store) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.tags))
	for t := range s.tags {
		out = append(out, t)
	}
	return out
}

// RawTorrents returns a shallow copy of the per-hash field maps, for the
// projector in project.go to turn into domain.Torrent values.
func (s *Store) RawTorrents() map[string]map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]map[string]any, len(s.torrents))
	for hash, fields := range s.torrents {
		cp := make(map[string]any, len(fields))
		for k, v := range fields {
			cp[k] = v
		}
		out[hash] = cp
	}
	return out
}
