// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package disktasks implements the local-worker Disk Tasks (§4.8): the
// noHL scan/cleanup, orphan quarantine, orphan pruning, and empty-directory
// sweep that run against a worker's own filesystem view of a client's
// torrents. None of these run against a remote client - they are gated on
// a worker being configured local_instance.
package disktasks

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/autobrr/tagworker/internal/domain"
	"github.com/autobrr/tagworker/internal/fsprobe"
	"github.com/autobrr/tagworker/internal/pathtranslate"
)

// NoHLScanner tags torrents whose content no longer has a hard link
// outside tagworker's own view of the filesystem - the signal that a
// cross-seed or backup hard-link has been broken.
type NoHLScanner struct {
	RootPath   string
	Categories []string
	Tag        string
	Translate  *pathtranslate.Table
	Log        zerolog.Logger
}

func NewNoHLScanner(rootPath string, categories []string, tag string, translate *pathtranslate.Table, log zerolog.Logger) *NoHLScanner {
	return &NoHLScanner{RootPath: rootPath, Categories: categories, Tag: tag, Translate: translate, Log: log}
}

// inCategory reports whether category is one of the configured noHL
// categories.
func (s *NoHLScanner) inCategory(category string) bool {
	for _, c := range s.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Scan builds an inode map over the client's whole configured root_path -
// not just eligible torrents' own content paths - so a hardlink partner
// belonging to an ineligible torrent (wrong category, or a cross-seed
// still below progress 1.0) is still counted, then tags each eligible
// torrent whose content has outer links (add) or doesn't (remove).
// client.Files is only consulted for multi-file torrents, where the scan
// short-circuits on the first child with outer links per spec.md §4.8.
func (s *NoHLScanner) Scan(ctx context.Context, client domain.Client, torrents []domain.Torrent) (tagDecisions, error) {
	eligible := make([]domain.Torrent, 0, len(torrents))
	for _, t := range torrents {
		if !t.Complete() || !s.inCategory(t.Category) {
			continue
		}
		eligible = append(eligible, t)
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	im, err := fsprobe.BuildInodeMap(ctx, []string{s.RootPath})
	if err != nil {
		return nil, err
	}

	var decisions tagDecisions
	for _, t := range eligible {
		outer, err := s.torrentHasOuterLinks(ctx, client, im, t)
		if err != nil {
			s.Log.Warn().Err(err).Str("hash", t.Hash).Msg("nohl scan: probe failed")
			continue
		}
		// noHL means "no hard link": tag applies when the content has
		// NO link outside tagworker's own view, not when it does.
		noHL := !outer
		if noHL && !t.HasTag(s.Tag) {
			decisions = append(decisions, tagDecision{Hash: t.Hash, Add: true})
		} else if !noHL && t.HasTag(s.Tag) {
			decisions = append(decisions, tagDecision{Hash: t.Hash, Add: false})
		}
	}
	return decisions, nil
}

func (s *NoHLScanner) torrentHasOuterLinks(ctx context.Context, client domain.Client, im fsprobe.InodeMap, t domain.Torrent) (bool, error) {
	contentPath := s.Translate.Translate(t.ContentPath)
	if isFile := fsprobe.IsFile(contentPath); isFile != nil && *isFile {
		return fsprobe.HasOuterLinks(im, contentPath)
	}

	files, err := client.Files(ctx, t.Hash)
	if err != nil {
		return false, err
	}
	for _, f := range files {
		outer, err := fsprobe.HasOuterLinks(im, filepath.Join(contentPath, f.Name))
		if err != nil {
			return false, err
		}
		if outer {
			return true, nil
		}
	}
	return false, nil
}

// Cleanup removes Tag from torrents whose category has since left the
// configured set - called independently of Scan so a disabled command or
// a category reassignment still clears a stale tag, but only on local
// workers (spec.md §4.8: "to avoid fighting another supervisor").
func (s *NoHLScanner) Cleanup(torrents []domain.Torrent, enabled bool) tagDecisions {
	var decisions tagDecisions
	for _, t := range torrents {
		if !t.HasTag(s.Tag) {
			continue
		}
		if enabled && s.inCategory(t.Category) {
			continue
		}
		decisions = append(decisions, tagDecision{Hash: t.Hash, Add: false})
	}
	return decisions
}

// tagDecision is one hash's add/remove verdict for a single fixed tag -
// disktasks' rules each only ever touch one known tag name, so unlike
// internal/rules there is no need for a multi-tag Add/Remove slice.
type tagDecision struct {
	Hash string
	Add  bool
}

type tagDecisions []tagDecision

// Apply issues one AddTags/RemoveTags call per direction, batching every
// hash that wants the same outcome.
func (d tagDecisions) Apply(ctx context.Context, client domain.Client, tag string) error {
	var add, remove []string
	for _, dec := range d {
		if dec.Add {
			add = append(add, dec.Hash)
		} else {
			remove = append(remove, dec.Hash)
		}
	}
	if len(add) > 0 {
		if err := client.AddTags(ctx, add, []string{tag}); err != nil {
			return err
		}
	}
	if len(remove) > 0 {
		if err := client.RemoveTags(ctx, remove, []string{tag}); err != nil {
			return err
		}
	}
	return nil
}
